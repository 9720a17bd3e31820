// Package handlers wires the HTTP surface: routing, middleware, and the
// translation between transport and the services.
package handlers

import (
	"context"
	"net/http"

	"secondbrain-backend/pkg/api"
	appErrors "secondbrain-backend/pkg/errors"
)

type contextKey string

const userIDKey contextKey = "userID"

// withUserID stores the authenticated user id on the request context.
func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// getUserID returns the authenticated user id, or "" when the request
// never passed the auth middleware.
func getUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// handleServiceError maps service errors onto HTTP status codes.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case appErrors.IsValidation(err):
		api.Error(w, http.StatusBadRequest, err.Error())
	case appErrors.IsMalformed(err):
		api.Error(w, http.StatusBadRequest, err.Error())
	case appErrors.IsNotFound(err):
		api.Error(w, http.StatusNotFound, err.Error())
	case appErrors.IsUnauthorized(err):
		api.Error(w, http.StatusUnauthorized, err.Error())
	default:
		api.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
