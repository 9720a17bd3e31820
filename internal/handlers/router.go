package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"secondbrain-backend/pkg/api"
)

// Router assembles the HTTP surface from the individual handlers.
type Router struct {
	Notes  *NoteHandler
	Graph  *GraphHandler
	Canvas *CanvasHandler
	Clips  *ClipHandler
	AI     *AIHandler
	Search *SearchHandler

	JWTSecret      []byte
	AllowedOrigins []string
	Ready          func() error
	Logger         *zap.Logger
}

// Setup builds the chi router with middleware and all routes mounted.
func (rt *Router) Setup() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(rt.Logger))
	r.Use(middleware.Recoverer)
	r.Use(Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", rt.health)
	r.Get("/ready", rt.ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Auth(rt.JWTSecret))

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", rt.Notes.Create)
			r.Get("/", rt.Notes.List)
			r.Get("/{noteId}", rt.Notes.Get)
			r.Put("/{noteId}", rt.Notes.Update)
			r.Delete("/{noteId}", rt.Notes.Delete)
			r.Put("/{noteId}/position", rt.Notes.SavePosition)
			r.Put("/{noteId}/visibility", rt.Notes.SetVisibility)
			r.Put("/{noteId}/tags", rt.Notes.SetTags)
			r.Post("/{noteId}/tags", rt.AI.GenerateTags)
		})

		r.Get("/graph", rt.Graph.Get)

		r.Route("/canvas/{category}", func(r chi.Router) {
			r.Get("/", rt.Canvas.Open)
			r.Put("/", rt.Canvas.SaveConnections)
		})

		r.Post("/clips", rt.Clips.Capture)

		r.Post("/ai/summarize", rt.AI.Summarize)
		r.Post("/ai/chat", rt.AI.Chat)

		r.Get("/search", rt.Search.Get)
	})

	return r
}

func (rt *Router) health(w http.ResponseWriter, _ *http.Request) {
	api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) ready(w http.ResponseWriter, _ *http.Request) {
	if rt.Ready != nil {
		if err := rt.Ready(); err != nil {
			api.Error(w, http.StatusServiceUnavailable, err.Error())
			return
		}
	}
	api.Success(w, http.StatusOK, map[string]string{"status": "ready"})
}
