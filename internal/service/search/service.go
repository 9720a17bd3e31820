// Package search implements the smart search over a user's notes: plain
// substring matching widened by AI query expansion, scored over titles,
// tags, and fully resolved content.
package search

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"secondbrain-backend/internal/domain"
	"secondbrain-backend/internal/repository"
	"secondbrain-backend/internal/service/ai"
	"secondbrain-backend/internal/service/note"
	appErrors "secondbrain-backend/pkg/errors"
)

// Result is one matching note with its relevance score.
type Result struct {
	Note  domain.Note `json:"note"`
	Score int         `json:"score"`
}

// Service runs searches over one owner's notes.
type Service interface {
	// Search matches the query against titles, tags, and resolved content.
	// When expand is set, the query is first widened with related terms by
	// the completion provider; expansion failure silently falls back to
	// the raw query.
	Search(ctx context.Context, ownerID, query string, expand bool) ([]Result, error)
}

type service struct {
	notes  note.Service
	ai     ai.Service
	logger *zap.Logger
}

// NewService creates a search service.
func NewService(notes note.Service, aiSvc ai.Service, logger *zap.Logger) Service {
	return &service{notes: notes, ai: aiSvc, logger: logger}
}

func (s *service) Search(ctx context.Context, ownerID, query string, expand bool) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErrors.NewValidation("query cannot be empty")
	}

	terms := []string{strings.ToLower(query)}
	if expand && s.ai != nil {
		expanded := s.ai.EnhanceSearch(ctx, query)
		for _, term := range strings.Fields(strings.ToLower(expanded)) {
			terms = append(terms, term)
		}
	}
	terms = dedupe(terms)

	notes, err := s.notes.ListNotes(ctx, ownerID, repository.NoteQuery{})
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, n := range notes {
		resolved, err := s.notes.ResolveContent(ctx, &n)
		if err != nil {
			s.logger.Warn("failed to resolve note during search",
				zap.String("noteId", n.ID), zap.Error(err))
			resolved = &n
		}
		score := scoreNote(*resolved, query, terms)
		if score > 0 {
			results = append(results, Result{Note: *resolved, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// scoreNote weights a direct title hit on the raw query above expanded
// term matches, so exact matches surface first.
func scoreNote(n domain.Note, rawQuery string, terms []string) int {
	title := strings.ToLower(n.Title)
	content := strings.ToLower(n.Content)
	tags := strings.ToLower(strings.Join(n.Tags, " "))

	score := 0
	if strings.Contains(title, strings.ToLower(rawQuery)) {
		score += 10
	}
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += 3
		}
		if strings.Contains(tags, term) {
			score += 2
		}
		if strings.Contains(content, term) {
			score++
		}
	}
	return score
}

func dedupe(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	var out []string
	for _, t := range terms {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
