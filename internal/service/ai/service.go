package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const chatErrorReply = "Sorry, I encountered an error processing your request."

// Service exposes the note-centric completion helpers. Every method
// degrades gracefully: a provider failure yields an empty or pass-through
// result, never an error the UI has to special-case.
type Service interface {
	// Summarize produces a paragraph summary of the content, or "" on
	// provider failure.
	Summarize(ctx context.Context, content string) string

	// GenerateTags suggests 5-7 tags for the content, or nil on failure.
	GenerateTags(ctx context.Context, content string) []string

	// SuggestRelatedTopics suggests 5 related topics, or nil on failure.
	SuggestRelatedTopics(ctx context.Context, content string) []string

	// Chat answers a question against the given context. Provider failures
	// come back as a polite canned reply.
	Chat(ctx context.Context, contextText, question string) string

	// EnhanceSearch expands a search query with synonyms and related
	// terms. On failure the original query comes back unchanged.
	EnhanceSearch(ctx context.Context, query string) string
}

type service struct {
	provider Provider
	logger   *zap.Logger
}

// NewService creates the AI helper service.
func NewService(provider Provider, logger *zap.Logger) Service {
	return &service{provider: provider, logger: logger}
}

func (s *service) Summarize(ctx context.Context, content string) string {
	prompt := fmt.Sprintf("Please provide a comprehensive summary of the following content in 10-15 detailed sentences in paragraph. Include the main points and key insights:\n\n%s", content)
	text, err := s.provider.Complete(ctx, prompt, CompletionOptions{})
	if err != nil {
		s.logger.Error("failed to summarize content", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(text)
}

func (s *service) GenerateTags(ctx context.Context, content string) []string {
	prompt := fmt.Sprintf("Generate 5-7 relevant tags for this content. Tags should be single words or short phrases that capture key topics, concepts, and themes. Return only the tags as a comma-separated list, no other text or explanation:\n\n%s", content)
	text, err := s.provider.Complete(ctx, prompt, CompletionOptions{})
	if err != nil {
		s.logger.Error("failed to generate tags", zap.Error(err))
		return nil
	}
	return splitCommaList(text)
}

func (s *service) SuggestRelatedTopics(ctx context.Context, content string) []string {
	prompt := fmt.Sprintf("Given this content:\n\n%s\n\nSuggest 5 related topics or concepts that might interest the reader. Return them as a simple comma-separated list without numbering or explanation.", content)
	text, err := s.provider.Complete(ctx, prompt, CompletionOptions{})
	if err != nil {
		s.logger.Error("failed to suggest topics", zap.Error(err))
		return nil
	}
	return splitCommaList(text)
}

func (s *service) Chat(ctx context.Context, contextText, question string) string {
	prompt := fmt.Sprintf("Context: %s\n\nQuestion: %s\n\nPlease provide a helpful response based on the context above.", contextText, question)
	text, err := s.provider.Complete(ctx, prompt, CompletionOptions{})
	if err != nil {
		s.logger.Error("chat completion failed", zap.Error(err))
		return chatErrorReply
	}
	return strings.TrimSpace(text)
}

func (s *service) EnhanceSearch(ctx context.Context, query string) string {
	prompt := fmt.Sprintf(`Given the search query %q, generate a search string that includes:
1. The original query
2. Common synonyms
3. Related categories or concepts
4. Broader terms that encompass this query

Format the response as a space-separated list of words. For example, if searching for "apple", return something like: "apple fruit food produce technology computer iphone mac digital"`, query)
	text, err := s.provider.Complete(ctx, prompt, CompletionOptions{})
	if err != nil {
		s.logger.Error("failed to enhance search query", zap.Error(err))
		return query
	}
	return strings.TrimSpace(text)
}

func splitCommaList(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
