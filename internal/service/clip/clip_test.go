package clip

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"secondbrain-backend/internal/blob"
	"secondbrain-backend/internal/chunk"
	"secondbrain-backend/internal/repository/mocks"
	"secondbrain-backend/internal/service/note"
	appErrors "secondbrain-backend/pkg/errors"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Fallback Title</title>
  <meta property="og:title" content="How Databases Work">
  <meta property="og:description" content="A deep dive into storage engines.">
  <meta property="og:site_name" content="DB Weekly">
  <meta property="og:image" content="https://example.com/cover.png">
  <meta name="author" content="Ada Lovelace">
  <meta property="article:published_time" content="2025-02-01T10:00:00Z">
</head>
<body>
  <nav>Home | About</nav>
  <article>
    <h1>How Databases Work</h1>
    <p>B-trees keep pages sorted.</p>
    <script>trackPageview();</script>
    <p>Write-ahead logs make crashes survivable.</p>
  </article>
  <footer>Copyright</footer>
</body>
</html>`

func TestExtract(t *testing.T) {
	page, err := Extract(samplePage, "https://example.com/dbs")
	require.NoError(t, err)

	assert.Equal(t, "How Databases Work", page.Title)
	assert.Equal(t, "DB Weekly", page.Metadata.SiteName)
	assert.Equal(t, "Ada Lovelace", page.Metadata.Author)
	assert.Equal(t, "A deep dive into storage engines.", page.Metadata.Description)
	assert.Equal(t, "https://example.com/cover.png", page.Metadata.ImageURL)
	assert.Equal(t, "2025-02-01T10:00:00Z", page.Metadata.PublishedTime)

	assert.Contains(t, page.Content, "B-trees keep pages sorted.")
	assert.Contains(t, page.Content, "Source: https://example.com/dbs")
	assert.NotContains(t, page.Content, "trackPageview")
	assert.NotContains(t, page.Content, "Home | About")
	assert.NotContains(t, page.Content, "Copyright")
}

func TestExtractFallsBackToTitleTag(t *testing.T) {
	page, err := Extract("<html><head><title>Plain Page</title></head><body><p>hi</p></body></html>", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "Plain Page", page.Title)
}

func TestTruncate(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "short", Truncate("short", 500))
	})

	t.Run("cuts at the last sentence boundary", func(t *testing.T) {
		text := strings.Repeat("One sentence here. ", 40)
		out := Truncate(text, 500)
		assert.LessOrEqual(t, len(out), 500+len(" [Content truncated...]"))
		assert.True(t, strings.HasSuffix(out, ". [Content truncated...]"))
	})

	t.Run("hard cut when no sentence boundary exists", func(t *testing.T) {
		out := Truncate(strings.Repeat("x", 600), 500)
		assert.True(t, strings.HasSuffix(out, "... [Truncated]"))
		assert.LessOrEqual(t, len(out), 500)
	})

	t.Run("tiny limits without punctuation do not panic", func(t *testing.T) {
		assert.Equal(t, "xxxxxxxxxx", Truncate(strings.Repeat("x", 600), 10))
		assert.Equal(t, "x", Truncate("xy", 1))
		assert.Equal(t, "", Truncate("anything", 0))
		assert.Equal(t, "", Truncate("anything", -5))
	})
}

func TestCapture(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockRepository()
	blobs := blob.NewMemoryStore()
	logger := zap.NewNop()
	notes := note.NewService(repo, chunk.NewCodec(chunk.DefaultCeiling, blobs, logger), blobs, nil, logger)
	svc := NewService(notes, logger)

	t.Run("creates a sourced note", func(t *testing.T) {
		created, err := svc.Capture(ctx, "user-1", CaptureInput{
			URL:      "https://example.com/dbs",
			HTML:     samplePage,
			Category: "reading",
		})
		require.NoError(t, err)
		assert.Equal(t, "How Databases Work", created.Title)
		assert.Equal(t, "reading", created.Category)
		require.NotNil(t, created.Source)
		assert.Equal(t, "https://example.com/dbs", created.Source.URL)
	})

	t.Run("long pages go through the chunking policy", func(t *testing.T) {
		long := "<html><body><article><p>" + strings.Repeat("words and more words. ", 100) + "</p></article></body></html>"
		created, err := svc.Capture(ctx, "user-1", CaptureInput{URL: "https://example.com/long", HTML: long})
		require.NoError(t, err)
		assert.Equal(t, chunk.Sentinel, created.Content)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := svc.Capture(ctx, "user-1", CaptureInput{URL: "", HTML: "<p>x</p>"})
		assert.True(t, appErrors.IsValidation(err))
		_, err = svc.Capture(ctx, "user-1", CaptureInput{URL: "https://x.test", HTML: " "})
		assert.True(t, appErrors.IsValidation(err))
	})
}
