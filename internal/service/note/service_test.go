package note

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"secondbrain-backend/internal/blob"
	"secondbrain-backend/internal/cache"
	"secondbrain-backend/internal/chunk"
	"secondbrain-backend/internal/domain"
	"secondbrain-backend/internal/repository"
	"secondbrain-backend/internal/repository/mocks"
	appErrors "secondbrain-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *mocks.MockRepository, *blob.MemoryStore) {
	t.Helper()
	repo := mocks.NewMockRepository()
	blobs := blob.NewMemoryStore()
	logger := zap.NewNop()
	codec := chunk.NewCodec(chunk.DefaultCeiling, blobs, logger)
	svc := NewService(repo, codec, blobs, nil, logger)
	return svc, repo, blobs
}

func TestCreateNote(t *testing.T) {
	ctx := context.Background()

	t.Run("short content stays inline", func(t *testing.T) {
		svc, _, blobs := newTestService(t)

		n, err := svc.CreateNote(ctx, "user-1", CreateInput{
			Title:   "Groceries",
			Content: "milk, eggs",
		})
		require.NoError(t, err)
		assert.Equal(t, "milk, eggs", n.Content)
		assert.False(t, n.IsPublic)
		assert.Equal(t, 0, blobs.Len())
		require.Len(t, n.Blocks, 1)
		assert.Empty(t, n.Blocks[0].Props.FileID)
	})

	t.Run("oversized content is offloaded", func(t *testing.T) {
		svc, _, blobs := newTestService(t)
		long := strings.Repeat("x", 1200)

		n, err := svc.CreateNote(ctx, "user-1", CreateInput{
			Title:   "Long one",
			Content: long,
		})
		require.NoError(t, err)
		assert.Equal(t, chunk.Sentinel, n.Content)
		assert.Equal(t, 1, blobs.Len())
		require.Len(t, n.Blocks, 1)
		assert.Equal(t, chunk.Sentinel, n.Blocks[0].Content)
		assert.NotEmpty(t, n.Blocks[0].Props.FileID)

		stored, err := blobs.Get(ctx, n.Blocks[0].Props.FileID)
		require.NoError(t, err)
		assert.Equal(t, long, string(stored))
	})

	t.Run("oversized supplied block is split into chunks", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		long := strings.Repeat("y", 5000)

		n, err := svc.CreateNote(ctx, "user-1", CreateInput{
			Title:   "Editor note",
			Content: "summary",
			Blocks: []domain.Block{
				{Type: domain.BlockTypeParagraph, Content: "intro"},
				{Type: domain.BlockTypeParagraph, Content: long},
			},
		})
		require.NoError(t, err)

		require.Greater(t, len(n.Blocks), 2)
		assert.Equal(t, "intro", n.Blocks[0].Content)
		var joined strings.Builder
		for _, b := range n.Blocks[1:] {
			assert.LessOrEqual(t, len(b.Content), chunk.DefaultCeiling)
			joined.WriteString(b.Content)
		}
		assert.Equal(t, long, joined.String())
	})

	t.Run("non-paragraph blocks pass through untouched", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		n, err := svc.CreateNote(ctx, "user-1", CreateInput{
			Title:   "Gallery",
			Content: "pics",
			Blocks: []domain.Block{
				{Type: domain.BlockTypeImage, Content: "https://example.com/a.png"},
			},
		})
		require.NoError(t, err)
		require.Len(t, n.Blocks, 1)
		assert.Equal(t, domain.BlockTypeImage, n.Blocks[0].Type)
		assert.Equal(t, "https://example.com/a.png", n.Blocks[0].Content)
	})

	t.Run("empty title is rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.CreateNote(ctx, "user-1", CreateInput{Title: "  ", Content: "hi"})
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("blob failure surfaces as error", func(t *testing.T) {
		svc, _, blobs := newTestService(t)
		blobs.FailPut = errors.New("storage down")

		_, err := svc.CreateNote(ctx, "user-1", CreateInput{
			Title:   "Long one",
			Content: strings.Repeat("x", 1200),
		})
		assert.Error(t, err)
	})
}

func TestUpdateNote(t *testing.T) {
	ctx := context.Background()

	t.Run("merges only provided fields", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		created, err := svc.CreateNote(ctx, "user-1", CreateInput{
			Title:    "Original",
			Category: "ideas",
			Content:  "first draft",
		})
		require.NoError(t, err)

		newTitle := "Revised"
		updated, err := svc.UpdateNote(ctx, "user-1", created.ID, UpdateInput{Title: &newTitle})
		require.NoError(t, err)
		assert.Equal(t, "Revised", updated.Title)
		assert.Equal(t, "ideas", updated.Category)
		assert.Equal(t, "first draft", updated.Content)
	})

	t.Run("re-chunks when content grows past the ceiling", func(t *testing.T) {
		svc, _, blobs := newTestService(t)
		created, err := svc.CreateNote(ctx, "user-1", CreateInput{Title: "Note", Content: "short"})
		require.NoError(t, err)

		long := strings.Repeat("y", 900)
		updated, err := svc.UpdateNote(ctx, "user-1", created.ID, UpdateInput{Content: &long})
		require.NoError(t, err)
		assert.Equal(t, chunk.Sentinel, updated.Content)
		assert.Equal(t, 1, blobs.Len())
	})

	t.Run("missing note yields not found", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		title := "anything"
		_, err := svc.UpdateNote(ctx, "user-1", "nope", UpdateInput{Title: &title})
		assert.True(t, appErrors.IsNotFound(err))
	})
}

func TestGetNote(t *testing.T) {
	ctx := context.Background()

	t.Run("other owner's note is not found", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		created, err := svc.CreateNote(ctx, "user-1", CreateInput{Title: "Secret", Content: "mine"})
		require.NoError(t, err)

		_, err = svc.GetNote(ctx, "user-2", created.ID, false)
		assert.True(t, appErrors.IsNotFound(err))
	})

	t.Run("resolve loads offloaded content", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		long := strings.Repeat("z", 1500)
		created, err := svc.CreateNote(ctx, "user-1", CreateInput{Title: "Big", Content: long})
		require.NoError(t, err)

		fetched, err := svc.GetNote(ctx, "user-1", created.ID, true)
		require.NoError(t, err)
		assert.Equal(t, long, fetched.Content)
		assert.True(t, fetched.Blocks[0].Props.LoadedFromFile)
	})
}

func TestResolveContent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	long := strings.Repeat("a", 1000)
	created, err := svc.CreateNote(ctx, "user-1", CreateInput{Title: "Big", Content: long})
	require.NoError(t, err)

	t.Run("is idempotent", func(t *testing.T) {
		once, err := svc.ResolveContent(ctx, created)
		require.NoError(t, err)
		twice, err := svc.ResolveContent(ctx, once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	})

	t.Run("does not mutate the input note", func(t *testing.T) {
		_, err := svc.ResolveContent(ctx, created)
		require.NoError(t, err)
		assert.Equal(t, chunk.Sentinel, created.Content)
		assert.Equal(t, chunk.Sentinel, created.Blocks[0].Content)
	})

	t.Run("no-op for inline notes", func(t *testing.T) {
		inline, err := svc.CreateNote(ctx, "user-1", CreateInput{Title: "Small", Content: "tiny"})
		require.NoError(t, err)
		resolved, err := svc.ResolveContent(ctx, inline)
		require.NoError(t, err)
		assert.Equal(t, "tiny", resolved.Content)
	})
}

func TestDeleteNote(t *testing.T) {
	ctx := context.Background()
	svc, repo, blobs := newTestService(t)

	created, err := svc.CreateNote(ctx, "user-1", CreateInput{
		Title:   "Doomed",
		Content: strings.Repeat("b", 800),
	})
	require.NoError(t, err)
	require.Equal(t, 1, blobs.Len())

	require.NoError(t, svc.DeleteNote(ctx, "user-1", created.ID))

	gone, err := repo.FindNoteByID(ctx, "user-1", created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	// Blobs are not garbage-collected on delete.
	assert.Equal(t, 1, blobs.Len())

	err = svc.DeleteNote(ctx, "user-1", created.ID)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestSetVisibility(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	long := strings.Repeat("c", 1100)
	created, err := svc.CreateNote(ctx, "user-1", CreateInput{Title: "Shared", Content: long})
	require.NoError(t, err)

	published, err := svc.SetVisibility(ctx, "user-1", created.ID, true)
	require.NoError(t, err)
	assert.True(t, published.IsPublic)
	// Content still lives behind a fresh blob reference after the toggle.
	assert.Equal(t, chunk.Sentinel, published.Content)
	require.Len(t, published.Blocks, 1)
	assert.NotEmpty(t, published.Blocks[0].Props.FileID)

	resolved, err := svc.ResolveContent(ctx, published)
	require.NoError(t, err)
	assert.Equal(t, long, resolved.Content)
}

func TestSavePosition(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)

	created, err := svc.CreateNote(ctx, "user-1", CreateInput{Title: "Pinned", Content: "hi"})
	require.NoError(t, err)

	require.NoError(t, svc.SavePosition(ctx, "user-1", created.ID, domain.Position{X: 120, Y: -40}))

	stored, err := repo.FindNoteByID(ctx, "user-1", created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Position)
	assert.Equal(t, 120.0, stored.Position.X)
	assert.Equal(t, -40.0, stored.Position.Y)
}

func TestListNotesCache(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockRepository()
	blobs := blob.NewMemoryStore()
	logger := zap.NewNop()
	codec := chunk.NewCodec(chunk.DefaultCeiling, blobs, logger)
	mem := cache.NewMemoryCache()
	svc := NewService(repo, codec, blobs, mem, logger)

	created, err := svc.CreateNote(ctx, "user-1", CreateInput{Title: "One", Content: "a"})
	require.NoError(t, err)

	first, err := svc.ListNotes(ctx, "user-1", repository.NoteQuery{})
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Break the repository; a cached listing must still be served.
	repo.SetError("ListNotes", errors.New("down"))
	cached, err := svc.ListNotes(ctx, "user-1", repository.NoteQuery{})
	require.NoError(t, err)
	assert.Len(t, cached, 1)
	repo.ClearErrors()

	// Writes invalidate, so the next listing reflects the delete.
	require.NoError(t, svc.DeleteNote(ctx, "user-1", created.ID))
	after, err := svc.ListNotes(ctx, "user-1", repository.NoteQuery{})
	require.NoError(t, err)
	assert.Empty(t, after)
}
