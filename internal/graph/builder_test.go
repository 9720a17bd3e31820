package graph

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secondbrain-backend/internal/domain"
)

func noteAt(id, category string, created time.Time) domain.Note {
	return domain.Note{
		ID:        id,
		Title:     "note " + id,
		Category:  category,
		CreatedAt: created,
	}
}

func TestBuildTopology(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(42))
	b := NewBuilder(domain.Position{}, rng)

	var notes []domain.Note
	categories := []string{"work", "home", "ideas", "work", "ideas", "work"}
	for i, c := range categories {
		notes = append(notes, noteAt(fmt.Sprintf("n%d", i), c, base.Add(time.Duration(i)*time.Minute)))
	}
	// Uncategorized notes never appear in the graph.
	notes = append(notes, noteAt("loose", "", base))

	g := b.Build(notes)

	var catCount, noteCount int
	ids := make(map[string]bool)
	for _, n := range g.Nodes {
		ids[n.ID] = true
		if n.IsCategory() {
			catCount++
		} else {
			noteCount++
		}
	}
	assert.Equal(t, 3, catCount)
	assert.Equal(t, 6, noteCount)
	require.Len(t, g.Edges, 6)
	for _, e := range g.Edges {
		assert.True(t, ids[e.Source], "edge source %s missing from node set", e.Source)
		assert.True(t, ids[e.Target], "edge target %s missing from node set", e.Target)
	}
	assert.False(t, ids["loose"])
}

func TestBuildRevealOrder(t *testing.T) {
	t1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)

	b := NewBuilder(domain.Position{}, rand.New(rand.NewSource(1)))
	g := b.Build([]domain.Note{
		noteAt("n1", "a", t1),
		noteAt("n2", "a", t2),
		noteAt("n3", "b", t3),
	})

	require.Len(t, g.Nodes, 5)
	byReveal := make([]string, len(g.Nodes))
	for _, n := range g.Nodes {
		require.Less(t, n.RevealIndex, len(g.Nodes))
		byReveal[n.RevealIndex] = n.ID
	}
	assert.Equal(t, []string{"category-a", "category-b", "n1", "n2", "n3"}, byReveal)
}

func TestBuildCategoryTieBreak(t *testing.T) {
	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	b := NewBuilder(domain.Position{}, rand.New(rand.NewSource(1)))
	g := b.Build([]domain.Note{
		noteAt("n1", "zebra", ts),
		noteAt("n2", "apple", ts),
	})

	require.Len(t, g.Nodes, 4)
	assert.Equal(t, "category-apple", g.Nodes[0].ID)
	assert.Equal(t, 0, g.Nodes[0].RevealIndex)
	assert.Equal(t, "category-zebra", g.Nodes[1].ID)
}

func TestBuildPlacement(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	center := domain.Position{X: 500, Y: 300}
	b := NewBuilder(center, rand.New(rand.NewSource(7)))

	var notes []domain.Note
	for i := 0; i < 8; i++ {
		notes = append(notes, noteAt(fmt.Sprintf("n%d", i), fmt.Sprintf("c%d", i), base.Add(time.Duration(i)*time.Second)))
	}
	g := b.Build(notes)

	// 8 categories puts the ring at radius 400.
	for _, n := range g.Nodes {
		dx := n.Position.X - center.X
		dy := n.Position.Y - center.Y
		dist := math.Hypot(dx, dy)
		if n.IsCategory() {
			assert.InDelta(t, 400.0, dist, 1e-9)
		} else {
			assert.GreaterOrEqual(t, dist, 400*0.6-1e-9)
			assert.Less(t, dist, 400*0.6*1.2)
		}
	}
}

func TestBuildConcurrent(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	b := NewBuilder(domain.Position{}, rand.New(rand.NewSource(9)))

	var notes []domain.Note
	for i := 0; i < 10; i++ {
		notes = append(notes, noteAt(fmt.Sprintf("n%d", i), fmt.Sprintf("c%d", i%3), base.Add(time.Duration(i)*time.Second)))
	}

	var wg sync.WaitGroup
	results := make([]domain.Graph, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = b.Build(notes)
		}(i)
	}
	wg.Wait()

	for _, g := range results {
		assert.Len(t, g.Nodes, 13)
		assert.Len(t, g.Edges, 10)
	}
}

func TestBuildEmpty(t *testing.T) {
	b := NewBuilder(domain.Position{}, rand.New(rand.NewSource(1)))
	g := b.Build(nil)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
}
