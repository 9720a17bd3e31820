// Package graph transforms a user's notes into the node/edge structure
// backing the knowledge-graph view.
package graph

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"secondbrain-backend/internal/domain"
)

const (
	minRadius       = 200.0
	radiusPerGroup  = 50.0
	noteRadiusRatio = 0.6
	angularJitter   = 0.25 // radians, either side of the category slice
)

// Builder lays out notes around their category anchors. Placement jitter
// comes from the injected random source; topology and reveal order are
// fully deterministic for a given note set. A single Builder is shared
// across requests, so draws from the random source are serialized.
type Builder struct {
	center domain.Position

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBuilder creates a builder centered on the given point. A nil rng
// gets an unseeded source, fine for production use.
func NewBuilder(center domain.Position, rng *rand.Rand) *Builder {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Builder{center: center, rng: rng}
}

// Build produces the graph for the given notes. Notes without a category
// are left out entirely.
func (b *Builder) Build(notes []domain.Note) domain.Graph {
	var categorized []domain.Note
	for _, n := range notes {
		if n.HasCategory() {
			categorized = append(categorized, n)
		}
	}

	categories := orderCategories(categorized)
	k := len(categories)
	if k == 0 {
		return domain.Graph{}
	}

	radius := math.Max(minRadius, float64(k)*radiusPerGroup)
	slice := 2 * math.Pi / float64(k)

	angleFor := make(map[string]float64, k)
	nodes := make([]domain.GraphNode, 0, k+len(categorized))
	reveal := 0

	for i, label := range categories {
		angle := float64(i) * slice
		angleFor[label] = angle
		nodes = append(nodes, domain.GraphNode{
			ID:    "category-" + label,
			Role:  domain.NodeRoleCategory,
			Label: label,
			Position: domain.Position{
				X: b.center.X + radius*math.Cos(angle),
				Y: b.center.Y + radius*math.Sin(angle),
			},
			RevealIndex: reveal,
		})
		reveal++
	}

	// Notes reveal in creation order regardless of category.
	sort.SliceStable(categorized, func(i, j int) bool {
		return categorized[i].CreatedAt.Before(categorized[j].CreatedAt)
	})

	edges := make([]domain.GraphEdge, 0, len(categorized))
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, n := range categorized {
		angle := angleFor[n.Category] + (b.rng.Float64()*2-1)*angularJitter
		r := radius * noteRadiusRatio * (1.0 + b.rng.Float64()*0.2)
		nodes = append(nodes, domain.GraphNode{
			ID:    n.ID,
			Role:  domain.NodeRoleNote,
			Label: n.Title,
			Position: domain.Position{
				X: b.center.X + r*math.Cos(angle),
				Y: b.center.Y + r*math.Sin(angle),
			},
			RevealIndex: reveal,
		})
		reveal++
		edges = append(edges, domain.GraphEdge{
			ID:     "edge-" + n.ID,
			Source: n.ID,
			Target: "category-" + n.Category,
		})
	}

	return domain.Graph{Nodes: nodes, Edges: edges}
}

// orderCategories returns distinct category labels ordered by the earliest
// creation time of any note in the category, ties broken by label.
func orderCategories(notes []domain.Note) []string {
	earliest := make(map[string]int, len(notes))
	var labels []string
	for i, n := range notes {
		if j, ok := earliest[n.Category]; !ok || n.CreatedAt.Before(notes[j].CreatedAt) {
			if !ok {
				labels = append(labels, n.Category)
			}
			earliest[n.Category] = i
		}
	}
	sort.Slice(labels, func(i, j int) bool {
		a, b := notes[earliest[labels[i]]], notes[earliest[labels[j]]]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return labels[i] < labels[j]
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return labels
}
