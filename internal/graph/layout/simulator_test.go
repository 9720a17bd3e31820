package layout

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secondbrain-backend/internal/domain"
)

func twoNodeGraph(d float64) domain.Graph {
	return domain.Graph{
		Nodes: []domain.GraphNode{
			{ID: "a", Role: domain.NodeRoleNote, Position: domain.Position{X: 0, Y: 0}},
			{ID: "b", Role: domain.NodeRoleNote, Position: domain.Position{X: d, Y: 0}},
		},
		Edges: []domain.GraphEdge{{ID: "e", Source: "a", Target: "b"}},
	}
}

func TestSimulatorStateMachine(t *testing.T) {
	s := NewSimulator(domain.Position{})
	assert.Equal(t, StateIdle, s.State())

	s.Load(twoNodeGraph(100))
	assert.Equal(t, StateRunning, s.State())
	assert.Equal(t, 1.0, s.Alpha())

	s.Load(domain.Graph{})
	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.Tick())
}

func TestSimulatorConvergence(t *testing.T) {
	s := NewSimulator(domain.Position{})
	s.Load(twoNodeGraph(100))

	// Pure decay schedule: 1.0 * 0.99^n < 0.01 within 459 ticks.
	ticks := 0
	for s.Tick() {
		ticks++
		require.LessOrEqual(t, ticks, 459)
	}
	assert.Equal(t, StateConverged, s.State())
	assert.Equal(t, 459, ticks+1)
	assert.Less(t, s.Alpha(), 0.01)

	// No further movement after convergence.
	before := s.Nodes()
	assert.False(t, s.Tick())
	assert.Equal(t, before, s.Nodes())
}

func TestVelocityClamp(t *testing.T) {
	// Near-coincident nodes make the inverse-square repulsion enormous;
	// per-tick displacement must still be capped at 5 units.
	s := NewSimulator(domain.Position{})
	s.Load(domain.Graph{
		Nodes: []domain.GraphNode{
			{ID: "a", Position: domain.Position{X: 0, Y: 0}},
			{ID: "b", Position: domain.Position{X: 0.001, Y: 0}},
		},
	})

	before := s.Nodes()
	s.Tick()
	after := s.Nodes()
	for i := range after {
		dx := after[i].Position.X - before[i].Position.X
		dy := after[i].Position.Y - before[i].Position.Y
		assert.LessOrEqual(t, math.Hypot(dx, dy), 5.0+1e-9)
	}
}

func TestCoincidentNodesStayFinite(t *testing.T) {
	s := NewSimulator(domain.Position{})
	s.Load(domain.Graph{
		Nodes: []domain.GraphNode{
			{ID: "a", Position: domain.Position{X: 10, Y: 10}},
			{ID: "b", Position: domain.Position{X: 10, Y: 10}},
		},
		Edges: []domain.GraphEdge{{ID: "e", Source: "a", Target: "b"}},
	})

	for i := 0; i < 10; i++ {
		s.Tick()
	}
	for _, n := range s.Nodes() {
		assert.True(t, n.Position.IsFinite(), "node %s has non-finite position", n.ID)
	}
}

func TestShortRangeForcesAgreeUnderTarget(t *testing.T) {
	// Two connected nodes 150 apart: the pair repulsion pushes them apart
	// and the spring, being shorter than its 200-unit target, pushes apart
	// too. Both x-components on the left node must be negative.
	a := domain.Position{X: 0, Y: 0}
	b := domain.Position{X: 150, Y: 0}

	rx, _ := RepulsionForce(a, b)
	sx, _ := SpringForce(a, b)
	assert.Negative(t, rx)
	assert.Negative(t, sx)
}

func TestCenterForceThreshold(t *testing.T) {
	center := domain.Position{}

	fx, fy := CenterForce(domain.Position{X: 400, Y: 0}, center)
	assert.Zero(t, fx)
	assert.Zero(t, fy)

	fx, fy = CenterForce(domain.Position{X: 600, Y: 0}, center)
	assert.InDelta(t, -0.1, fx, 1e-9)
	assert.Zero(t, fy)
}

func TestCategoryRepulsionOnlyBetweenCategories(t *testing.T) {
	s := NewSimulator(domain.Position{})
	s.Load(domain.Graph{
		Nodes: []domain.GraphNode{
			{ID: "category-a", Role: domain.NodeRoleCategory, Position: domain.Position{X: 0, Y: 0}},
			{ID: "category-b", Role: domain.NodeRoleCategory, Position: domain.Position{X: 250, Y: 0}},
		},
	})
	s.Tick()
	nodes := s.Nodes()

	// 250 apart is outside generic repulsion but inside the category
	// range, so the anchors still drift apart.
	assert.Less(t, nodes[0].Position.X, 0.0)
	assert.Greater(t, nodes[1].Position.X, 250.0)

	s.Load(domain.Graph{
		Nodes: []domain.GraphNode{
			{ID: "n1", Role: domain.NodeRoleNote, Position: domain.Position{X: 0, Y: 0}},
			{ID: "n2", Role: domain.NodeRoleNote, Position: domain.Position{X: 250, Y: 0}},
		},
	})
	s.Tick()
	nodes = s.Nodes()
	assert.Equal(t, 0.0, nodes[0].Position.X)
	assert.Equal(t, 250.0, nodes[1].Position.X)
}

func TestRunStopsOnConvergence(t *testing.T) {
	s := NewSimulator(domain.Position{})
	s.Load(twoNodeGraph(100))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.Run(ctx, time.Microsecond)
	require.NoError(t, err)
	assert.Equal(t, StateConverged, s.State())
}

func TestRevealSchedule(t *testing.T) {
	r := DefaultRevealSchedule

	assert.Equal(t, time.Duration(0), r.NodeDelay(0))
	assert.Equal(t, 1500*time.Millisecond, r.NodeDelay(3))

	// 5 nodes: 4*500ms staggering + 800ms entrance + 500ms buffer.
	assert.Equal(t, 3300*time.Millisecond, r.EdgesVisibleAfter(5))
	assert.Equal(t, time.Duration(0), r.EdgesVisibleAfter(0))
}

func TestSimulatorSettlesSmallGraph(t *testing.T) {
	g := domain.Graph{}
	for i := 0; i < 4; i++ {
		g.Nodes = append(g.Nodes, domain.GraphNode{
			ID:       fmt.Sprintf("n%d", i),
			Position: domain.Position{X: float64(i * 30), Y: float64(i % 2 * 20)},
		})
	}
	g.Edges = append(g.Edges, domain.GraphEdge{ID: "e0", Source: "n0", Target: "n1"})

	s := NewSimulator(domain.Position{})
	s.Load(g)
	for s.Tick() {
	}

	for _, n := range s.Nodes() {
		assert.True(t, n.Position.IsFinite())
	}
}
