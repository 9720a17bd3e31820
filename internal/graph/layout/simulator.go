// Package layout runs the iterative 2-D force solver that settles graph
// and canvas nodes into readable positions.
package layout

import (
	"context"
	"math"
	"sync"
	"time"

	"secondbrain-backend/internal/domain"
)

// Force model constants. Repulsion and attraction are short-range, so a
// tick is effectively a local interaction even though it is written as an
// all-pairs loop.
const (
	alphaInitial = 1.0
	alphaDecay   = 0.99
	alphaMin     = 0.01

	centerThreshold = 500.0
	centerStrength  = 0.1

	repulsionRange    = 200.0
	repulsionStrength = 1000.0

	springTarget   = 200.0
	springStrength = 0.03

	categoryRange    = 300.0
	categoryStrength = 2000.0

	maxVelocity = 5.0
)

// State is the simulator lifecycle.
type State int

const (
	// StateIdle means no node set is loaded.
	StateIdle State = iota
	// StateRunning means ticks are still moving nodes.
	StateRunning
	// StateConverged means the temperature dropped below the threshold and
	// positions are final until a new node set is loaded.
	StateConverged
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateConverged:
		return "converged"
	default:
		return "idle"
	}
}

// Simulator owns the working copy of the node set while running. Callers
// replace the set wholesale via Load; they never mutate positions behind
// the simulator's back.
type Simulator struct {
	mu     sync.Mutex
	center domain.Position
	nodes  []domain.GraphNode
	edges  []domain.GraphEdge
	index  map[string]int
	alpha  float64
	state  State
}

// NewSimulator creates an idle simulator centered on the given point.
func NewSimulator(center domain.Position) *Simulator {
	return &Simulator{center: center, state: StateIdle}
}

// Load replaces the node and edge set and restarts the temperature
// schedule. An empty graph returns the simulator to idle.
func (s *Simulator) Load(g domain.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(g.Nodes) == 0 {
		s.nodes, s.edges, s.index = nil, nil, nil
		s.state = StateIdle
		return
	}

	s.nodes = make([]domain.GraphNode, len(g.Nodes))
	copy(s.nodes, g.Nodes)
	s.edges = make([]domain.GraphEdge, len(g.Edges))
	copy(s.edges, g.Edges)
	s.index = make(map[string]int, len(s.nodes))
	for i, n := range s.nodes {
		s.index[n.ID] = i
	}
	s.alpha = alphaInitial
	s.state = StateRunning
}

// State reports the current lifecycle state.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Alpha reports the current temperature.
func (s *Simulator) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// Nodes returns a copy of the current node set with up-to-date positions.
func (s *Simulator) Nodes() []domain.GraphNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.GraphNode, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Tick advances the simulation one step. It reports whether the simulator
// is still running afterwards. Forces are accumulated across the whole
// node set first and applied once, so within a tick every node sees the
// same snapshot of positions.
func (s *Simulator) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return false
	}

	vx := make([]float64, len(s.nodes))
	vy := make([]float64, len(s.nodes))

	for i := range s.nodes {
		fx, fy := CenterForce(s.nodes[i].Position, s.center)
		vx[i] += fx
		vy[i] += fy
	}

	for i := range s.nodes {
		for j := i + 1; j < len(s.nodes); j++ {
			fx, fy := RepulsionForce(s.nodes[i].Position, s.nodes[j].Position)
			vx[i] += fx
			vy[i] += fy
			vx[j] -= fx
			vy[j] -= fy

			if s.nodes[i].IsCategory() && s.nodes[j].IsCategory() {
				fx, fy := CategoryRepulsionForce(s.nodes[i].Position, s.nodes[j].Position)
				vx[i] += fx
				vy[i] += fy
				vx[j] -= fx
				vy[j] -= fy
			}
		}
	}

	for _, e := range s.edges {
		i, ok := s.index[e.Source]
		if !ok {
			continue
		}
		j, ok := s.index[e.Target]
		if !ok {
			continue
		}
		fx, fy := SpringForce(s.nodes[i].Position, s.nodes[j].Position)
		vx[i] += fx
		vy[i] += fy
		vx[j] -= fx
		vy[j] -= fy
	}

	for i := range s.nodes {
		cx, cy := clampVelocity(vx[i], vy[i])
		s.nodes[i].Position.X += cx
		s.nodes[i].Position.Y += cy
	}

	s.alpha *= alphaDecay
	if s.alpha < alphaMin {
		s.state = StateConverged
		return false
	}
	return true
}

// Run ticks at the given interval until convergence or context
// cancellation. It returns the context error if cancelled early.
func (s *Simulator) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !s.Tick() {
				return nil
			}
		}
	}
}

// CenterForce pulls a node back toward the center once it drifts more
// than the threshold away. Inside the threshold it is zero.
func CenterForce(p, center domain.Position) (float64, float64) {
	dx := center.X - p.X
	dy := center.Y - p.Y
	dist := math.Hypot(dx, dy)
	if dist <= centerThreshold || dist == 0 {
		return 0, 0
	}
	return centerStrength * dx / dist, centerStrength * dy / dist
}

// RepulsionForce is the generic short-range inverse-square push applied
// to every node pair. Returns the force on the first node; the second
// receives the negation. Coincident nodes contribute nothing.
func RepulsionForce(a, b domain.Position) (float64, float64) {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 || dist >= repulsionRange {
		return 0, 0
	}
	mag := repulsionStrength / (dist * dist)
	return mag * dx / dist, mag * dy / dist
}

// CategoryRepulsionForce is the extra separation applied between
// category anchors only, with a longer reach than the generic repulsion.
func CategoryRepulsionForce(a, b domain.Position) (float64, float64) {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 || dist >= categoryRange {
		return 0, 0
	}
	mag := categoryStrength / (dist * dist)
	return mag * dx / dist, mag * dy / dist
}

// SpringForce pulls an edge's endpoints toward the target separation.
// Returns the force on the first endpoint. When the nodes are closer
// than the target the magnitude is negative and the spring pushes apart.
func SpringForce(a, b domain.Position) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return 0, 0
	}
	mag := (dist - springTarget) * springStrength
	return mag * dx / dist, mag * dy / dist
}

func clampVelocity(vx, vy float64) (float64, float64) {
	mag := math.Hypot(vx, vy)
	if mag <= maxVelocity {
		return vx, vy
	}
	scale := maxVelocity / mag
	return vx * scale, vy * scale
}
