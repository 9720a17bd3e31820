package layout

import "time"

// RevealSchedule drives the staged entrance animation: nodes appear in
// reveal-index order, and edges stay hidden until the last node's
// entrance would have finished.
type RevealSchedule struct {
	PerNodeDelay     time.Duration
	EntranceDuration time.Duration
	Buffer           time.Duration
}

// DefaultRevealSchedule matches the timings the web client animates with.
var DefaultRevealSchedule = RevealSchedule{
	PerNodeDelay:     500 * time.Millisecond,
	EntranceDuration: 800 * time.Millisecond,
	Buffer:           500 * time.Millisecond,
}

// NodeDelay is how long after load the node at the given reveal index
// starts its entrance.
func (r RevealSchedule) NodeDelay(revealIndex int) time.Duration {
	if revealIndex < 0 {
		return 0
	}
	return time.Duration(revealIndex) * r.PerNodeDelay
}

// EdgesVisibleAfter is the delay before edges may be drawn for a graph of
// numNodes nodes.
func (r RevealSchedule) EdgesVisibleAfter(numNodes int) time.Duration {
	if numNodes <= 0 {
		return 0
	}
	return time.Duration(numNodes-1)*r.PerNodeDelay + r.EntranceDuration + r.Buffer
}
