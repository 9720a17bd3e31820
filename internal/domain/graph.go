package domain

// NodeRole distinguishes category anchor nodes from note nodes in the
// auto-generated graph view.
type NodeRole string

const (
	NodeRoleCategory NodeRole = "category"
	NodeRoleNote     NodeRole = "note"
)

// GraphNode is one vertex of the graph view. RevealIndex is the node's
// ordinal in the staged entrance animation: categories first, then notes by
// creation time.
type GraphNode struct {
	ID          string   `json:"id"`
	Role        NodeRole `json:"role"`
	Label       string   `json:"label"`
	Position    Position `json:"position"`
	RevealIndex int      `json:"revealIndex"`
}

// IsCategory reports whether the node anchors a category.
func (n GraphNode) IsCategory() bool {
	return n.Role == NodeRoleCategory
}

// GraphEdge is a directed edge from a note node to its category node.
type GraphEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the node/edge set rendered by the graph view. The edge set is a
// forest of stars rooted at category nodes: every note node has exactly one
// outgoing edge, category nodes have none.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
