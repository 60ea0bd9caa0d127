package domain

// LocalSnapshot is the durable client-side copy of a workspace, rehydrated
// at startup before any remote catalog call is made.
type LocalSnapshot struct {
	Nodes              []Node       `json:"nodes"`
	Edges              []Edge       `json:"edges"`
	Flow               FlowDocument `json:"flow"`
	PublishedFlowNames []string     `json:"publishedFlowNames"`
}

// NewLocalSnapshot returns an empty snapshot with non-nil collections.
func NewLocalSnapshot() *LocalSnapshot {
	return &LocalSnapshot{
		Nodes:              []Node{},
		Edges:              []Edge{},
		PublishedFlowNames: []string{},
	}
}

// Clone returns a deep copy of s.
func (s *LocalSnapshot) Clone() *LocalSnapshot {
	if s == nil {
		return nil
	}
	out := &LocalSnapshot{
		Nodes:              CloneNodes(s.Nodes),
		Edges:              append([]Edge(nil), s.Edges...),
		Flow:               s.Flow,
		PublishedFlowNames: append([]string(nil), s.PublishedFlowNames...),
	}
	return out
}

// CloneNodes deep-copies a node slice.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// IndexNodes maps node ids to their position in nodes.
func IndexNodes(nodes []Node) map[string]int {
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		idx[n.ID] = i
	}
	return idx
}
