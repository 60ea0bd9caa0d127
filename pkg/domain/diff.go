package domain

import (
	"reflect"
)

// GraphDiff summarizes the changes between two versions of a graph.
// It is designed to be logged or serialized for partial client updates.
type GraphDiff struct {
	AddedNodes   []string `json:"added_nodes,omitempty"`
	RemovedNodes []string `json:"removed_nodes,omitempty"`
	ChangedNodes []string `json:"changed_nodes,omitempty"`
	AddedEdges   []string `json:"added_edges,omitempty"`
	RemovedEdges []string `json:"removed_edges,omitempty"`
}

// Diff calculates the difference between two node/edge sets.
// Ids are reported in the order they appear in the newer (or, for removals,
// the older) collection. It returns nil when nothing changed.
func Diff(oldNodes []Node, oldEdges []Edge, newNodes []Node, newEdges []Edge) *GraphDiff {
	diff := &GraphDiff{}

	oldIdx := IndexNodes(oldNodes)
	newIdx := IndexNodes(newNodes)

	for _, n := range newNodes {
		i, ok := oldIdx[n.ID]
		if !ok {
			diff.AddedNodes = append(diff.AddedNodes, n.ID)
			continue
		}
		if !reflect.DeepEqual(oldNodes[i], n) {
			diff.ChangedNodes = append(diff.ChangedNodes, n.ID)
		}
	}
	for _, n := range oldNodes {
		if _, ok := newIdx[n.ID]; !ok {
			diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
		}
	}

	oldEdgeIDs := edgeSet(oldEdges)
	newEdgeIDs := edgeSet(newEdges)
	for _, e := range newEdges {
		if !oldEdgeIDs[e.ID] {
			diff.AddedEdges = append(diff.AddedEdges, e.ID)
		}
	}
	for _, e := range oldEdges {
		if !newEdgeIDs[e.ID] {
			diff.RemovedEdges = append(diff.RemovedEdges, e.ID)
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func edgeSet(edges []Edge) map[string]bool {
	set := make(map[string]bool, len(edges))
	for _, e := range edges {
		set[e.ID] = true
	}
	return set
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *GraphDiff) IsEmpty() bool {
	return len(d.AddedNodes) == 0 &&
		len(d.RemovedNodes) == 0 &&
		len(d.ChangedNodes) == 0 &&
		len(d.AddedEdges) == 0 &&
		len(d.RemovedEdges) == 0
}
