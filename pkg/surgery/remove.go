// Package surgery implements the structural edits of the flow graph: cascading
// delete, group and ungroup, copy and paste. Every function is pure. It takes
// the current nodes and edges and returns new slices, leaving its input
// untouched, so the store can validate a result with Check before
// publishing it.
package surgery

import (
	"fmt"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/scope"
)

// Remove deletes id, everything nested under it at any depth, and every edge
// touching a deleted node. Routes of surviving nodes that pointed into the
// deleted set are cleared. The returned set holds every deleted id.
func Remove(nodes []domain.Node, edges []domain.Edge, id string) ([]domain.Node, []domain.Edge, map[string]bool, error) {
	if _, ok := domain.IndexNodes(nodes)[id]; !ok {
		return nil, nil, nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}

	removed := scope.Descendants(nodes, id)
	removed[id] = true

	keptEdges := make([]domain.Edge, 0, len(edges))
	var dropped []domain.Edge
	for _, e := range edges {
		if removed[e.SourceNodeID] || removed[e.TargetNodeID] {
			dropped = append(dropped, e)
			continue
		}
		keptEdges = append(keptEdges, e)
	}

	keptNodes := make([]domain.Node, 0, len(nodes)-len(removed))
	for _, n := range nodes {
		if removed[n.ID] {
			continue
		}
		keptNodes = append(keptNodes, n.Clone())
	}
	return clearDestinations(keptNodes, dropped), keptEdges, removed, nil
}

// SurvivingScope returns where a scope pointer at current should land once
// the removed ids are gone: current itself if it survived, else its nearest
// surviving ancestor, else the root. nodes is the graph before removal.
func SurvivingScope(nodes []domain.Node, removed map[string]bool, current string) string {
	if current == scope.Root || !removed[current] {
		return current
	}
	for _, a := range scope.Ancestors(nodes, current) {
		if !removed[a] {
			return a
		}
	}
	return scope.Root
}

// clearDestinations unsets the payload slot behind every dropped edge whose
// source is still present in nodes. nodes is modified in place.
func clearDestinations(nodes []domain.Node, dropped []domain.Edge) []domain.Node {
	if len(dropped) == 0 {
		return nodes
	}
	idx := domain.IndexNodes(nodes)
	for _, e := range dropped {
		i, ok := idx[e.SourceNodeID]
		if !ok {
			continue
		}
		r, ok := nodes[i].Data.(domain.Router)
		if !ok {
			continue
		}
		if data, ok := r.WithDestination(e.SourceHandle, nil); ok {
			nodes[i].Data = data
		}
	}
	return nodes
}
