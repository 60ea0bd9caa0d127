package flowdoc

import (
	"fmt"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/scope"
)

// Subflow extracts everything nested under groupID and re-roots it, so the
// group's direct children become top-level nodes of the returned graph.
// Only edges with both endpoints inside the subflow are kept.
func Subflow(nodes []domain.Node, edges []domain.Edge, groupID string) ([]domain.Node, []domain.Edge, error) {
	idx := domain.IndexNodes(nodes)
	i, ok := idx[groupID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, groupID)
	}
	if !nodes[i].IsGroup() {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrNotAGroup, groupID)
	}

	members := scope.Descendants(nodes, groupID)
	outNodes := make([]domain.Node, 0, len(members))
	for _, n := range nodes {
		if !members[n.ID] {
			continue
		}
		n = n.Clone()
		if n.ParentScopeID == groupID {
			n.ParentScopeID = scope.Root
		}
		outNodes = append(outNodes, n)
	}

	outEdges := make([]domain.Edge, 0)
	for _, e := range edges {
		if members[e.SourceNodeID] && members[e.TargetNodeID] {
			outEdges = append(outEdges, e)
		}
	}
	return outNodes, outEdges, nil
}

// StartOf returns the start nodes that are direct children of groupID.
func StartOf(nodes []domain.Node, groupID string) []domain.Node {
	var out []domain.Node
	for _, n := range nodes {
		if n.ParentScopeID == groupID && n.IsStart() {
			out = append(out, n)
		}
	}
	return out
}
