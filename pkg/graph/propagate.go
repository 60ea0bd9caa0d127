package graph

import (
	"github.com/aretw0/ussdflow/pkg/domain"
)

// propagateNames renames the destinations of a prompt's routes after their
// labels. A menu-branch group takes the label as its name and so does its
// single start node's flowName; a plain node takes it as its name. Other
// groups and empty labels are left alone. nodes is modified in place and
// the scopes holding renamed nodes are returned.
func propagateNames(nodes []domain.Node, edges []domain.Edge, promptID string, routes []domain.PromptRoute) []string {
	idx := domain.IndexNodes(nodes)
	var touched []string
	rename := func(i int, name string) {
		if nodes[i].Name() == name {
			return
		}
		nodes[i] = nodes[i].WithName(name)
		touched = append(touched, nodes[i].ParentScopeID)
	}

	for _, r := range routes {
		if r.Label == "" {
			continue
		}
		for _, e := range edges {
			if e.SourceNodeID != promptID || e.SourceHandle != r.Key {
				continue
			}
			i, ok := idx[e.TargetNodeID]
			if !ok {
				continue
			}
			target := nodes[i]
			switch {
			case target.IsMenuBranch():
				rename(i, r.Label)
				if start, ok := soleStart(nodes, target.ID); ok {
					rename(start, r.Label)
				}
			case !target.IsGroup():
				rename(i, r.Label)
			}
		}
	}
	return touched
}

func soleStart(nodes []domain.Node, groupID string) (int, bool) {
	found := -1
	for i, n := range nodes {
		if n.ParentScopeID != groupID || !n.IsStart() {
			continue
		}
		if found >= 0 {
			return -1, false
		}
		found = i
	}
	return found, found >= 0
}
