// Package scope tracks the drill-down position inside the nested flow graph
// and filters the flat node/edge collections down to what is visible there.
package scope

import (
	"fmt"
	"slices"

	"github.com/aretw0/ussdflow/pkg/domain"
)

// Root is the implicit top-level scope.
const Root = ""

// Crumb is one step of the path from the root to the current scope.
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Navigator holds the id of the group currently drilled into.
// The zero value is positioned at the root.
type Navigator struct {
	current string
}

// Current returns the active scope id (Root for the top level).
func (n *Navigator) Current() string { return n.current }

// Enter drills into groupID.
func (n *Navigator) Enter(nodes []domain.Node, groupID string) error {
	if groupID == Root {
		n.current = Root
		return nil
	}
	g, ok := find(nodes, groupID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, groupID)
	}
	if !g.IsGroup() {
		return fmt.Errorf("%w: %s", domain.ErrNotAGroup, groupID)
	}
	n.current = groupID
	return nil
}

// Exit leaves the current scope. Without a target it moves one level up,
// following the current group's own parent link; with a target it jumps
// straight to that scope.
func (n *Navigator) Exit(nodes []domain.Node, target ...string) error {
	if len(target) > 0 {
		return n.Enter(nodes, target[0])
	}
	if n.current == Root {
		return nil
	}
	g, ok := find(nodes, n.current)
	if !ok {
		n.current = Root
		return nil
	}
	n.current = g.ParentScopeID
	return nil
}

// Reset moves the pointer without validation. It is used by the store when
// the active scope is deleted out from under it.
func (n *Navigator) Reset(id string) { n.current = id }

// Visible returns the nodes whose parent is scopeID and the edges whose
// endpoints are both visible. Cross-scope edges are never returned.
func Visible(nodes []domain.Node, edges []domain.Edge, scopeID string) ([]domain.Node, []domain.Edge) {
	visNodes := make([]domain.Node, 0)
	ids := make(map[string]bool)
	for _, n := range nodes {
		if n.ParentScopeID == scopeID {
			visNodes = append(visNodes, n)
			ids[n.ID] = true
		}
	}
	visEdges := make([]domain.Edge, 0)
	for _, e := range edges {
		if ids[e.SourceNodeID] && ids[e.TargetNodeID] {
			visEdges = append(visEdges, e)
		}
	}
	return visNodes, visEdges
}

// Children returns the direct children of scopeID.
func Children(nodes []domain.Node, scopeID string) []domain.Node {
	out, _ := Visible(nodes, nil, scopeID)
	return out
}

// Breadcrumbs walks from scopeID to the root and returns the path root-first.
// The root itself is not included. Broken or cyclic parent chains stop the walk.
func Breadcrumbs(nodes []domain.Node, scopeID string) []Crumb {
	byID := make(map[string]domain.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var crumbs []Crumb
	seen := make(map[string]bool)
	for id := scopeID; id != Root && !seen[id]; {
		seen[id] = true
		n, ok := byID[id]
		if !ok {
			break
		}
		crumbs = append(crumbs, Crumb{ID: n.ID, Name: n.Name()})
		id = n.ParentScopeID
	}
	slices.Reverse(crumbs)
	return crumbs
}

// Descendants returns the ids of every node nested under any of roots, at
// any depth, excluding the roots themselves. It iterates to a fixed point so
// the order of nodes does not matter.
func Descendants(nodes []domain.Node, roots ...string) map[string]bool {
	in := make(map[string]bool, len(roots))
	for _, r := range roots {
		in[r] = true
	}
	out := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for _, n := range nodes {
			if in[n.ID] || out[n.ID] {
				continue
			}
			if in[n.ParentScopeID] || out[n.ParentScopeID] {
				out[n.ID] = true
				changed = true
			}
		}
	}
	return out
}

// Ancestors returns the parent chain of id, nearest first.
func Ancestors(nodes []domain.Node, id string) []string {
	byID := make(map[string]domain.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	var out []string
	seen := map[string]bool{id: true}
	cur, ok := byID[id]
	for ok && cur.ParentScopeID != Root && !seen[cur.ParentScopeID] {
		seen[cur.ParentScopeID] = true
		out = append(out, cur.ParentScopeID)
		cur, ok = byID[cur.ParentScopeID]
	}
	return out
}

func find(nodes []domain.Node, id string) (domain.Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return domain.Node{}, false
}
