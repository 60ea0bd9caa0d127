package surgery

import (
	"fmt"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/google/uuid"
)

// GroupSpec describes the group node created by Group.
type GroupSpec struct {
	// ID of the new group. A random one is minted when empty.
	ID   string
	Name string

	// Scope and Position place an empty group. They are ignored when
	// members are given: the group then sits at their centroid, in their scope.
	Scope    string
	Position domain.Position
}

// Group wraps ids in a new group node. The members must share one parent
// scope. Their positions are rewritten relative to the centroid so the
// layout looks unchanged.
func Group(nodes []domain.Node, ids []string, spec GroupSpec) ([]domain.Node, domain.Node, error) {
	if spec.ID == "" {
		spec.ID = uuid.NewString()
	}
	idx := domain.IndexNodes(nodes)
	if _, dup := idx[spec.ID]; dup {
		return nil, domain.Node{}, fmt.Errorf("%w: %s", domain.ErrDuplicateID, spec.ID)
	}
	data := domain.GroupData{Name: spec.Name}

	if len(ids) == 0 {
		g := domain.NewNode(spec.ID, data, spec.Scope, spec.Position)
		return append(domain.CloneNodes(nodes), g), g, nil
	}

	members := make(map[string]bool, len(ids))
	var parent string
	var sum domain.Position
	first := len(nodes)
	for _, id := range ids {
		i, ok := idx[id]
		if !ok {
			return nil, domain.Node{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
		}
		if members[id] {
			continue
		}
		n := nodes[i]
		if len(members) == 0 {
			parent = n.ParentScopeID
		} else if n.ParentScopeID != parent {
			return nil, domain.Node{}, fmt.Errorf("%w: %s is outside scope %q", domain.ErrMixedScopes, id, parent)
		}
		members[id] = true
		sum = sum.Add(n.Position)
		first = min(first, i)
	}

	count := float64(len(members))
	centroid := domain.Position{X: sum.X / count, Y: sum.Y / count}
	g := domain.NewNode(spec.ID, data, parent, centroid)

	out := make([]domain.Node, 0, len(nodes)+1)
	for i, n := range nodes {
		if i == first {
			out = append(out, g)
		}
		n = n.Clone()
		if members[n.ID] {
			abs := AbsolutePosition(nodes, n.ID)
			n.ParentScopeID = g.ID
			n.Position = n.Position.Sub(centroid)
			n.PositionAbsolute = &abs
		}
		out = append(out, n)
	}
	return out, g, nil
}

// Ungroup dissolves one level of nesting: the group node is deleted and its
// direct children move to the group's own parent, their positions translated
// back by the group's position. Edges touching the group itself are dropped.
// It returns the ids of the released children.
func Ungroup(nodes []domain.Node, edges []domain.Edge, groupID string) ([]domain.Node, []domain.Edge, []string, error) {
	idx := domain.IndexNodes(nodes)
	i, ok := idx[groupID]
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, groupID)
	}
	g := nodes[i]
	if !g.IsGroup() {
		return nil, nil, nil, fmt.Errorf("%w: %s", domain.ErrNotAGroup, groupID)
	}

	var released []string
	out := make([]domain.Node, 0, len(nodes)-1)
	for _, n := range nodes {
		if n.ID == groupID {
			continue
		}
		n = n.Clone()
		if n.ParentScopeID == groupID {
			abs := AbsolutePosition(nodes, n.ID)
			n.ParentScopeID = g.ParentScopeID
			n.Position = n.Position.Add(g.Position)
			n.PositionAbsolute = &abs
			released = append(released, n.ID)
		}
		out = append(out, n)
	}

	keptEdges := make([]domain.Edge, 0, len(edges))
	var dropped []domain.Edge
	for _, e := range edges {
		if e.Touches(groupID) {
			dropped = append(dropped, e)
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	return clearDestinations(out, dropped), keptEdges, released, nil
}

// AbsolutePosition sums the relative positions along the parent chain of id.
// Unknown ids yield the zero position.
func AbsolutePosition(nodes []domain.Node, id string) domain.Position {
	idx := domain.IndexNodes(nodes)
	var abs domain.Position
	seen := make(map[string]bool)
	for i, ok := idx[id]; ok && !seen[nodes[i].ID]; i, ok = idx[nodes[i].ParentScopeID] {
		seen[nodes[i].ID] = true
		abs = abs.Add(nodes[i].Position)
	}
	return abs
}
