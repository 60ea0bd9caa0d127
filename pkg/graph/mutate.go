package graph

import (
	"fmt"
	"slices"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/surgery"
)

// Add inserts n. An empty id is minted. The parent must be an existing
// group, and the node must not introduce a second start node or a sibling
// name collision in its scope.
func (s *Store) Add(n domain.Node) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.Data == nil {
		return nil, s.reject(domain.OpAdd, fmt.Errorf("%w: node %q has no payload", domain.ErrInvalidPayload, n.ID))
	}
	if n.ID == "" {
		n.ID = s.newID()
	}
	n.Type = n.Data.Kind()
	if _, _, dup := s.find(n.ID); dup {
		return nil, s.reject(domain.OpAdd, fmt.Errorf("%w: %s", domain.ErrDuplicateID, n.ID))
	}
	if n.ParentScopeID != "" {
		parent, _, ok := s.find(n.ParentScopeID)
		if !ok {
			return nil, s.reject(domain.OpAdd, fmt.Errorf("parent %w: %s", domain.ErrNodeNotFound, n.ParentScopeID))
		}
		if !parent.IsGroup() {
			return nil, s.reject(domain.OpAdd, fmt.Errorf("parent %w: %s", domain.ErrNotAGroup, n.ParentScopeID))
		}
	}
	if err := validatePayload(n.Data); err != nil {
		return nil, s.reject(domain.OpAdd, err)
	}

	nodes := append(domain.CloneNodes(s.current.Nodes), n.Clone())
	return s.commit(change{
		op:    domain.OpAdd,
		nodes: nodes,
		edges: s.current.Edges,
		scope: s.current.Scope,
		check: []string{n.ParentScopeID},
	})
}

// Remove deletes id with its whole subtree and every edge touching it. If
// the active scope was inside the subtree it moves to the nearest surviving
// ancestor.
func (s *Store) Remove(id string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, edges, removed, err := surgery.Remove(s.current.Nodes, s.current.Edges, id)
	if err != nil {
		return nil, s.reject(domain.OpRemove, err)
	}
	return s.commit(change{
		op:    domain.OpRemove,
		nodes: nodes,
		edges: edges,
		scope: surgery.SurvivingScope(s.current.Nodes, removed, s.current.Scope),
		check: []string{},
	})
}

// UpdateNodeData shallow-merges patch into the payload of id: each key
// replaces the payload field of the same JSON name wholesale. When the patch
// changes a prompt's routes, the labels are propagated to the route
// destinations in the same mutation.
func (s *Store) UpdateNodeData(id string, patch map[string]any) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, i, ok := s.find(id)
	if !ok {
		return nil, s.reject(domain.OpUpdateData, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id))
	}
	data, err := applyPatch(n.Data, patch)
	if err != nil {
		return nil, s.reject(domain.OpUpdateData, fmt.Errorf("node %q: %w", id, err))
	}
	if err := validatePayload(data); err != nil {
		return nil, s.reject(domain.OpUpdateData, err)
	}

	nodes := domain.CloneNodes(s.current.Nodes)
	nodes[i].Data = data
	touched := []string{n.ParentScopeID}

	if prompt, ok := data.(domain.PromptData); ok {
		if _, routesChanged := patch["routes"]; routesChanged {
			touched = append(touched, propagateNames(nodes, s.current.Edges, id, prompt.Routes)...)
		}
	}

	return s.commit(change{
		op:    domain.OpUpdateData,
		nodes: nodes,
		edges: s.current.Edges,
		scope: s.current.Scope,
		check: touched,
	})
}

// SetNodes replaces the node collection wholesale. The new collection is
// checked against every invariant, not only the scopes it touches.
func (s *Store) SetNodes(nodes []domain.Node) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(change{
		op:       domain.OpSetNodes,
		nodes:    domain.CloneNodes(nodes),
		edges:    s.current.Edges,
		scope:    s.current.Scope,
		checkAll: true,
	})
}

// SetEdges replaces the edge collection wholesale.
func (s *Store) SetEdges(edges []domain.Edge) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(change{
		op:    domain.OpSetEdges,
		nodes: s.current.Nodes,
		edges: slices.Clone(edges),
		scope: s.current.Scope,
		check: []string{},
	})
}

// Connect adds e and writes its target id into the source payload slot named
// by e.SourceHandle. An existing edge on the same source and handle is
// replaced. Both endpoints must share a scope; routes that refer to their
// destination by name need a named target.
func (s *Store) Connect(e domain.Edge) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, i, ok := s.find(e.SourceNodeID)
	if !ok {
		return nil, s.reject(domain.OpConnect, fmt.Errorf("source %w: %s", domain.ErrNodeNotFound, e.SourceNodeID))
	}
	dst, _, ok := s.find(e.TargetNodeID)
	if !ok {
		return nil, s.reject(domain.OpConnect, fmt.Errorf("target %w: %s", domain.ErrNodeNotFound, e.TargetNodeID))
	}
	if src.ParentScopeID != dst.ParentScopeID {
		return nil, s.reject(domain.OpConnect, fmt.Errorf("%w: %s -> %s", domain.ErrCrossScope, src.ID, dst.ID))
	}
	if src.Type.RequiresNamedTarget() && dst.Name() == "" {
		return nil, s.reject(domain.OpConnect, fmt.Errorf("%w: %s", domain.ErrTargetUnnamed, dst.ID))
	}
	if !surgery.RoutingReady(s.current.Nodes, dst) {
		return nil, s.reject(domain.OpConnect, fmt.Errorf("%w: %s", domain.ErrBranchNotReady, dst.ID))
	}
	r, ok := src.Data.(domain.Router)
	if !ok {
		return nil, s.reject(domain.OpConnect, fmt.Errorf("%w: %s has no outputs", domain.ErrUnknownHandle, src.ID))
	}
	data, ok := r.WithDestination(e.SourceHandle, dst.ID)
	if !ok {
		return nil, s.reject(domain.OpConnect, fmt.Errorf("%w: %q on %s", domain.ErrUnknownHandle, e.SourceHandle, src.ID))
	}

	if e.ID == "" {
		e.ID = s.newID()
	}
	edges := make([]domain.Edge, 0, len(s.current.Edges)+1)
	for _, old := range s.current.Edges {
		if old.SourceNodeID == e.SourceNodeID && old.SourceHandle == e.SourceHandle {
			continue
		}
		if old.ID == e.ID {
			return nil, s.reject(domain.OpConnect, fmt.Errorf("%w: edge %s", domain.ErrDuplicateID, e.ID))
		}
		edges = append(edges, old)
	}
	edges = append(edges, e)

	nodes := domain.CloneNodes(s.current.Nodes)
	nodes[i].Data = data
	return s.commit(change{
		op:    domain.OpConnect,
		nodes: nodes,
		edges: edges,
		scope: s.current.Scope,
		check: []string{},
	})
}

// Disconnect removes the edge and clears the payload slot it fed.
func (s *Store) Disconnect(edgeID string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j := slices.IndexFunc(s.current.Edges, func(e domain.Edge) bool { return e.ID == edgeID })
	if j < 0 {
		return nil, s.reject(domain.OpDisconnect, fmt.Errorf("%w: %s", domain.ErrEdgeNotFound, edgeID))
	}
	e := s.current.Edges[j]
	edges := slices.Delete(slices.Clone(s.current.Edges), j, j+1)

	nodes := domain.CloneNodes(s.current.Nodes)
	if _, i, ok := s.find(e.SourceNodeID); ok {
		if r, ok := nodes[i].Data.(domain.Router); ok {
			if data, ok := r.WithDestination(e.SourceHandle, nil); ok {
				nodes[i].Data = data
			}
		}
	}
	return s.commit(change{
		op:    domain.OpDisconnect,
		nodes: nodes,
		edges: edges,
		scope: s.current.Scope,
	})
}

// Select marks exactly ids as selected.
func (s *Store) Select(ids ...string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, _, ok := s.find(id); !ok {
			return nil, s.reject(domain.OpSelect, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id))
		}
		want[id] = true
	}
	nodes := domain.CloneNodes(s.current.Nodes)
	for i := range nodes {
		nodes[i].Selected = want[nodes[i].ID]
	}
	return s.commit(change{
		op:    domain.OpSelect,
		nodes: nodes,
		edges: s.current.Edges,
		scope: s.current.Scope,
	})
}

func validatePayload(data domain.NodeData) error {
	if a, ok := data.(domain.ActionData); ok {
		return a.ValidateBody()
	}
	return nil
}
