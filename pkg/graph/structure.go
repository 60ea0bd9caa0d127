package graph

import (
	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/surgery"
)

// Group wraps ids in a new group named name. With no ids an empty group is
// created in the active scope at the store's origin.
func (s *Store) Group(ids []string, name string) (*Snapshot, domain.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, g, err := surgery.Group(s.current.Nodes, ids, surgery.GroupSpec{
		ID:       s.newID(),
		Name:     name,
		Scope:    s.current.Scope,
		Position: s.origin,
	})
	if err != nil {
		return nil, domain.Node{}, s.reject(domain.OpGroup, err)
	}
	snap, err := s.commit(change{
		op:    domain.OpGroup,
		nodes: nodes,
		edges: s.current.Edges,
		scope: s.current.Scope,
		check: []string{g.ParentScopeID, g.ID},
	})
	if err != nil {
		return nil, domain.Node{}, err
	}
	return snap, g, nil
}

// Ungroup dissolves groupID one level, moving its children to its parent.
// The active scope leaves the group if it was inside it.
func (s *Store) Ungroup(groupID string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, _, _ := s.find(groupID)
	nodes, edges, _, err := surgery.Ungroup(s.current.Nodes, s.current.Edges, groupID)
	if err != nil {
		return nil, s.reject(domain.OpUngroup, err)
	}
	next := s.current.Scope
	if next == groupID {
		next = g.ParentScopeID
	}
	return s.commit(change{
		op:    domain.OpUngroup,
		nodes: nodes,
		edges: edges,
		scope: next,
		check: []string{g.ParentScopeID},
	})
}

// Copy captures ids and their subtrees into the clipboard. The graph is not
// changed.
func (s *Store) Copy(ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clip, err := surgery.Copy(s.current.Nodes, s.current.Edges, ids)
	if err != nil {
		return err
	}
	s.clipboard = clip
	return nil
}

// Clipboard returns a copy of the current clipboard.
func (s *Store) Clipboard() domain.Clipboard {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.Clipboard{
		Nodes: domain.CloneNodes(s.clipboard.Nodes),
		Edges: append([]domain.Edge(nil), s.clipboard.Edges...),
	}
}

// Paste inserts a fresh copy of the clipboard into the active scope and
// selects it. The clipboard is kept, so pasting again makes another copy.
func (s *Store) Paste() (*Snapshot, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, edges, pasted, err := surgery.Paste(s.current.Nodes, s.current.Edges, s.clipboard, surgery.PasteSpec{
		Scope:  s.current.Scope,
		Offset: s.pasteOffset,
		NewID:  s.newID,
	})
	if err != nil {
		return nil, nil, s.reject(domain.OpPaste, err)
	}
	snap, err := s.commit(change{
		op:    domain.OpPaste,
		nodes: nodes,
		edges: edges,
		scope: s.current.Scope,
		check: append([]string{s.current.Scope}, pasted...),
	})
	if err != nil {
		return nil, nil, err
	}
	return snap, pasted, nil
}
