package graph

import (
	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/scope"
)

// Enter drills into groupID.
func (s *Store) Enter(groupID string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.nav.Enter(s.current.Nodes, groupID); err != nil {
		return nil, s.reject(domain.OpNavigate, err)
	}
	return s.moveTo(s.nav.Current())
}

// Exit leaves the active scope: one level up without a target, or straight
// to target.
func (s *Store) Exit(target ...string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.nav.Exit(s.current.Nodes, target...); err != nil {
		return nil, s.reject(domain.OpNavigate, err)
	}
	return s.moveTo(s.nav.Current())
}

func (s *Store) moveTo(scopeID string) (*Snapshot, error) {
	if scopeID == s.current.Scope {
		return s.current, nil
	}
	return s.commit(change{
		op:    domain.OpNavigate,
		nodes: s.current.Nodes,
		edges: s.current.Edges,
		scope: scopeID,
	})
}

// Visible returns what is rendered at the active scope of snap.
func (snap *Snapshot) Visible() ([]domain.Node, []domain.Edge) {
	return scope.Visible(snap.Nodes, snap.Edges, snap.Scope)
}

// Breadcrumbs returns the path from the root to the active scope of snap.
func (snap *Snapshot) Breadcrumbs() []scope.Crumb {
	return scope.Breadcrumbs(snap.Nodes, snap.Scope)
}
