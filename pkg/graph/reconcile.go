package graph

import (
	"fmt"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/merge"
	"github.com/aretw0/ussdflow/pkg/scope"
)

// Merge folds remote documents into the graph, local-wins, then repairs
// orphans. The merge runs against the state current at call time. A merge
// that would break an invariant is rejected whole and the graph is left
// unchanged.
func (s *Store) Merge(docs ...domain.FlowDocument) (*Snapshot, merge.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, edges, rep := merge.Additive(s.current.Nodes, s.current.Edges, docs...)
	return s.commitMerge(nodes, edges, rep)
}

// MergeInto is Merge with new top-level nodes placed under groupID.
func (s *Store) MergeInto(groupID string, docs ...domain.FlowDocument) (*Snapshot, merge.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, edges, rep, err := merge.IntoGroup(s.current.Nodes, s.current.Edges, groupID, docs...)
	if err != nil {
		return nil, merge.Report{}, s.reject(domain.OpMerge, err)
	}
	return s.commitMerge(nodes, edges, rep)
}

func (s *Store) commitMerge(nodes []domain.Node, edges []domain.Edge, rep merge.Report) (*Snapshot, merge.Report, error) {
	if !rep.Changed() && rep.PrunedEdges == 0 {
		return s.current, rep, nil
	}
	snap, err := s.commit(change{
		op:       domain.OpMerge,
		nodes:    nodes,
		edges:    edges,
		scope:    s.survivingScope(nodes),
		checkAll: true,
	})
	if err != nil {
		return nil, merge.Report{}, fmt.Errorf("merge rejected: %w", err)
	}
	if len(rep.Repaired) > 0 {
		s.logger.Info("Repaired orphaned nodes", "count", len(rep.Repaired), "ids", rep.Repaired)
	}
	return snap, rep, nil
}

// Replace loads a whole graph, resetting the active scope to the root. It is
// the load boundary used when rehydrating a saved workspace.
func (s *Store) Replace(nodes []domain.Node, edges []domain.Edge) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if nodes == nil {
		nodes = []domain.Node{}
	}
	if edges == nil {
		edges = []domain.Edge{}
	}
	snap, err := s.commit(change{
		op:       domain.OpReplace,
		nodes:    domain.CloneNodes(nodes),
		edges:    append([]domain.Edge{}, edges...),
		scope:    scope.Root,
		checkAll: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	return snap, nil
}

// survivingScope keeps the active scope if it still names a group in nodes.
func (s *Store) survivingScope(nodes []domain.Node) string {
	cur := s.current.Scope
	if cur == scope.Root {
		return cur
	}
	for _, n := range nodes {
		if n.ID == cur && n.IsGroup() {
			return cur
		}
	}
	return scope.Root
}
