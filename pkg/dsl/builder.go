package dsl

import (
	"fmt"

	"github.com/aretw0/ussdflow/pkg/domain"
)

// Builder manages the graph construction.
// Nodes and edges come out in the order they were declared.
type Builder struct {
	order []string
	nodes map[string]*NodeBuilder
	edges []domain.Edge
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.Node{ID: id},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

func (b *Builder) connect(source, handle, target string) {
	b.edges = append(b.edges, domain.Edge{
		ID:           fmt.Sprintf("e-%s-%s-%s", source, handle, target),
		SourceNodeID: source,
		TargetNodeID: target,
		SourceHandle: handle,
	})
}

// Build returns the declared nodes and edges.
// It fails when a node has no type or an edge points at an undeclared node.
func (b *Builder) Build() ([]domain.Node, []domain.Edge, error) {
	nodes := make([]domain.Node, 0, len(b.order))
	for _, id := range b.order {
		n := b.nodes[id].Build()
		if n.Data == nil {
			return nil, nil, fmt.Errorf("node %q has no type", id)
		}
		nodes = append(nodes, n)
	}
	for _, e := range b.edges {
		if _, ok := b.nodes[e.TargetNodeID]; !ok {
			return nil, nil, fmt.Errorf("edge %s: %w: %s", e.ID, domain.ErrNodeNotFound, e.TargetNodeID)
		}
	}
	return nodes, append([]domain.Edge{}, b.edges...), nil
}

// MustBuild is like Build but panics on error. Intended for tests and examples.
func (b *Builder) MustBuild() ([]domain.Node, []domain.Edge) {
	nodes, edges, err := b.Build()
	if err != nil {
		panic(err)
	}
	return nodes, edges
}
