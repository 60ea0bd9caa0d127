// Package graph holds the Graph Store: the owned, mutable root of a flow
// workspace. Every mutation runs to completion under one lock and publishes a
// whole new Snapshot; readers never observe a partial state.
package graph

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/ussdflow/internal/logging"
	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/flowdoc"
	"github.com/aretw0/ussdflow/pkg/scope"
	"github.com/aretw0/ussdflow/pkg/surgery"
	"github.com/google/uuid"
)

// Snapshot is one immutable version of the graph together with its derived
// flow document and the active scope. Callers must treat it as read-only.
type Snapshot struct {
	Version  uint64
	Nodes    []domain.Node
	Edges    []domain.Edge
	Document domain.FlowDocument
	Scope    string
}

// Node returns the node with the given id.
func (snap *Snapshot) Node(id string) (domain.Node, bool) {
	for _, n := range snap.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return domain.Node{}, false
}

// Store is the Graph Store.
type Store struct {
	mu sync.Mutex

	current   *Snapshot
	nav       scope.Navigator
	clipboard domain.Clipboard

	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	newID       func() string
	now         func() time.Time
	origin      domain.Position
	pasteOffset domain.Position
}

// Option configures the Store.
type Option func(*Store)

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithHooks registers callbacks fired after every committed or rejected mutation.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Store) {
		s.hooks = hooks
	}
}

// WithIDGenerator replaces the uuid generator used for new nodes and edges.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithOrigin sets where empty groups are created.
func WithOrigin(p domain.Position) Option {
	return func(s *Store) {
		s.origin = p
	}
}

// WithPasteOffset sets the translation applied to pasted top-level nodes.
func WithPasteOffset(p domain.Position) Option {
	return func(s *Store) {
		s.pasteOffset = p
	}
}

// New creates an empty Store positioned at the root scope.
func New(opts ...Option) *Store {
	s := &Store{
		logger:      logging.NewNop(),
		newID:       uuid.NewString,
		now:         time.Now,
		pasteOffset: domain.Position{X: 40, Y: 40},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current = &Snapshot{
		Nodes:    []domain.Node{},
		Edges:    []domain.Edge{},
		Document: flowdoc.Build(nil, nil),
	}
	return s
}

// Snapshot returns the latest published version of the graph.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// change is a candidate next state produced by one mutation.
type change struct {
	op    domain.Op
	nodes []domain.Node
	edges []domain.Edge
	scope string

	// check selects the invariant pass run before publishing: nil skips it,
	// an empty slice runs only the structural checks, otherwise the naming
	// checks are limited to the listed scopes.
	check []string
	// checkAll runs every check over every scope.
	checkAll bool
}

// commit validates c and publishes it. On failure the previous Snapshot is
// kept and the rejection is reported to the hooks. Callers hold s.mu.
func (s *Store) commit(c change) (*Snapshot, error) {
	var err error
	switch {
	case c.checkAll:
		err = surgery.Check(c.nodes, c.edges)
	case c.check != nil:
		err = surgery.CheckScopes(c.nodes, c.edges, c.check...)
	}
	if err != nil {
		return nil, s.reject(c.op, err)
	}

	prev := s.current
	next := &Snapshot{
		Version:  prev.Version + 1,
		Nodes:    c.nodes,
		Edges:    c.edges,
		Document: flowdoc.Build(c.nodes, c.edges),
		Scope:    c.scope,
	}
	s.current = next
	s.nav.Reset(c.scope)

	diff := domain.Diff(prev.Nodes, prev.Edges, next.Nodes, next.Edges)
	s.logger.Debug("Graph mutation committed",
		"op", c.op,
		"version", next.Version,
		"scope", next.Scope,
		"nodes", len(next.Nodes),
		"edges", len(next.Edges),
	)
	if s.hooks.OnCommit != nil {
		s.hooks.OnCommit(&domain.MutationEvent{
			Timestamp: s.now(),
			Op:        c.op,
			Scope:     next.Scope,
			Diff:      diff,
		})
	}
	return next, nil
}

// reject reports a failed mutation and returns err unchanged. Callers hold s.mu.
func (s *Store) reject(op domain.Op, err error) error {
	s.logger.Warn("Graph mutation rejected", "op", op, "err", err)
	if s.hooks.OnReject != nil {
		s.hooks.OnReject(&domain.MutationEvent{
			Timestamp: s.now(),
			Op:        op,
			Scope:     s.current.Scope,
			Err:       err,
		})
	}
	return err
}

func (s *Store) find(id string) (domain.Node, int, bool) {
	for i, n := range s.current.Nodes {
		if n.ID == id {
			return n, i, true
		}
	}
	return domain.Node{}, -1, false
}
