package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/ussdflow/internal/logging"
	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/flowdoc"
	"github.com/aretw0/ussdflow/pkg/graph"
	"github.com/aretw0/ussdflow/pkg/merge"
	"github.com/aretw0/ussdflow/pkg/ports"
)

// Workspace is one editable graph bound to its durable snapshot and to the
// remote catalog.
type Workspace struct {
	id      string
	graph   *graph.Store
	manager *Manager
	catalog ports.Catalog
	logger  *slog.Logger

	mu        sync.Mutex
	hydrated  chan struct{}
	ready     bool
	published []string
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithGraph binds an existing Graph Store instead of a fresh one.
func WithGraph(g *graph.Store) Option {
	return func(w *Workspace) {
		w.graph = g
	}
}

// WithLogger configures a logger for the Workspace.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = logger
	}
}

// New creates a workspace named id. Snapshots go through manager, flows
// through catalog.
func New(id string, manager *Manager, catalog ports.Catalog, opts ...Option) *Workspace {
	w := &Workspace{
		id:        id,
		manager:   manager,
		catalog:   catalog,
		logger:    logging.NewNop(),
		hydrated:  make(chan struct{}),
		published: []string{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.graph == nil {
		w.graph = graph.New(graph.WithLogger(w.logger))
	}
	return w
}

// ID returns the workspace id.
func (w *Workspace) ID() string { return w.id }

// Graph returns the bound Graph Store.
func (w *Workspace) Graph() *graph.Store { return w.graph }

// Hydrated is closed once Hydrate has succeeded.
func (w *Workspace) Hydrated() <-chan struct{} { return w.hydrated }

// PublishedFlowNames returns the flows published from this workspace, in
// first-publish order.
func (w *Workspace) PublishedFlowNames() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.published)
}

// Hydrate loads the durable snapshot into the graph and opens the gate for
// catalog calls. A missing snapshot yields an empty graph. On failure the
// gate stays closed and Hydrate may be retried; once it has succeeded
// further calls do nothing.
func (w *Workspace) Hydrate(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ready {
		return nil
	}

	snap, err := w.manager.Load(ctx, w.id)
	if err != nil {
		return err
	}
	if _, err := w.graph.Replace(snap.Nodes, snap.Edges); err != nil {
		return err
	}
	w.published = slices.Clone(snap.PublishedFlowNames)
	if w.published == nil {
		w.published = []string{}
	}

	w.ready = true
	close(w.hydrated)
	w.logger.Info("Workspace hydrated",
		"workspace_id", w.id,
		"nodes", len(snap.Nodes),
		"edges", len(snap.Edges),
		"published", len(w.published),
	)
	return nil
}

// waitHydrated blocks until Hydrate succeeds or ctx is done.
func (w *Workspace) waitHydrated(ctx context.Context) error {
	select {
	case <-w.hydrated:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", domain.ErrHydrating, ctx.Err())
	}
}

// LoadAllFlows fetches the whole catalog and merges it, local-wins. The
// merge runs against the graph as it is when the fetch returns. A failed
// fetch leaves the graph untouched.
func (w *Workspace) LoadAllFlows(ctx context.Context) (merge.Report, error) {
	if err := w.waitHydrated(ctx); err != nil {
		return merge.Report{}, err
	}

	docs, err := w.catalog.FetchAll(ctx)
	if err != nil {
		w.logger.Warn("Catalog fetch failed", "op", "load_all", "err", err)
		return merge.Report{}, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}

	_, rep, err := w.graph.Merge(docs...)
	if err != nil {
		return merge.Report{}, err
	}
	w.logMerge("load_all", len(docs), rep)
	return rep, nil
}

// RefreshFlow fetches the flow named flowName and merges it. New top-level
// nodes land under groupID; an empty groupID merges at the root.
func (w *Workspace) RefreshFlow(ctx context.Context, flowName, groupID string) (merge.Report, error) {
	if err := w.waitHydrated(ctx); err != nil {
		return merge.Report{}, err
	}

	docs, err := w.catalog.FetchByName(ctx, flowName)
	if err != nil {
		if errors.Is(err, domain.ErrFlowNotFound) {
			return merge.Report{}, err
		}
		w.logger.Warn("Catalog fetch failed", "op", "refresh", "flow", flowName, "err", err)
		return merge.Report{}, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}

	var rep merge.Report
	if groupID == "" {
		_, rep, err = w.graph.Merge(docs...)
	} else {
		_, rep, err = w.graph.MergeInto(groupID, docs...)
	}
	if err != nil {
		return merge.Report{}, err
	}
	w.logMerge("refresh", len(docs), rep)
	return rep, nil
}

func (w *Workspace) logMerge(op string, docs int, rep merge.Report) {
	w.logger.Info("Catalog merged",
		"op", op,
		"documents", docs,
		"added_nodes", len(rep.AddedNodes),
		"added_edges", len(rep.AddedEdges),
		"skipped_nodes", rep.SkippedNodes,
		"repaired", len(rep.Repaired),
	)
}

// Document builds the flow document Publish would send for groupID without
// sending it. An empty groupID selects the root scope.
func (w *Workspace) Document(groupID string) (domain.FlowDocument, error) {
	snap := w.graph.Snapshot()
	if groupID == "" {
		if len(flowdoc.StartOf(snap.Nodes, "")) == 0 {
			return domain.FlowDocument{}, domain.ErrMissingStart
		}
		return snap.Document, nil
	}

	nodes, edges, err := flowdoc.Subflow(snap.Nodes, snap.Edges, groupID)
	if err != nil {
		return domain.FlowDocument{}, err
	}
	if len(flowdoc.StartOf(snap.Nodes, groupID)) == 0 {
		return domain.FlowDocument{}, fmt.Errorf("%w: %s", domain.ErrMissingStart, groupID)
	}

	doc := flowdoc.Build(nodes, edges)
	if doc.FlowName == "" {
		group, _ := snap.Node(groupID)
		doc.FlowName = flowdoc.FlowName(snap.Nodes, group)
	}
	return doc, nil
}

// Publish sends the subflow of groupID to the catalog and records its name.
// The group must hold a start node.
func (w *Workspace) Publish(ctx context.Context, groupID string) (domain.FlowDocument, error) {
	doc, err := w.Document(groupID)
	if err != nil {
		return domain.FlowDocument{}, err
	}

	if err := w.catalog.Publish(ctx, doc); err != nil {
		if errors.Is(err, domain.ErrUnnamedFlow) {
			return domain.FlowDocument{}, err
		}
		w.logger.Warn("Catalog publish failed", "flow", doc.FlowName, "err", err)
		return domain.FlowDocument{}, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}

	w.mu.Lock()
	if !slices.Contains(w.published, doc.FlowName) {
		w.published = append(w.published, doc.FlowName)
	}
	w.mu.Unlock()

	w.logger.Info("Flow published", "flow", doc.FlowName, "records", len(doc.Nodes))
	return doc, nil
}

// LocalSnapshot captures the current graph in its durable form.
func (w *Workspace) LocalSnapshot() *domain.LocalSnapshot {
	snap := w.graph.Snapshot()
	return &domain.LocalSnapshot{
		Nodes:              domain.CloneNodes(snap.Nodes),
		Edges:              slices.Clone(snap.Edges),
		Flow:               snap.Document,
		PublishedFlowNames: w.PublishedFlowNames(),
	}
}

// Save persists the current graph. It returns domain.ErrHydrating until
// Hydrate has succeeded.
func (w *Workspace) Save(ctx context.Context) error {
	w.mu.Lock()
	ready := w.ready
	w.mu.Unlock()
	if !ready {
		return domain.ErrHydrating
	}

	snap := w.LocalSnapshot()
	if err := w.manager.Save(ctx, w.id, snap); err != nil {
		return fmt.Errorf("failed to save workspace %s: %w", w.id, err)
	}
	w.logger.Debug("Workspace saved", "workspace_id", w.id, "nodes", len(snap.Nodes))
	return nil
}
