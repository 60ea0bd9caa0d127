package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/ussdflow/pkg/merge"
)

// ErrWatchUnsupported is returned when the configured catalog cannot
// announce changes.
var ErrWatchUnsupported = errors.New("catalog does not support watching")

// watcher is implemented by catalogs that push change notifications.
type watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// settleDelay lets a burst of writes to the same flow land before refreshing.
const settleDelay = 100 * time.Millisecond

// Pull merges remote flows into the workspace and saves it. An empty
// flowName loads the whole catalog; otherwise the named flow is refreshed
// into groupID, or into the group that already carries it when groupID is
// empty.
func (a *App) Pull(ctx context.Context, flowName, groupID string) (merge.Report, error) {
	var (
		rep merge.Report
		err error
	)
	if flowName == "" {
		rep, err = a.Workspace.LoadAllFlows(ctx)
	} else {
		if groupID == "" {
			groupID = merge.GroupForFlow(a.Workspace.Graph().Snapshot().Nodes, flowName)
		}
		rep, err = a.Workspace.RefreshFlow(ctx, flowName, groupID)
	}
	if err != nil {
		return rep, err
	}
	if rep.Changed() {
		if err := a.Workspace.Save(ctx); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

// Watch refreshes every flow the catalog reports as changed until ctx is
// done. Failed refreshes are logged and do not stop the loop.
func (a *App) Watch(ctx context.Context, onRefresh func(name string, rep merge.Report)) error {
	w, ok := a.source.(watcher)
	if !ok {
		return fmt.Errorf("%w: %s", ErrWatchUnsupported, a.Config.Catalog.Backend)
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch catalog: %w", err)
	}

	a.Logger.Info("Watching catalog", "backend", a.Config.Catalog.Backend)
	for {
		select {
		case <-ctx.Done():
			return nil
		case name, ok := <-changes:
			if !ok {
				return nil
			}
			pending := map[string]bool{name: true}
			pending = drain(ctx, changes, pending)
			for name := range pending {
				rep, err := a.Pull(ctx, name, "")
				if err != nil {
					a.Logger.Warn("Refresh failed", "flow", name, "err", err)
					continue
				}
				if onRefresh != nil {
					onRefresh(name, rep)
				}
			}
		}
	}
}

// drain collects further change names arriving within settleDelay.
func drain(ctx context.Context, changes <-chan string, pending map[string]bool) map[string]bool {
	timer := time.NewTimer(settleDelay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return pending
		case <-timer.C:
			return pending
		case name, ok := <-changes:
			if !ok {
				return pending
			}
			pending[name] = true
		}
	}
}
