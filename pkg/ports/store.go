package ports

import (
	"context"

	"github.com/aretw0/ussdflow/pkg/domain"
)

// SnapshotStore defines the interface for persisting the local workspace
// snapshot between runs.
type SnapshotStore interface {
	// Save persists the snapshot for a given workspace ID.
	Save(ctx context.Context, workspaceID string, snap *domain.LocalSnapshot) error

	// Load retrieves the snapshot for a given workspace ID.
	// Returns domain.ErrSnapshotNotFound if nothing was saved yet.
	Load(ctx context.Context, workspaceID string) (*domain.LocalSnapshot, error)

	// Delete removes the snapshot for a given workspace ID.
	Delete(ctx context.Context, workspaceID string) error

	// List returns the IDs of all saved workspaces.
	List(ctx context.Context) ([]string, error)
}
