package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/ussdflow/internal/logging"
	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates snapshot access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) ManagerOption {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithManagerLogger configures a logger for the Manager.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over store.
func NewManager(store ports.SnapshotStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release after unlocking.
func (m *Manager) acquire(workspaceID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[workspaceID]
	if !exists {
		entry = &lockEntry{}
		m.locks[workspaceID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(workspaceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[workspaceID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, workspaceID)
	}
}

// Load returns the stored snapshot of workspaceID, or an empty one when
// nothing has been saved yet.
func (m *Manager) Load(ctx context.Context, workspaceID string) (*domain.LocalSnapshot, error) {
	var snap *domain.LocalSnapshot
	err := m.WithLock(ctx, workspaceID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, workspaceID)
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			snap, err = domain.NewLocalSnapshot(), nil
		}
		if err != nil {
			return fmt.Errorf("failed to load snapshot: %w", err)
		}
		return nil
	})
	return snap, err
}

// Save persists snap.
func (m *Manager) Save(ctx context.Context, workspaceID string, snap *domain.LocalSnapshot) error {
	return m.WithLock(ctx, workspaceID, func(ctx context.Context) error {
		return m.store.Save(ctx, workspaceID, snap)
	})
}

// Delete removes the workspace snapshot from the store.
func (m *Manager) Delete(ctx context.Context, workspaceID string) error {
	return m.WithLock(ctx, workspaceID, func(ctx context.Context) error {
		return m.store.Delete(ctx, workspaceID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// WithLock executes fn while holding the lock for the workspace.
func (m *Manager) WithLock(ctx context.Context, workspaceID string, fn func(context.Context) error) error {
	entry := m.acquire(workspaceID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(workspaceID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, workspaceID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"workspace_id", workspaceID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
