// Package tests holds contract suites that need real concurrency and timing,
// kept apart from the data-shape suites in package ports.
package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/ussdflow/pkg/ports"
)

// LockerContractTest is a reusable test suite that verifies if an adapter complies with ports.DistributedLocker.
func LockerContractTest(t *testing.T, locker ports.DistributedLocker) {
	t.Helper()
	ctx := context.Background()

	// 1. Lock and Unlock
	t.Run("LockUnlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-a", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}
		if err := unlock(ctx); err != nil {
			t.Fatalf("unexpected error releasing lock: %v", err)
		}

		// Released locks can be taken again.
		unlock, err = locker.Lock(ctx, "contract-a", 5*time.Second)
		if err != nil {
			t.Fatalf("lock not reusable after release: %v", err)
		}
		_ = unlock(ctx)
	})

	// 2. Contention blocks until the context gives up
	t.Run("Contention", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-b", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}
		defer func() { _ = unlock(ctx) }()

		short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		if _, err := locker.Lock(short, "contract-b", 5*time.Second); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded while held, got %v", err)
		}
	})

	// 3. Independent keys do not contend
	t.Run("IndependentKeys", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, 2)
		for _, key := range []string{"contract-c", "contract-d"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				short, cancel := context.WithTimeout(ctx, 2*time.Second)
				defer cancel()
				unlock, err := locker.Lock(short, key, 5*time.Second)
				if err != nil {
					errs <- err
					return
				}
				errs <- unlock(ctx)
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Errorf("unexpected error on independent key: %v", err)
			}
		}
	})
}
