package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/ussdflow/pkg/ports"
)

// Locker implements ports.DistributedLocker for a single process. A held
// lock is released by its UnlockFunc or when its TTL runs out.
type Locker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

// NewLocker creates an in-process locker.
func NewLocker() *Locker {
	return &Locker{held: make(map[string]chan struct{})}
}

// Lock blocks until key is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	for {
		l.mu.Lock()
		wait, busy := l.held[key]
		if !busy {
			ch := make(chan struct{})
			l.held[key] = ch
			l.mu.Unlock()
			return l.release(key, ch, ttl), nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-wait:
		}
	}
}

func (l *Locker) release(key string, ch chan struct{}, ttl time.Duration) ports.UnlockFunc {
	var once sync.Once
	free := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.held[key] == ch {
				delete(l.held, key)
			}
			close(ch)
		})
	}
	var timer *time.Timer
	if ttl > 0 {
		timer = time.AfterFunc(ttl, free)
	}
	return func(ctx context.Context) error {
		if timer != nil {
			timer.Stop()
		}
		free()
		return nil
	}
}
