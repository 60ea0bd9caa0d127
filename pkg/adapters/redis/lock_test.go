package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/ussdflow/pkg/adapters/redis"
	"github.com/aretw0/ussdflow/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
)

func TestRedisLocker_Contract(t *testing.T) {
	_, client := setup(t)
	tests.LockerContractTest(t, redis.NewLocker(client, "contract:"))
}

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:lock:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "resource1", 5*time.Second)
	assert.NoError(t, err)
	assert.NotNil(t, unlock)
	assert.True(t, mr.Exists("test:lock:lock:resource1"), "Lock key should be set in Redis")

	err = unlock(ctx)
	assert.NoError(t, err)
	assert.False(t, mr.Exists("test:lock:lock:resource1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_StaleUnlock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:lock:")
	ctx := context.Background()

	unlock1, err := locker.Lock(ctx, "r", time.Second)
	assert.NoError(t, err)

	// First holder's TTL runs out and a second holder takes over.
	mr.FastForward(2 * time.Second)
	unlock2, err := locker.Lock(ctx, "r", 5*time.Second)
	assert.NoError(t, err)

	assert.NoError(t, unlock1(ctx))
	assert.True(t, mr.Exists("test:lock:lock:r"), "stale unlock must not release the new holder")
	assert.NoError(t, unlock2(ctx))
	assert.False(t, mr.Exists("test:lock:lock:r"))
}
