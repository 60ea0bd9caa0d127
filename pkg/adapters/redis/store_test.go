package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/ussdflow/pkg/adapters/redis"
	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunSnapshotStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := setup(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	workspaceID := "workspace-ttl"

	err := store.Save(ctx, workspaceID, domain.NewLocalSnapshot())
	assert.NoError(t, err)

	ids, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, ids, workspaceID)

	// Key expiration in miniredis
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, workspaceID)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	// The index is pruned against the wall clock, not miniredis time.
	time.Sleep(1200 * time.Millisecond)

	ids, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := setup(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err := store.Save(ctx, "my-workspace", domain.NewLocalSnapshot())
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:my-workspace"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, list, "my-workspace")
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewFromClient(client)
	mr.Close()

	_, err := store.Load(context.Background(), "x")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestRedisCatalog_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunCatalogContract(t, redis.NewCatalog(client))
}

func TestRedisCatalog_Keys(t *testing.T) {
	mr, client := setup(t)
	catalog := redis.NewCatalog(client, redis.WithPrefix("c:"))

	require.NoError(t, catalog.Publish(context.Background(), domain.FlowDocument{FlowName: "main"}))
	assert.True(t, mr.Exists("c:main"))
	assert.True(t, mr.Exists("c:index"))
}

func TestRedisCatalog_SkipsVanishedFlows(t *testing.T) {
	mr, client := setup(t)
	catalog := redis.NewCatalog(client)
	ctx := context.Background()

	require.NoError(t, catalog.Publish(ctx, domain.FlowDocument{FlowName: "a"}))
	require.NoError(t, catalog.Publish(ctx, domain.FlowDocument{FlowName: "b"}))
	mr.Del("ussdflow:flow:a")

	docs, err := catalog.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "b", docs[0].FlowName)
}
