package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractSnapshot() *domain.LocalSnapshot {
	abs := domain.Position{X: 10, Y: 20}
	g := domain.NewNode("g", domain.GroupData{Name: "Airtime", MenuBranch: true}, "", domain.Position{X: 1, Y: 2})
	p := domain.NewNode("p", domain.PromptData{
		Name:        "Menu",
		Message:     "1. Balance",
		RoutingMode: domain.RoutingTable,
		Routes:      []domain.PromptRoute{{Key: "1", Label: "Balance", Goto: "g"}},
	}, "", domain.Position{X: 3, Y: 4})
	s := domain.NewNode("s", domain.StartData{FlowName: "Airtime"}, "g", domain.Position{})
	s.PositionAbsolute = &abs

	snap := domain.NewLocalSnapshot()
	snap.Nodes = []domain.Node{g, p, s}
	snap.Edges = []domain.Edge{{ID: "e1", SourceNodeID: "p", TargetNodeID: "g", SourceHandle: "1"}}
	snap.Flow = domain.FlowDocument{FlowName: "main", EntryNode: "Menu", EntryNodeID: "p", Nodes: []domain.Record{}}
	snap.PublishedFlowNames = []string{"Airtime"}
	return snap
}

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	workspaceID := "contract-test-workspace-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := contractSnapshot()

		err := store.Save(ctx, workspaceID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, workspaceID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.Nodes, loaded.Nodes, "nodes must round-trip with their typed payloads")
		assert.Equal(t, snap.Edges, loaded.Edges)
		assert.Equal(t, snap.Flow.EntryNodeID, loaded.Flow.EntryNodeID)
		assert.Equal(t, snap.PublishedFlowNames, loaded.PublishedFlowNames)
	})

	t.Run("Load Is Detached", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, workspaceID, contractSnapshot()))

		first, err := store.Load(ctx, workspaceID)
		require.NoError(t, err)
		first.Nodes[0].ParentScopeID = "tampered"

		second, err := store.Load(ctx, workspaceID)
		require.NoError(t, err)
		assert.Empty(t, second.Nodes[0].ParentScopeID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+workspaceID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, workspaceID, domain.NewLocalSnapshot())
		require.NoError(t, err)

		err = store.Delete(ctx, workspaceID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, workspaceID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := workspaceID + "-1"
		id2 := workspaceID + "-2"
		_ = store.Save(ctx, id1, domain.NewLocalSnapshot())
		_ = store.Save(ctx, id2, domain.NewLocalSnapshot())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

func contractFlow(name, entry string) domain.FlowDocument {
	start := domain.NewNode(name+"-start", domain.StartData{FlowName: name, EntryNode: name + "-entry"}, "", domain.Position{})
	prompt := domain.NewNode(name+"-entry", domain.PromptData{Name: entry, Message: "Welcome"}, "", domain.Position{X: 100})
	return domain.FlowDocument{
		FlowName:    name,
		EntryNode:   entry,
		EntryNodeID: prompt.ID,
		Nodes:       []domain.Record{{ID: prompt.ID, Name: entry, Type: domain.NodeTypePrompt, Message: "Welcome"}},
		VisualState: domain.VisualState{
			Nodes: []domain.Node{start, prompt},
			Edges: []domain.Edge{{ID: name + "-e", SourceNodeID: start.ID, TargetNodeID: prompt.ID}},
		},
	}
}

// RunCatalogContract runs a suite of tests to verify that a Catalog
// implementation adheres to the defined interface contract. The catalog must
// start empty.
func RunCatalogContract(t *testing.T, catalog Catalog) {
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		docs, err := catalog.FetchAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)

		_, err = catalog.FetchByName(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})

	t.Run("Publish and Fetch", func(t *testing.T) {
		require.NoError(t, catalog.Publish(ctx, contractFlow("topup", "Amount")))
		require.NoError(t, catalog.Publish(ctx, contractFlow("balance", "Balance")))

		docs, err := catalog.FetchAll(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "balance", docs[0].FlowName, "FetchAll is ordered by flowName")
		assert.Equal(t, "topup", docs[1].FlowName)

		byName, err := catalog.FetchByName(ctx, "topup")
		require.NoError(t, err)
		require.Len(t, byName, 1)
		want := contractFlow("topup", "Amount")
		assert.Equal(t, want.EntryNodeID, byName[0].EntryNodeID)
		assert.Equal(t, want.VisualState.Nodes, byName[0].VisualState.Nodes, "visual state must round-trip")
		assert.Equal(t, want.VisualState.Edges, byName[0].VisualState.Edges)
	})

	t.Run("Publish Replaces", func(t *testing.T) {
		require.NoError(t, catalog.Publish(ctx, contractFlow("topup", "Recharge")))

		byName, err := catalog.FetchByName(ctx, "topup")
		require.NoError(t, err)
		require.Len(t, byName, 1)
		assert.Equal(t, "Recharge", byName[0].EntryNode)

		docs, err := catalog.FetchAll(ctx)
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("Publish Unnamed", func(t *testing.T) {
		err := catalog.Publish(ctx, domain.FlowDocument{})
		assert.ErrorIs(t, err, domain.ErrUnnamedFlow)
	})
}
