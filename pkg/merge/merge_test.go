package merge_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/merge"
	"github.com/aretw0/ussdflow/pkg/scope"
	"github.com/aretw0/ussdflow/pkg/surgery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(nodes []domain.Node, edges []domain.Edge) domain.FlowDocument {
	return domain.FlowDocument{VisualState: domain.VisualState{Nodes: nodes, Edges: edges}}
}

func TestAdditive_LocalWins(t *testing.T) {
	local := []domain.Node{
		domain.NewNode("X", domain.PromptData{Name: "Welcome", Message: "local"}, scope.Root, domain.Position{X: 1}),
	}
	before, err := json.Marshal(local)
	require.NoError(t, err)

	remote := doc([]domain.Node{
		domain.NewNode("X", domain.PromptData{Name: "Welcome", Message: "remote"}, scope.Root, domain.Position{X: 99}),
		domain.NewNode("Y", domain.FunnelData{Name: "Join"}, scope.Root, domain.Position{}),
	}, []domain.Edge{{ID: "e1", SourceNodeID: "X", TargetNodeID: "Y"}})

	nodes, edges, rep := merge.Additive(local, nil, remote)
	require.Len(t, nodes, 2)

	after, err := json.Marshal(nodes[:1])
	require.NoError(t, err)
	assert.Equal(t, before, after, "local X must be left byte-identical")
	assert.Equal(t, "Y", nodes[1].ID)
	assert.Len(t, edges, 1)

	assert.Equal(t, []string{"Y"}, rep.AddedNodes)
	assert.Equal(t, 1, rep.SkippedNodes)
	assert.True(t, rep.Changed())
}

func TestAdditive_FirstRemoteWins(t *testing.T) {
	a := doc([]domain.Node{domain.NewNode("Z", domain.FunnelData{Name: "first"}, "", domain.Position{})}, nil)
	b := doc([]domain.Node{domain.NewNode("Z", domain.FunnelData{Name: "second"}, "", domain.Position{})}, nil)

	nodes, _, rep := merge.Additive(nil, nil, a, b)
	require.Len(t, nodes, 1)
	assert.Equal(t, "first", nodes[0].Name())
	assert.Equal(t, 1, rep.SkippedNodes)
}

func TestAdditive_NothingNew(t *testing.T) {
	local := []domain.Node{domain.NewNode("X", domain.FunnelData{Name: "X"}, "", domain.Position{})}
	_, _, rep := merge.Additive(local, nil, doc(local, nil))
	assert.False(t, rep.Changed())
}

func TestAdditive_RepairsOrphans(t *testing.T) {
	abs := domain.Position{X: 300, Y: 400}
	orphan := domain.NewNode("O", domain.PromptData{Name: "Lost"}, "gone", domain.Position{X: 5, Y: 5})
	orphan.PositionAbsolute = &abs
	bare := domain.NewNode("P", domain.PromptData{Name: "Bare"}, "gone", domain.Position{X: 7, Y: 7})

	nodes, edges, rep := merge.Additive(nil, nil, doc(
		[]domain.Node{orphan, bare},
		[]domain.Edge{{ID: "e1", SourceNodeID: "O", TargetNodeID: "gone"}},
	))

	require.Len(t, nodes, 2)
	assert.Equal(t, scope.Root, nodes[0].ParentScopeID)
	assert.Equal(t, abs, nodes[0].Position)
	assert.Equal(t, scope.Root, nodes[1].ParentScopeID)
	assert.Equal(t, domain.Position{X: 7, Y: 7}, nodes[1].Position)
	assert.Equal(t, []string{"O", "P"}, rep.Repaired)

	assert.Empty(t, edges, "edges to missing nodes are pruned")
	assert.Equal(t, 1, rep.PrunedEdges)
}

func TestAdditive_DoesNotAliasInput(t *testing.T) {
	remoteNodes := []domain.Node{domain.NewNode("R", domain.PromptData{Name: "R"}, "missing", domain.Position{})}
	merge.Additive(nil, nil, doc(remoteNodes, nil))
	assert.Equal(t, "missing", remoteNodes[0].ParentScopeID)
}

func TestIntoGroup(t *testing.T) {
	local := []domain.Node{
		domain.NewNode("G", domain.GroupData{Name: "Airtime"}, scope.Root, domain.Position{}),
		domain.NewNode("S", domain.StartData{FlowName: "Airtime", EntryNode: "A"}, "G", domain.Position{}),
	}
	remote := doc([]domain.Node{
		domain.NewNode("S", domain.StartData{FlowName: "Airtime", EntryNode: "A"}, scope.Root, domain.Position{}),
		domain.NewNode("A", domain.PromptData{Name: "Amount"}, scope.Root, domain.Position{}),
		domain.NewNode("H", domain.GroupData{Name: "Help"}, scope.Root, domain.Position{}),
		domain.NewNode("I", domain.PromptData{Name: "Info"}, "H", domain.Position{}),
	}, []domain.Edge{{ID: "e1", SourceNodeID: "S", TargetNodeID: "A"}})

	nodes, edges, rep, err := merge.IntoGroup(local, nil, "G", remote)
	require.NoError(t, err)

	idx := domain.IndexNodes(nodes)
	assert.Equal(t, "G", nodes[idx["S"]].ParentScopeID)
	assert.Equal(t, "G", nodes[idx["A"]].ParentScopeID)
	assert.Equal(t, "G", nodes[idx["H"]].ParentScopeID)
	assert.Equal(t, "H", nodes[idx["I"]].ParentScopeID, "nested remote nodes keep their parent")
	assert.Len(t, edges, 1)
	assert.Equal(t, []string{"A", "H", "I"}, rep.AddedNodes)
	assert.Empty(t, rep.Repaired)
}

func TestIntoGroup_Errors(t *testing.T) {
	local := []domain.Node{domain.NewNode("P", domain.PromptData{Name: "P"}, "", domain.Position{})}

	_, _, _, err := merge.IntoGroup(local, nil, "nope")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	_, _, _, err = merge.IntoGroup(local, nil, "P")
	assert.ErrorIs(t, err, domain.ErrNotAGroup)
}

// publishedFlow mirrors what a subflow publish sends: the group's children
// re-rooted, with the start at the top level.
func publishedFlow(name, prefix string) domain.FlowDocument {
	d := doc([]domain.Node{
		domain.NewNode(prefix+"S", domain.StartData{FlowName: name, EntryNode: prefix + "P"}, scope.Root, domain.Position{}),
		domain.NewNode(prefix+"P", domain.PromptData{Name: "Menu"}, scope.Root, domain.Position{Y: 80}),
		domain.NewNode(prefix+"H", domain.GroupData{Name: "Help"}, scope.Root, domain.Position{}),
		domain.NewNode(prefix+"I", domain.PromptData{Name: "Info"}, prefix+"H", domain.Position{}),
	}, []domain.Edge{{ID: prefix + "e", SourceNodeID: prefix + "S", TargetNodeID: prefix + "P"}})
	d.FlowName = name
	return d
}

func TestAdditive_NamedFlowsGetTheirOwnGroup(t *testing.T) {
	nodes, edges, rep := merge.Additive(nil, nil, publishedFlow("airtime", "a"), publishedFlow("bundles", "b"))

	require.NoError(t, surgery.Check(nodes, edges), "two flows with a start and a Menu each stay valid")
	assert.Equal(t, []string{merge.FlowGroupID("airtime"), merge.FlowGroupID("bundles")}, rep.Groups)

	idx := domain.IndexNodes(nodes)
	assert.Equal(t, merge.FlowGroupID("airtime"), nodes[idx["aS"]].ParentScopeID)
	assert.Equal(t, merge.FlowGroupID("bundles"), nodes[idx["bS"]].ParentScopeID)
	assert.Equal(t, merge.FlowGroupID("airtime"), nodes[idx["aP"]].ParentScopeID)
	assert.Equal(t, merge.FlowGroupID("airtime"), nodes[idx["aH"]].ParentScopeID)
	assert.Equal(t, "aH", nodes[idx["aI"]].ParentScopeID, "nested remote nodes keep their parent")

	g := nodes[idx[merge.FlowGroupID("bundles")]]
	assert.Equal(t, scope.Root, g.ParentScopeID)
	assert.Equal(t, "bundles", g.Data.(domain.GroupData).FlowName)
	assert.Equal(t, "bundles", g.Name())
	assert.Len(t, edges, 2)
}

func TestAdditive_ReusesOwningGroup(t *testing.T) {
	local := []domain.Node{
		domain.NewNode("G", domain.GroupData{Name: "Airtime", FlowName: "airtime"}, scope.Root, domain.Position{}),
	}
	nodes, edges, rep := merge.Additive(local, nil, publishedFlow("airtime", "a"))

	assert.Empty(t, rep.Groups)
	idx := domain.IndexNodes(nodes)
	assert.Equal(t, "G", nodes[idx["aS"]].ParentScopeID)
	assert.Equal(t, "G", nodes[idx["aP"]].ParentScopeID)

	again, _, rep := merge.Additive(nodes, edges, publishedFlow("airtime", "a"))
	assert.False(t, rep.Changed(), "a flow already merged adds nothing, not even a group")
	assert.Len(t, again, len(nodes))
}

func TestAdditive_UnnamedDocumentsStayAtRoot(t *testing.T) {
	nodes, _, rep := merge.Additive(nil, nil, doc([]domain.Node{
		domain.NewNode("Y", domain.PromptData{Name: "Other"}, scope.Root, domain.Position{}),
	}, nil))
	assert.Empty(t, rep.Groups)
	require.Len(t, nodes, 1)
	assert.Equal(t, scope.Root, nodes[0].ParentScopeID)
}

func TestGroupForFlow(t *testing.T) {
	nodes := []domain.Node{
		domain.NewNode("g1", domain.GroupData{Name: "Airtime"}, scope.Root, domain.Position{}),
		domain.NewNode("s1", domain.StartData{FlowName: "airtime"}, "g1", domain.Position{}),
		domain.NewNode("g2", domain.GroupData{Name: "Data", FlowName: "bundles"}, scope.Root, domain.Position{}),
		domain.NewNode("root", domain.StartData{FlowName: "main"}, scope.Root, domain.Position{}),
	}
	assert.Equal(t, "g1", merge.GroupForFlow(nodes, "airtime"))
	assert.Equal(t, "g2", merge.GroupForFlow(nodes, "bundles"))
	assert.Empty(t, merge.GroupForFlow(nodes, "main"), "the root start has no group")
	assert.Empty(t, merge.GroupForFlow(nodes, "missing"))
	assert.Empty(t, merge.GroupForFlow(nodes, ""))
}
