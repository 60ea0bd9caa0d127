package flowdoc_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/dsl"
	"github.com/aretw0/ussdflow/pkg/flowdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menuFlow(t *testing.T) ([]domain.Node, []domain.Edge) {
	t.Helper()
	b := dsl.New()
	b.Add("A").Start("main").Go("B")
	b.Add("B").Prompt("Menu", "1. Balance\n2. Airtime").
		Option("1", "Balance", "C").
		Option("2", "Airtime", "G").
		Default("B")
	b.Add("C").Action("Check Balance", "POST", "https://api.example.com/balance").
		Body(`{"msisdn":"{{phone}}"}`).
		Branch("ok", `{"==":[{"var":"status"},200]}`, "D").
		Branch("bad", `status == 200 &&`, "B").
		Default("B")
	b.Add("D").Prompt("Result", "Your balance is {{balance}}").Go("E")
	b.Add("E").Funnel("Done")
	b.Add("G").Group("Airtime").MenuBranch()
	b.Add("GS").Start("Airtime").In("G").Go("GP")
	b.Add("GP").Prompt("Amount", "Enter amount").In("G")
	nodes, edges, err := b.Build()
	require.NoError(t, err)
	return nodes, edges
}

func TestBuild_EntryNode(t *testing.T) {
	nodes, edges := menuFlow(t)
	doc := flowdoc.Build(nodes, edges)

	assert.Equal(t, "main", doc.FlowName)
	assert.Equal(t, "Menu", doc.EntryNode)
	assert.Equal(t, "B", doc.EntryNodeID)
}

func TestBuild_ExcludesStructuralNodes(t *testing.T) {
	nodes, edges := menuFlow(t)
	doc := flowdoc.Build(nodes, edges)

	var ids []string
	for _, r := range doc.Nodes {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"B", "C", "D", "E", "GP"}, ids)
	assert.Len(t, doc.VisualState.Nodes, len(nodes))
	assert.Equal(t, edges, doc.VisualState.Edges)
}

func TestBuild_PromptTableRoutes(t *testing.T) {
	nodes, edges := menuFlow(t)
	doc := flowdoc.Build(nodes, edges)
	menu := doc.Nodes[0]

	require.Len(t, menu.Routes, 2)
	assert.Equal(t, domain.RouteRecord{Key: "1", Label: "Balance", Goto: "Check Balance", GotoID: "C"}, menu.Routes[0])
	assert.Equal(t, domain.RouteRecord{Key: "2", Label: "Airtime", GotoFlow: "Airtime", GotoID: "G"}, menu.Routes[1],
		"group destinations are external flow references")
	require.NotNil(t, menu.Default)
	assert.Equal(t, "Menu", menu.Default.Goto)
	assert.Nil(t, menu.NextNode)
}

func TestBuild_PromptLinear(t *testing.T) {
	nodes, edges := menuFlow(t)
	doc := flowdoc.Build(nodes, edges)
	result := doc.Nodes[2]

	require.NotNil(t, result.NextNode)
	assert.Equal(t, domain.NamedRef{Name: "Done", ID: "E"}, *result.NextNode)
	assert.Empty(t, result.Routes)
}

func TestBuild_ActionConditions(t *testing.T) {
	nodes, edges := menuFlow(t)
	doc := flowdoc.Build(nodes, edges)
	action := doc.Nodes[1]

	assert.Equal(t, "POST", action.Method)
	assert.Equal(t, `{"msisdn":"{{phone}}"}`, action.Body)
	require.Len(t, action.Routes, 2)

	ok := action.Routes[0]
	assert.Equal(t, "ok", ok.Key)
	assert.Empty(t, ok.RawCondition)
	expr, isMap := ok.Condition.(map[string]any)
	require.True(t, isMap)
	assert.Contains(t, expr, "==")
	assert.Equal(t, "Result", ok.Goto)

	bad := action.Routes[1]
	assert.Nil(t, bad.Condition)
	assert.Equal(t, "status == 200 &&", bad.RawCondition, "unparsable conditions are kept verbatim")

	require.NotNil(t, action.Default)
	assert.Equal(t, "B", action.Default.GotoID)
}

func TestBuild_UnresolvedDestination(t *testing.T) {
	nodes := []domain.Node{
		domain.NewNode("p", domain.PromptData{Name: "Menu", NextNode: "Somewhere Else"}, "", domain.Position{}),
		domain.NewNode("q", domain.PromptData{Name: "Other", NextNode: "undefined"}, "", domain.Position{}),
	}
	doc := flowdoc.Build(nodes, nil)

	require.NotNil(t, doc.Nodes[0].NextNode)
	assert.Equal(t, domain.NamedRef{Name: "Somewhere Else"}, *doc.Nodes[0].NextNode)
	assert.Nil(t, doc.Nodes[1].NextNode)
	assert.Empty(t, doc.FlowName)
	assert.Empty(t, doc.EntryNodeID)
}

func TestBuild_Deterministic(t *testing.T) {
	nodes, edges := menuFlow(t)

	first, err := json.Marshal(flowdoc.Build(nodes, edges))
	require.NoError(t, err)
	second, err := json.Marshal(flowdoc.Build(nodes, edges))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuild_DoesNotAliasInput(t *testing.T) {
	nodes, edges := menuFlow(t)
	doc := flowdoc.Build(nodes, edges)

	doc.VisualState.Nodes[1].Data = domain.PromptData{Name: "Mutated"}
	doc.VisualState.Edges[0].TargetNodeID = "nowhere"

	assert.Equal(t, "Menu", nodes[1].Name())
	assert.NotEqual(t, "nowhere", edges[0].TargetNodeID)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	nodes, edges := menuFlow(t)
	doc := flowdoc.Build(nodes, edges)

	raw, err := flowdoc.Encode(doc)
	require.NoError(t, err)
	back, err := flowdoc.Decode(raw)
	require.NoError(t, err)

	gotNodes, gotEdges := flowdoc.Graph(back)
	assert.Equal(t, edges, gotEdges)
	require.Len(t, gotNodes, len(nodes))

	rebuilt, err := flowdoc.Encode(flowdoc.Build(gotNodes, gotEdges))
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(rebuilt), "visualState must reload losslessly")
}

func TestEncodeYAML(t *testing.T) {
	nodes, edges := menuFlow(t)
	out, err := flowdoc.EncodeYAML(flowdoc.Build(nodes, edges))
	require.NoError(t, err)
	assert.Contains(t, string(out), "flowName: main")
	assert.Contains(t, string(out), "entryNodeId: B")
}

func TestSubflow(t *testing.T) {
	nodes, edges := menuFlow(t)

	sub, subEdges, err := flowdoc.Subflow(nodes, edges, "G")
	require.NoError(t, err)
	require.Len(t, sub, 2)
	for _, n := range sub {
		assert.Empty(t, n.ParentScopeID, "direct children are re-rooted")
	}
	require.Len(t, subEdges, 1)

	doc := flowdoc.Build(sub, subEdges)
	assert.Equal(t, "Airtime", doc.FlowName)
	assert.Equal(t, "GP", doc.EntryNodeID)

	_, _, err = flowdoc.Subflow(nodes, edges, "B")
	assert.ErrorIs(t, err, domain.ErrNotAGroup)
	_, _, err = flowdoc.Subflow(nodes, edges, "zzz")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestBuild_RouteToNestedStartJumpsToItsGroup(t *testing.T) {
	nodes := []domain.Node{
		domain.NewNode("A", domain.StartData{FlowName: "main"}, "", domain.Position{}),
		domain.NewNode("M", domain.PromptData{
			Name:        "Menu",
			RoutingMode: domain.RoutingTable,
			Routes: []domain.PromptRoute{
				{Key: "1", Label: "Data", Goto: "bundles"},
				{Key: "2", Label: "Data again", Goto: "BS"},
				{Key: "0", Label: "Home", Goto: "main"},
			},
		}, "", domain.Position{}),
		domain.NewNode("BG", domain.GroupData{Name: "Data"}, "", domain.Position{}),
		domain.NewNode("BS", domain.StartData{FlowName: "bundles"}, "BG", domain.Position{}),
	}
	doc := flowdoc.Build(nodes, nil)

	var menu *domain.Record
	for i := range doc.Nodes {
		if doc.Nodes[i].ID == "M" {
			menu = &doc.Nodes[i]
		}
	}
	require.NotNil(t, menu)
	require.Len(t, menu.Routes, 3)

	want := domain.RouteRecord{GotoFlow: "bundles", GotoID: "BG"}
	for _, r := range menu.Routes[:2] {
		assert.Equal(t, want.GotoFlow, r.GotoFlow)
		assert.Equal(t, want.GotoID, r.GotoID)
		assert.Empty(t, r.Goto)
	}

	home := menu.Routes[2]
	assert.Equal(t, "main", home.Goto)
	assert.Empty(t, home.GotoID, "start nodes have no record to jump to")
}

func TestFlowName(t *testing.T) {
	withStart := domain.NewNode("G", domain.GroupData{Name: "Airtime", FlowName: "topup"}, "", domain.Position{})
	named := domain.NewNode("H", domain.GroupData{Name: "Help", FlowName: "help"}, "", domain.Position{})
	plain := domain.NewNode("P", domain.GroupData{Name: "Plain"}, "", domain.Position{})
	nodes := []domain.Node{
		withStart, named, plain,
		domain.NewNode("GS", domain.StartData{FlowName: "airtime"}, "G", domain.Position{}),
	}

	assert.Equal(t, "airtime", flowdoc.FlowName(nodes, withStart))
	assert.Equal(t, "help", flowdoc.FlowName(nodes, named))
	assert.Equal(t, "Plain", flowdoc.FlowName(nodes, plain))
}
