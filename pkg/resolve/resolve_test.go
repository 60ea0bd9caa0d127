package resolve_test

import (
	"testing"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/resolve"
	"github.com/stretchr/testify/assert"
)

func fixture() []domain.Node {
	return []domain.Node{
		domain.NewNode("n1", domain.PromptData{Name: "Menu"}, "", domain.Position{}),
		domain.NewNode("n2", domain.ActionData{Name: "Check Balance"}, "", domain.Position{}),
		domain.NewNode("g1", domain.GroupData{Name: "Airtime", MenuBranch: true}, "", domain.Position{}),
		domain.NewNode("s1", domain.StartData{FlowName: "main"}, "", domain.Position{}),
		domain.NewNode("n3", domain.PromptData{Name: "menu"}, "g1", domain.Position{}),
	}
}

func TestResolve(t *testing.T) {
	r := resolve.New(fixture())

	tests := []struct {
		name string
		raw  any
		want domain.NamedRef
	}{
		{"Id Wins", "n2", domain.NamedRef{ID: "n2", Name: "Check Balance"}},
		{"Exact Name", "Menu", domain.NamedRef{ID: "n1", Name: "Menu"}},
		{"Exact Name Preferred Over Folded", "menu", domain.NamedRef{ID: "n3", Name: "menu"}},
		{"Case Insensitive Fallback", "CHECK BALANCE", domain.NamedRef{ID: "n2", Name: "CHECK BALANCE"}},
		{"Start Uses FlowName", "main", domain.NamedRef{ID: "s1", Name: "main"}},
		{"Unknown Keeps Raw Name", "Nowhere", domain.NamedRef{Name: "Nowhere"}},
		{"Nil", nil, domain.NamedRef{}},
		{"Undefined Sentinel", "undefined", domain.NamedRef{}},
		{"Null Sentinel", "null", domain.NamedRef{}},
		{"Object Sentinel", "[object Object]", domain.NamedRef{}},
		{"Trims Whitespace", "  n1 ", domain.NamedRef{ID: "n1", Name: "Menu"}},
		{
			"Structured Default Prefers Id",
			map[string]any{"default": "Menu", "defaultId": "n2"},
			domain.NamedRef{ID: "n2", Name: "Check Balance"},
		},
		{
			"Structured GotoFlow",
			map[string]any{"gotoFlow": "Airtime"},
			domain.NamedRef{ID: "g1", Name: "Airtime"},
		},
		{
			"Structured Id Sentinel Falls Back To Name",
			map[string]any{"gotoId": "undefined", "goto": "Menu"},
			domain.NamedRef{ID: "n1", Name: "Menu"},
		},
		{
			"Structured Without Known Keys",
			map[string]any{"label": "Menu"},
			domain.NamedRef{},
		},
		{
			"NamedRef Value",
			domain.NamedRef{Name: "Menu", ID: "n2"},
			domain.NamedRef{ID: "n2", Name: "Check Balance"},
		},
		{
			"Route Record Struct",
			domain.RouteRecord{Goto: "Menu"},
			domain.NamedRef{ID: "n1", Name: "Menu"},
		},
		{"Numeric Option", 42, domain.NamedRef{Name: "42"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.raw))
		})
	}
}

func TestResolve_ExistingIDAlwaysReturnsCurrentName(t *testing.T) {
	nodes := fixture()
	r := resolve.New(nodes)
	for _, n := range nodes {
		got := r.Resolve(n.ID)
		assert.Equal(t, n.ID, got.ID)
		assert.Equal(t, n.Name(), got.Name)
	}
}

func TestResolveNode(t *testing.T) {
	r := resolve.New(fixture())

	n, ref, ok := r.ResolveNode("Airtime")
	assert.True(t, ok)
	assert.True(t, n.IsGroup())
	assert.Equal(t, "g1", ref.ID)

	_, ref, ok = r.ResolveNode("ghost")
	assert.False(t, ok)
	assert.Equal(t, "ghost", ref.Name)
}
