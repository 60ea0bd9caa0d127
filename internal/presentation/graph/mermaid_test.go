package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/ussdflow/internal/presentation/graph"
	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/dsl"
	"github.com/stretchr/testify/assert"
)

func sample() ([]domain.Node, []domain.Edge) {
	b := dsl.New()
	b.Add("start").Start("main").Go("menu")
	b.Add("menu").Prompt("Main Menu", "Pick").Option("1", "Balance", "check").Option("2", "Airtime", "airtime")
	b.Add("check").Action("Check \"Balance\"", "GET", "https://api/balance").Default("done")
	b.Add("done").Funnel("Done")
	b.Add("airtime").Group("Airtime").MenuBranch()
	b.Add("airtime-start").Start("airtime").In("airtime").Go("amount")
	b.Add("amount").Prompt("Amount", "Enter amount").In("airtime")
	return b.MustBuild()
}

func TestGenerateMermaid(t *testing.T) {
	nodes, edges := sample()

	tests := []struct {
		name     string
		scope    string
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name:  "Shapes",
			scope: "",
			contains: []string{
				`start(("main"))`,
				`menu[/"Main Menu"/]`,
				`done[\"Done"/]`,
			},
		},
		{
			name:  "Label Escaping",
			scope: "",
			contains: []string{
				`check[["Check 'Balance'"]]`,
			},
		},
		{
			name:  "Groups Become Subgraphs",
			scope: "",
			contains: []string{
				`    subgraph airtime["Airtime"]`,
				`        airtime_start(("airtime"))`,
				`        amount[/"Amount"/]`,
				"    end\n",
			},
		},
		{
			name:  "Handles Label Edges",
			scope: "",
			contains: []string{
				`menu -- "1" --> check`,
				`check -- "default" --> done`,
				`start --> menu`,
				`airtime_start --> amount`,
			},
		},
		{
			name:  "Scoped To Group",
			scope: "airtime",
			contains: []string{
				`airtime_start --> amount`,
			},
			excludes: []string{
				`menu`,
				`subgraph`,
			},
		},
		{
			name:    "Selection Overlay",
			scope:   "airtime",
			overlay: &graph.Overlay{Selected: []string{"amount", "amount", "menu"}},
			contains: []string{
				"classDef selected",
				"class amount selected;",
			},
			excludes: []string{
				"class menu selected;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(nodes, edges, tt.scope, tt.overlay)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestGenerateMermaid_SelectionDeduplicated(t *testing.T) {
	nodes, edges := sample()
	got := graph.GenerateMermaid(nodes, edges, "", &graph.Overlay{Selected: []string{"menu", "menu"}})
	assert.Equal(t, 1, strings.Count(got, "class menu selected;"))
}
