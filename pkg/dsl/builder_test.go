package dsl

import (
	"testing"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := New()
	b.Add("start").Start("main").Go("menu")
	b.Add("menu").Prompt("Menu", "1. Balance\n2. Airtime").
		Option("1", "Balance", "balance").
		Option("2", "Airtime", "").
		Default("balance")
	b.Add("balance").Action("Balance", "GET", "https://api.example.com/balance").
		Branch("ok", `{"==":[{"var":"status"},200]}`, "menu")

	nodes, edges, err := b.Build()
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, []string{"start", "menu", "balance"}, []string{nodes[0].ID, nodes[1].ID, nodes[2].ID})

	start := nodes[0].Data.(domain.StartData)
	assert.Equal(t, "menu", start.EntryNode)

	menu := nodes[1].Data.(domain.PromptData)
	assert.True(t, menu.TableMode())
	assert.Len(t, menu.Routes, 2)
	assert.Equal(t, "balance", menu.Routes[0].Goto)
	assert.Nil(t, menu.Routes[1].Goto)
	assert.Equal(t, "balance", menu.Default)

	require.Len(t, edges, 4)
	assert.Equal(t, domain.Edge{ID: "e-menu-1-balance", SourceNodeID: "menu", TargetNodeID: "balance", SourceHandle: "1"}, edges[1])
}

func TestBuilder_Nesting(t *testing.T) {
	b := New()
	b.Add("g").Group("Airtime").MenuBranch().At(100, 50)
	b.Add("s").Start("Airtime").In("g")

	nodes, _, err := b.Build()
	require.NoError(t, err)
	assert.True(t, nodes[0].IsMenuBranch())
	assert.Equal(t, domain.Position{X: 100, Y: 50}, nodes[0].Position)
	assert.Equal(t, "g", nodes[1].ParentScopeID)
}

func TestBuilder_Errors(t *testing.T) {
	b := New()
	b.Add("untyped")
	_, _, err := b.Build()
	assert.Error(t, err)

	b = New()
	b.Add("a").Funnel("Join").Go("ghost")
	_, _, err = b.Build()
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}
