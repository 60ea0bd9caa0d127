package tui_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/aretw0/ussdflow/internal/presentation/tui"
	"github.com/aretw0/ussdflow/pkg/dsl"
	"github.com/aretw0/ussdflow/pkg/flowdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	b := dsl.New()
	b.Add("S").Start("main").Go("M")
	b.Add("M").Prompt("Menu", "1. Balance\n2. Airtime").
		Option("1", "Balance", "C").
		Option("2", "Airtime", "G").
		Option("3", "Broken", "")
	b.Add("C").Action("Check", "GET", "https://api/balance").Branch("ok", `{"==":[1,1]}`, "M")
	b.Add("G").Group("Airtime").MenuBranch()
	b.Add("GS").Start("airtime").In("G")
	doc := flowdoc.Build(b.MustBuild())

	md := tui.Describe(doc)

	assert.Contains(t, md, "# main\n")
	assert.Contains(t, md, "Entry: **Menu** (`M`)")
	assert.Contains(t, md, "## Menu")
	assert.Contains(t, md, "> 1. Balance\n> 2. Airtime")
	assert.Contains(t, md, "- `1` Balance → **Check**")
	assert.Contains(t, md, "- `2` Airtime → flow **airtime**")
	assert.Contains(t, md, "- `3` Broken → _unconnected_")
	assert.Contains(t, md, "`GET https://api/balance`")
	assert.Contains(t, md, "→ **Menu**")
}

func TestDescribe_Unnamed(t *testing.T) {
	md := tui.Describe(flowdoc.Build(nil, nil))
	assert.Contains(t, md, "(unnamed flow)")
	assert.Contains(t, md, "Entry: _unconnected_")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.2.3\n")
	assert.Contains(t, buf.String(), "v1.2.3")
}

func TestPrint_PlainWhenNotTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out-*.md")
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, tui.Print(f, "# Title\n"))

	got, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "# Title\n", string(got))
}
