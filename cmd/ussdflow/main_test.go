package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/ussdflow/pkg/dsl"
	"github.com/aretw0/ussdflow/pkg/flowdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeDocument(t *testing.T) string {
	t.Helper()
	b := dsl.New()
	b.Add("s").Start("main").Go("menu")
	b.Add("menu").Prompt("Menu", "1. Airtime").Option("1", "Airtime", "g")
	b.Add("g").Group("Airtime").MenuBranch()
	b.Add("gs").Start("airtime").In("g").Go("amount")
	b.Add("amount").Prompt("Amount", "Enter amount").In("g")

	data, err := flowdoc.Encode(flowdoc.Build(b.MustBuild()))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "main.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ussdflow version "))
}

func TestExportFromDocument(t *testing.T) {
	path := writeDocument(t)

	out, err := execute(t, "export", "--from", path, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "flowName: main")
	assert.Contains(t, out, "entryNode: Menu")

	_, err = execute(t, "export", "--from", path, "--format", "xml")
	assert.ErrorContains(t, err, `unknown format "xml"`)
}

func TestGraphFromDocument(t *testing.T) {
	out, err := execute(t, "graph", "--from", writeDocument(t))
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "subgraph g")
}

func TestValidateFromDocument(t *testing.T) {
	out, err := execute(t, "validate", "--from", writeDocument(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Graph is valid!")
}

func TestDescribeFromDocument(t *testing.T) {
	out, err := execute(t, "describe", "--from", writeDocument(t))
	require.NoError(t, err)
	assert.Contains(t, out, "# main")
	assert.Contains(t, out, "→ flow **airtime**")
}

func TestPublishAndPull(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "ussdflow.yaml")
	cfg := "workspace: editor\n" +
		"snapshot:\n  backend: file\n  dir: " + filepath.Join(dir, "ws") + "\n" +
		"catalog:\n  backend: loam\n  dir: " + filepath.Join(dir, "catalog") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	_, err := execute(t, "publish", "-q", "-c", cfgPath)
	assert.Error(t, err, "an empty workspace has no start node to publish")

	out, err := execute(t, "pull", "-q", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "all flows: up to date.")
}
