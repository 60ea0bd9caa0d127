// Package testutils holds fixtures shared by adapter tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// NewCatalogRepo initializes a Loam repository in a temp dir and returns
// the absolute dir with the repository. Versioning is off unless opts
// say otherwise.
func NewCatalogRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "temp dir path")

	opts = append([]loam.Option{loam.WithVersioning(false)}, opts...)
	repo, err := loam.Init(dir, opts...)
	require.NoError(t, err, "init catalog repo")

	return dir, repo
}

// WriteForeign drops a file the catalog did not write into dir.
func WriteForeign(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
