package loam_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/ussdflow/internal/testutils"
	loamAdapter "github.com/aretw0/ussdflow/pkg/adapters/loam"
	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) (string, *loamAdapter.Catalog) {
	t.Helper()
	dir, repo := testutils.NewCatalogRepo(t)
	return dir, loamAdapter.New(loam.NewTypedRepository[loamAdapter.FlowMetadata](repo))
}

func TestCatalog_Contract(t *testing.T) {
	_, catalog := newCatalog(t)
	ports.RunCatalogContract(t, catalog)
}

func TestCatalog_EscapedNames(t *testing.T) {
	_, catalog := newCatalog(t)
	ctx := context.Background()

	for _, name := range []string{"top up", "top/up", "v1.2"} {
		require.NoError(t, catalog.Publish(ctx, domain.FlowDocument{FlowName: name}))
	}

	docs, err := catalog.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "top up", docs[0].FlowName)
	assert.Equal(t, "top/up", docs[1].FlowName)
	assert.Equal(t, "v1.2", docs[2].FlowName)
}

func TestCatalog_SkipsForeignFiles(t *testing.T) {
	dir, catalog := newCatalog(t)
	ctx := context.Background()

	testutils.WriteForeign(t, dir, "README.md", "---\ntitle: notes\n---\nNot a flow")
	require.NoError(t, catalog.Publish(ctx, domain.FlowDocument{FlowName: "main"}))

	docs, err := catalog.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "main", docs[0].FlowName)
}

func TestCatalog_Open(t *testing.T) {
	dir := t.TempDir()
	catalog, err := loamAdapter.Open(dir)
	require.NoError(t, err)

	require.NoError(t, catalog.Publish(context.Background(), domain.FlowDocument{FlowName: "main", EntryNode: "Menu"}))

	_, err = os.Stat(filepath.Join(dir, "main.md"))
	assert.NoError(t, err, "flow should be written as main.md")

	reopened, err := loamAdapter.Open(dir)
	require.NoError(t, err)
	docs, err := reopened.FetchByName(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, "Menu", docs[0].EntryNode)
}
