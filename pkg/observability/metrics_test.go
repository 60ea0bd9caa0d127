package observability_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/ussdflow/pkg/adapters/memory"
	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/graph"
	"github.com/aretw0/ussdflow/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooks_CountMutations(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	store := graph.New(graph.WithHooks(m.Hooks()))

	_, err := store.Add(domain.NewNode("a", domain.PromptData{Name: "Menu"}, "", domain.Position{}))
	require.NoError(t, err)
	_, err = store.Add(domain.NewNode("b", domain.PromptData{Name: "Other"}, "", domain.Position{}))
	require.NoError(t, err)
	_, err = store.Add(domain.NewNode("a", domain.PromptData{Name: "Again"}, "", domain.Position{}))
	require.Error(t, err)
	_, err = store.Remove("b")
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Mutations.WithLabelValues("add", observability.OutcomeCommitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("add", observability.OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("remove", observability.OutcomeCommitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Nodes))
}

type failingCatalog struct{}

var errUnreachable = errors.New("catalog unreachable")

func (failingCatalog) Publish(context.Context, domain.FlowDocument) error { return errUnreachable }
func (failingCatalog) FetchAll(context.Context) ([]domain.FlowDocument, error) {
	return nil, errUnreachable
}
func (failingCatalog) FetchByName(context.Context, string) ([]domain.FlowDocument, error) {
	return nil, errUnreachable
}

func TestInstrumentCatalog(t *testing.T) {
	m := observability.NewMetrics(nil)
	cat, err := memory.NewCatalog()
	require.NoError(t, err)
	c := m.InstrumentCatalog(cat)
	ctx := context.Background()

	require.NoError(t, c.Publish(ctx, domain.FlowDocument{FlowName: "main"}))
	_, err = c.FetchByName(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrFlowNotFound, "errors pass through unchanged")

	failing := m.InstrumentCatalog(failingCatalog{})
	_, err = failing.FetchAll(ctx)
	require.ErrorIs(t, err, errUnreachable)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogRequests.WithLabelValues("publish", observability.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogRequests.WithLabelValues("fetch_by_name", observability.OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogRequests.WithLabelValues("fetch_all", observability.OutcomeError)))
	assert.Equal(t, 3, testutil.CollectAndCount(m.CatalogDuration))
}

func TestMiddleware_RoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/flows/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", observability.Handler(reg))

	for _, path := range []string{"/flows/a", "/flows/b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/flows/{name}", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "ussdflow_http_requests_total"))
}
