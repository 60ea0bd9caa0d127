package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	catalogHTTP "github.com/aretw0/ussdflow/pkg/adapters/http"
	"github.com/aretw0/ussdflow/pkg/adapters/memory"
	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts ...catalogHTTP.Option) (*httptest.Server, *memory.Catalog) {
	t.Helper()
	cat, err := memory.NewCatalog()
	require.NoError(t, err)
	srv := httptest.NewServer(catalogHTTP.NewHandler(cat, opts...))
	t.Cleanup(srv.Close)
	return srv, cat
}

func TestClient_Contract(t *testing.T) {
	srv, _ := newServer(t)
	ports.RunCatalogContract(t, catalogHTTP.NewClient(srv.URL))
}

func TestClient_EscapedName(t *testing.T) {
	srv, cat := newServer(t)
	ctx := context.Background()
	client := catalogHTTP.NewClient(srv.URL + "/")

	require.NoError(t, client.Publish(ctx, domain.FlowDocument{FlowName: "top up/v1"}))

	stored, err := cat.FetchByName(ctx, "top up/v1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	docs, err := client.FetchByName(ctx, "top up/v1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "top up/v1", docs[0].FlowName)
}

func TestClient_TransportError(t *testing.T) {
	srv, _ := newServer(t)
	client := catalogHTTP.NewClient(srv.URL)
	srv.Close()

	_, err := client.FetchAll(context.Background())
	require.Error(t, err)
	var se *catalogHTTP.StatusError
	assert.NotErrorAs(t, err, &se, "transport failures are not status errors")
}

func TestServer_CreateFlow_BadBody(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/flows", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
}

func TestServer_CreateFlow_Unnamed(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/flows", "application/json", strings.NewReader(`{"flowName":""}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestServer_CreateFlow_Location(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/flows", "application/json", strings.NewReader(`{"flowName":"main"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/flows/main", resp.Header.Get("Location"))
}

func TestServer_GetFlow_NotFound(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/flows/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_HealthAndInfo(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/info")
	require.NoError(t, err)
	defer resp.Body.Close()
	var info map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "ussdflow-catalog", info["app"])
	assert.NotEmpty(t, info["version"])
}

func TestServer_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	})
	var seen []string
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
	srv, _ := newServer(t, catalogHTTP.WithMetrics(metrics), catalogHTTP.WithMiddleware(mw))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"/metrics"}, seen)
}

func TestServer_CORSPreflight(t *testing.T) {
	srv, _ := newServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/flows", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
