package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ussdflow"

// Outcome label values.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeOK        = "ok"
	OutcomeError     = "error"
)

// Metrics holds every collector the editor reports.
type Metrics struct {
	Mutations       *prometheus.CounterVec
	Nodes           prometheus.Gauge
	CatalogRequests *prometheus.CounterVec
	CatalogDuration *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_mutations_total",
				Help:      "Graph Store mutations by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Node count of the last committed snapshot",
		}),
		CatalogRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_requests_total",
				Help:      "Catalog calls by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		CatalogDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "catalog_request_duration_seconds",
				Help:      "Duration of catalog calls",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests served by route pattern and status code",
			},
			[]string{"method", "route", "code"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Mutations, m.Nodes, m.CatalogRequests, m.CatalogDuration, m.HTTPRequests)
	}
	return m
}

// Hooks returns lifecycle hooks that count store mutations. The node gauge
// follows the diffs of committed mutations, so the store must start empty.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommit: func(e *domain.MutationEvent) {
			m.Mutations.WithLabelValues(string(e.Op), OutcomeCommitted).Inc()
			if e.Diff != nil {
				m.Nodes.Add(float64(len(e.Diff.AddedNodes) - len(e.Diff.RemovedNodes)))
			}
		},
		OnReject: func(e *domain.MutationEvent) {
			m.Mutations.WithLabelValues(string(e.Op), OutcomeRejected).Inc()
		},
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Middleware counts requests by chi route pattern, so path parameters do
// not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// InstrumentCatalog wraps c so every call is counted and timed.
func (m *Metrics) InstrumentCatalog(c ports.Catalog) ports.Catalog {
	return &instrumentedCatalog{next: c, m: m}
}

type instrumentedCatalog struct {
	next ports.Catalog
	m    *Metrics
}

func (c *instrumentedCatalog) observe(op string, start time.Time, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	c.m.CatalogRequests.WithLabelValues(op, outcome).Inc()
	c.m.CatalogDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (c *instrumentedCatalog) Publish(ctx context.Context, doc domain.FlowDocument) (err error) {
	defer func(start time.Time) { c.observe("publish", start, err) }(time.Now())
	return c.next.Publish(ctx, doc)
}

func (c *instrumentedCatalog) FetchAll(ctx context.Context) (docs []domain.FlowDocument, err error) {
	defer func(start time.Time) { c.observe("fetch_all", start, err) }(time.Now())
	return c.next.FetchAll(ctx)
}

func (c *instrumentedCatalog) FetchByName(ctx context.Context, name string) (docs []domain.FlowDocument, err error) {
	defer func(start time.Time) { c.observe("fetch_by_name", start, err) }(time.Now())
	return c.next.FetchByName(ctx, name)
}
