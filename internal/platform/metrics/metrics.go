package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides observability for the resolution hot path.
type Metrics struct {
	ResolutionsTotal *prometheus.CounterVec
	ResolveDuration  prometheus.Histogram
	SnapshotReloads  *prometheus.CounterVec
}

// New creates a Metrics instance with all metrics registered on the default
// prometheus registry.
func New() *Metrics {
	return &Metrics{
		ResolutionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "webfingerd_resolutions_total",
			Help: "Total number of resolution attempts by outcome",
		}, []string{"outcome"}),
		ResolveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "webfingerd_resolve_duration_seconds",
			Help:    "Duration of resolution engine calls",
			Buckets: []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1},
		}),
		SnapshotReloads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "webfingerd_snapshot_reloads_total",
			Help: "Total number of configuration snapshot reload attempts by result",
		}, []string{"result"}),
	}
}

// IncrementResolution records one resolution attempt with the given outcome.
// Outcomes: ok, unknown_domain, unknown_user, unresolved_alias.
func (m *Metrics) IncrementResolution(outcome string) {
	m.ResolutionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveResolve records the duration of a resolution engine call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveResolve(start time.Time) {
	m.ResolveDuration.Observe(time.Since(start).Seconds())
}

// IncrementReload records a snapshot reload attempt. Results: ok, failed.
func (m *Metrics) IncrementReload(result string) {
	m.SnapshotReloads.WithLabelValues(result).Inc()
}

// Handler exposes the default registry in prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
