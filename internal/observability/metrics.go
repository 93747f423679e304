package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "hottag"

// Metrics tracks importer metrics on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	Championships    *prometheus.CounterVec
	Promotions       *prometheus.CounterVec
	Fetches          *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	WrestlersCreated prometheus.Counter
	Backfills        prometheus.Counter
	RosterWrites     *prometheus.CounterVec
	ResolveErrors    prometheus.Counter
	LastRun          prometheus.Gauge

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Championships: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "championships_total",
			Help:      "Championships reconciled by action",
		}, []string{"action"}),
		Promotions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotions_total",
			Help:      "Promotions processed by status",
		}, []string{"status"}),
		Fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "requests_total",
			Help:      "Title page fetches by outcome",
		}, []string{"outcome"}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Duration of title page fetches in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}),
		WrestlersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wrestlers_created_total",
			Help:      "Wrestlers created while resolving champions",
		}),
		Backfills: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wrestler_source_backfills_total",
			Help:      "Cagematch ids backfilled onto existing wrestlers",
		}),
		RosterWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "roster_writes_total",
			Help:      "Roster membership writes by action",
		}, []string{"action"}),
		ResolveErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "champion_resolve_errors_total",
			Help:      "Champions dropped because resolution failed",
		}),
		LastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
		logger: logger.With("component", "metrics"),
	}
}

// ObserveFetch records one fetch.
func (m *Metrics) ObserveFetch(d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.Fetches.WithLabelValues(outcome).Inc()
	m.FetchDuration.Observe(d.Seconds())
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer starts the metrics HTTP server. The returned server should be
// shut down when the run ends.
func (m *Metrics) StartServer(port int, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.logger.Info("metrics server starting", "addr", srv.Addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return srv
}

// Push sends the registry to a Prometheus Pushgateway under job.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	m.LastRun.SetToCurrentTime()
	if err := push.New(gatewayURL, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	m.logger.Info("metrics pushed", "gateway", gatewayURL, "job", job)
	return nil
}
