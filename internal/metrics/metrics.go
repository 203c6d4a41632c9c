package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/argo-screener/internal/logger"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"go.uber.org/zap"
)

// Metrics holds the Prometheus collectors of the screener. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	RunsTotal      prometheus.Counter
	SymbolsTotal   *prometheus.CounterVec // labels: signal
	ErrorsTotal    *prometheus.CounterVec // labels: kind
	AlertsTotal    *prometheus.CounterVec // labels: outcome=sent|failed
	FetchDur       prometheus.Histogram
	ComputeDur     prometheus.Histogram
	RunDur         prometheus.Histogram
	LastRunSuccess prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates the collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_runs_total",
			Help: "Total screener runs",
		}),
		SymbolsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_symbols_total",
			Help: "Symbols screened by resulting signal",
		}, []string{"signal"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_symbol_errors_total",
			Help: "Symbols that failed by error kind",
		}, []string{"kind"}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_alerts_total",
			Help: "Alerts dispatched by outcome",
		}, []string{"outcome"}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_fetch_duration_seconds",
			Help:    "Market data fetch latency per symbol",
			Buckets: prometheus.DefBuckets,
		}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_compute_duration_seconds",
			Help:    "Indicator and classification latency per symbol",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		RunDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_run_duration_seconds",
			Help:    "Wall time of a whole batch",
			Buckets: prometheus.DefBuckets,
		}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "screener_last_run_timestamp_seconds",
			Help: "Unix time of the last finished run",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RunsTotal,
		m.SymbolsTotal,
		m.ErrorsTotal,
		m.AlertsTotal,
		m.FetchDur,
		m.ComputeDur,
		m.RunDur,
		m.LastRunSuccess,
	)

	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveFetch records one fetch.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}

	m.FetchDur.Observe(d.Seconds())
}

// ObserveCompute records one indicator and classification pass.
func (m *Metrics) ObserveCompute(d time.Duration) {
	if m == nil {
		return
	}

	m.ComputeDur.Observe(d.Seconds())
}

// ObserveRow counts a finished row.
func (m *Metrics) ObserveRow(row types.Row) {
	if m == nil {
		return
	}

	m.SymbolsTotal.WithLabelValues(string(row.Signal)).Inc()

	if row.ErrorKind != types.ErrorKindNone {
		m.ErrorsTotal.WithLabelValues(string(row.ErrorKind)).Inc()
	}
}

// ObserveAlert counts a dispatched alert.
func (m *Metrics) ObserveAlert(sent bool) {
	if m == nil {
		return
	}

	outcome := "failed"
	if sent {
		outcome = "sent"
	}

	m.AlertsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRun records a finished batch.
func (m *Metrics) ObserveRun(report *types.Report) {
	if m == nil || report == nil {
		return
	}

	m.RunsTotal.Inc()
	m.RunDur.Observe(report.Duration().Seconds())
	m.LastRunSuccess.Set(float64(report.FinishedAt.Unix()))
}

// HealthStatus reports when the last run finished.
type HealthStatus struct {
	mu sync.RWMutex

	StartedAt   time.Time `json:"started_at"`
	LastRunAt   time.Time `json:"last_run_at"`
	LastRunRows int       `json:"last_run_rows"`
	LastErrors  int       `json:"last_run_errors"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

// RecordRun stores the outcome of a finished run.
func (h *HealthStatus) RecordRun(report *types.Report) {
	if h == nil || report == nil {
		return
	}

	failed := 0

	for _, row := range report.Rows {
		if row.Failed() {
			failed++
		}
	}

	h.mu.Lock()
	h.LastRunAt = report.FinishedAt
	h.LastRunRows = len(report.Rows)
	h.LastErrors = failed
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint. It is healthy once a run has
// finished with at least one row that did not fail.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	httpCode := http.StatusOK

	switch {
	case h.LastRunAt.IsZero():
		status = "starting"
		httpCode = http.StatusServiceUnavailable
	case h.LastRunRows > 0 && h.LastErrors == h.LastRunRows:
		status = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	body := struct {
		Status      string `json:"status"`
		Uptime      string `json:"uptime"`
		LastRunAt   string `json:"last_run_at,omitempty"`
		LastRunRows int    `json:"last_run_rows"`
		LastErrors  int    `json:"last_run_errors"`
	}{
		Status:      status,
		Uptime:      time.Since(h.StartedAt).Round(time.Second).String(),
		LastRunRows: h.LastRunRows,
		LastErrors:  h.LastErrors,
	}

	if !h.LastRunAt.IsZero() {
		body.LastRunAt = h.LastRunAt.Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	_ = json.NewEncoder(w).Encode(body)
}

// Server exposes /metrics and /healthz.
type Server struct {
	addr   string
	srv    *http.Server
	logger *logger.Logger
}

// NewServer creates a metrics and health server.
func NewServer(addr string, m *Metrics, health *HealthStatus, log *logger.Logger) *Server {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.Handle("/healthz", health).Methods(http.MethodGet)

	return &Server{
		addr:   addr,
		logger: log,
		srv: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.Info("Metrics server listening", zap.String("addr", s.addr))

		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
