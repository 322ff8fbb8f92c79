package observability

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/coursekeeper-backend/internal/platform/envutil"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

// Metrics holds the collectors of the HTTP API, the lookup cache and the credential probe.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge
	cacheLookup *prometheus.CounterVec
	probeChecks *prometheus.CounterVec
}

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", true)
}

// Init builds the metrics when METRICS_ENABLED allows it and returns nil otherwise.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		log.Info("Metrics disabled")
		return nil
	}
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		log.Warn("Metrics init failed", "error", err)
		return nil
	}
	return m
}

func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		registry: registry,
		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total API requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		apiLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "API request latency in seconds by method and route.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route"},
		),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "In-flight API requests.",
		}),
		cacheLookup: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lookup_cache_total",
				Help: "Year lookups served by result: hit, miss or error.",
			},
			[]string{"result"},
		),
		probeChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "probe_checks_total",
				Help: "Credential probe checks by target and result.",
			},
			[]string{"target", "result"},
		),
	}
	for _, c := range []prometheus.Collector{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.cacheLookup,
		m.probeChecks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

// ObserveCache records "hit", "miss" or "error".
func (m *Metrics) ObserveCache(result string) {
	if m != nil {
		m.cacheLookup.WithLabelValues(result).Inc()
	}
}

// ObserveProbe records one probe target ("apify", "arxiv_mcp") as "ok" or "error".
func (m *Metrics) ObserveProbe(target string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.probeChecks.WithLabelValues(target, result).Inc()
}
