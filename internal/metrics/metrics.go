package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los colectores del servicio sobre un registry propio
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	searchResults   *prometheus.HistogramVec
	searchErrors    *prometheus.CounterVec
}

func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	m := &Metrics{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		searchResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "search_results",
			Help:        "Number of items returned per search request",
			Buckets:     []float64{0, 1, 5, 10, 25, 50, 100, 250},
			ConstLabels: constLabels,
		}, []string{"mode"}),
		searchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "search_errors_total",
			Help:        "Search requests that failed in the store",
			ConstLabels: constLabels,
		}, []string{"mode"}),
	}

	reg.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.searchResults,
		m.searchErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware registra cantidad y duración de cada request por ruta
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.requestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveSearch(mode string, results int) {
	m.searchResults.WithLabelValues(mode).Observe(float64(results))
}

func (m *Metrics) SearchFailed(mode string) {
	m.searchErrors.WithLabelValues(mode).Inc()
}

// Handler expone el registry en formato Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
