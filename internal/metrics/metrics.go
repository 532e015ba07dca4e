// Package metrics exposes Prometheus instrumentation for the HTTP layer and the shop engines.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	validationFailuresTotal *prometheus.CounterVec
	searchCacheTotal        *prometheus.CounterVec
)

// Config groups what RegisterMetrics needs.
type Config struct {
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
	DB       *sql.DB
}

// RegisterMetrics initialises the collectors once and returns the /metrics handler.
func RegisterMetrics(cfg Config) (http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "In-flight requests by method and path",
		}, []string{"method", "path"})

		validationFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_validation_failures_total",
			Help: "Shop writes rejected by validation",
		}, []string{"reason"}) // reason: name|interval|overlap

		searchCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "search_cache_requests_total",
			Help: "Full-text search cache lookups by result",
		}, []string{"result"}) // result: hit|miss|error

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration, httpInflight,
			validationFailuresTotal, searchCacheTotal,
		} {
			if err := registerCollector(registry, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	if cfg.DB != nil {
		if err := registerCollector(registry, newDBPoolCollector(cfg.DB)); err != nil {
			return nil, err
		}
	}

	if cfg.Gatherer != nil {
		return promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}), nil
	}
	return promhttp.Handler(), nil
}

// WithMetrics instruments requests with counters, latency and in-flight gauges.
func WithMetrics(next http.Handler) http.Handler {
	if httpRequestsTotal == nil || httpRequestDuration == nil || httpInflight == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.ToUpper(r.Method)
		pathLabel := normalizePath(r.URL.Path)

		httpInflight.WithLabelValues(method, pathLabel).Inc()
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			httpInflight.WithLabelValues(method, pathLabel).Dec()
			httpRequestDuration.WithLabelValues(method, pathLabel).Observe(time.Since(start).Seconds())

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			httpRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(rec, r)
	})
}

// RecordValidationFailure counts a rejected shop write.
func RecordValidationFailure(reason string) {
	if validationFailuresTotal != nil {
		validationFailuresTotal.WithLabelValues(reason).Inc()
	}
}

// RecordSearchCache counts a search cache lookup.
func RecordSearchCache(result string) {
	if searchCacheTotal != nil {
		searchCacheTotal.WithLabelValues(result).Inc()
	}
}

// registerCollector registers collector, ignoring duplicates.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// normalizePath replaces numeric path segments so ids do not explode label cardinality.
func normalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	segments := strings.Split(clean, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if _, err := strconv.ParseInt(seg, 10, 64); err == nil {
			seg = ":id"
		}
		out = append(out, seg)
	}
	return "/" + strings.Join(out, "/")
}

// dbPoolCollector exposes database/sql pool statistics.
type dbPoolCollector struct {
	db *sql.DB

	openDesc  *prometheus.Desc
	inUseDesc *prometheus.Desc
	idleDesc  *prometheus.Desc
	waitDesc  *prometheus.Desc
}

func newDBPoolCollector(db *sql.DB) *dbPoolCollector {
	return &dbPoolCollector{
		db:        db,
		openDesc:  prometheus.NewDesc("db_pool_open_connections", "Open database connections", nil, nil),
		inUseDesc: prometheus.NewDesc("db_pool_in_use_connections", "Database connections in use", nil, nil),
		idleDesc:  prometheus.NewDesc("db_pool_idle_connections", "Idle database connections", nil, nil),
		waitDesc:  prometheus.NewDesc("db_pool_wait_count_total", "Connections waited for", nil, nil),
	}
}

func (c *dbPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.openDesc
	ch <- c.inUseDesc
	ch <- c.idleDesc
	ch <- c.waitDesc
}

func (c *dbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.db.Stats()
	ch <- prometheus.MustNewConstMetric(c.openDesc, prometheus.GaugeValue, float64(s.OpenConnections))
	ch <- prometheus.MustNewConstMetric(c.inUseDesc, prometheus.GaugeValue, float64(s.InUse))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(s.Idle))
	ch <- prometheus.MustNewConstMetric(c.waitDesc, prometheus.CounterValue, float64(s.WaitCount))
}
