// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/plasmap/pkg/observability"
)

const namespace = "plasmap"

// Collector records pipeline, cache and HTTP events as Prometheus metrics.
type Collector struct {
	layouts        *prometheus.CounterVec
	layoutDuration prometheus.Histogram
	layoutPasses   prometheus.Histogram
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	cacheOps       *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	requests       *prometheus.CounterVec
	requestTime    *prometheus.HistogramVec
	inFlight       prometheus.Gauge
}

var (
	_ observability.PipelineHooks = (*Collector)(nil)
	_ observability.CacheHooks    = (*Collector)(nil)
	_ observability.HTTPHooks     = (*Collector)(nil)
)

// New creates the collector's metrics and registers them with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layouts_total",
			Help:      "Layouts computed, by result.",
		}, []string{"result"}),
		layoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Time to compute a layout.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		layoutPasses: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_resolver_passes",
			Help:      "Resolver passes needed to separate overlapping features.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 16, 32, 64, 128, 256},
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Maps rendered, by format and result.",
		}, []string{"format", "result"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time to render a map.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"format"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes, by key type and operation.",
		}, []string{"key_type", "op"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"key_type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route and status code.",
		}, []string{"method", "route", "code"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests being served.",
		}),
	}

	for _, m := range []prometheus.Collector{
		c.layouts, c.layoutDuration, c.layoutPasses,
		c.renders, c.renderDuration,
		c.cacheOps, c.cacheBytes,
		c.requests, c.requestTime, c.inFlight,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Install registers c as the global pipeline, cache and HTTP hooks.
func (c *Collector) Install() {
	observability.SetPipelineHooks(c)
	observability.SetCacheHooks(c)
	observability.SetHTTPHooks(c)
}

func (c *Collector) OnLayoutStart(context.Context, int) {}

func (c *Collector) OnLayoutComplete(_ context.Context, _ int, passes int, d time.Duration, err error) {
	c.layouts.WithLabelValues(result(err)).Inc()
	c.layoutDuration.Observe(d.Seconds())
	if passes > 0 {
		c.layoutPasses.Observe(float64(passes))
	}
}

func (c *Collector) OnRenderStart(context.Context, string) {}

func (c *Collector) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	c.renders.WithLabelValues(format, result(err)).Inc()
	c.renderDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (c *Collector) OnCacheHit(_ context.Context, keyType string) {
	c.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (c *Collector) OnCacheMiss(_ context.Context, keyType string) {
	c.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (c *Collector) OnCacheSet(_ context.Context, keyType string, size int) {
	c.cacheOps.WithLabelValues(keyType, "set").Inc()
	c.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (c *Collector) OnRequest(context.Context, string, string) {
	c.inFlight.Inc()
}

func (c *Collector) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	c.inFlight.Dec()
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestTime.WithLabelValues(method, route).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
