// Package metrics exposes Prometheus collectors for the animation service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes
const (
	OutcomeCacheHit = "cache_hit"
	OutcomeRendered = "rendered"
	OutcomeShared   = "shared"
	OutcomeFailed   = "failed"
)

// Collector holds the service metrics on its own registry.
// All methods are safe on a nil *Collector.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	generationsTotal  *prometheus.CounterVec
	modelCallDuration *prometheus.HistogramVec
	modelTokens       *prometheus.CounterVec
	renderDuration    *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	// Model calls and renders take seconds to minutes
	slowBuckets := []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300}

	return &Collector{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   slowBuckets,
			},
			[]string{"method", "route"},
		),
		generationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Animation requests by outcome",
			},
			[]string{"outcome"},
		),
		modelCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_call_duration_seconds",
				Help:      "LLM call duration in seconds",
				Buckets:   slowBuckets,
			},
			[]string{"provider", "model", "status"},
		),
		modelTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_tokens_total",
				Help:      "Tokens used by LLM calls",
			},
			[]string{"provider", "model", "direction"},
		),
		renderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Renderer subprocess duration in seconds",
				Buckets:   slowBuckets,
			},
			[]string{"exit_code"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordHTTPRequest records one served request
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordGeneration counts a finished animation request
func (c *Collector) RecordGeneration(outcome string) {
	if c == nil {
		return
	}
	c.generationsTotal.WithLabelValues(outcome).Inc()
}

// RecordModelCall records an LLM call and its token usage
func (c *Collector) RecordModelCall(provider, model string, duration time.Duration, tokensIn, tokensOut int, err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.modelCallDuration.WithLabelValues(provider, model, status).Observe(duration.Seconds())
	if tokensIn > 0 {
		c.modelTokens.WithLabelValues(provider, model, "input").Add(float64(tokensIn))
	}
	if tokensOut > 0 {
		c.modelTokens.WithLabelValues(provider, model, "output").Add(float64(tokensOut))
	}
}

// RecordRender records one renderer run
func (c *Collector) RecordRender(exitCode int, duration time.Duration) {
	if c == nil {
		return
	}
	c.renderDuration.WithLabelValues(strconv.Itoa(exitCode)).Observe(duration.Seconds())
}
