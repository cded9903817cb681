// Package telemetry records HTTP server and data-set metrics in a Prometheus
// registry and serves them in the text exposition format.
package telemetry

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "safetynet"

// Config holds the telemetry settings.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	MetricsEnabled *bool // nil = enabled
}

func (c *Config) metricsOn() bool {
	if c.MetricsEnabled == nil {
		return true
	}
	return *c.MetricsEnabled
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "safetynet-server"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.0.0"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// BoolPtr is a helper to create a *bool for Config fields.
func BoolPtr(b bool) *bool {
	return &b
}

// Provider owns a private registry so tests can build several side by side.
type Provider struct {
	cfg      Config
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

func NewProvider(cfg Config) *Provider {
	cfg.applyDefaults()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p := &Provider{
		cfg:      cfg,
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
	}
	reg.MustRegister(p.requests, p.duration, p.inFlight)
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "build_info",
		Help:        "Always 1; labels carry the build.",
		ConstLabels: prometheus.Labels{"service": cfg.ServiceName, "version": cfg.ServiceVersion, "env": cfg.Environment},
	}, func() float64 { return 1 }))
	return p
}

// Registry exposes the underlying registry, mainly for tests.
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}

// CollectionSize reports the current size of one entity collection, e.g.
// "persons".
type CollectionSize func(ctx context.Context) (int, error)

// RegisterCollection adds a gauge safetynet_collection_size{collection=name}
// read from size at scrape time. Errors read as -1.
func (p *Provider) RegisterCollection(name string, size CollectionSize) error {
	return p.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "collection_size",
		Help:        "Number of entities held in a collection.",
		ConstLabels: prometheus.Labels{"collection": name},
	}, func() float64 {
		n, err := size(context.Background())
		if err != nil {
			return -1
		}
		return float64(n)
	}))
}

// MetricsMiddleware records request counts and latency per route pattern.
func (p *Provider) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !p.cfg.metricsOn() {
				return next(c)
			}

			p.inFlight.Inc()
			start := time.Now()

			err := next(c)

			p.inFlight.Dec()
			req := c.Request()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil {
				status = 500
			}

			p.duration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
			p.requests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
			return err
		}
	}
}

// PrometheusHandler serves the registry at /metrics.
func (p *Provider) PrometheusHandler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
}
