// Package telemetry exposes Prometheus metrics for the clinassist server:
// HTTP server latency plus counters for the rule engines and the patient
// number generator. Every Provider owns its registry so tests can create
// independent instances.
package telemetry

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds telemetry configuration.
type Config struct {
	Namespace      string
	ServiceVersion string
	// IncludeRuntime registers the Go runtime and process collectors.
	IncludeRuntime bool
}

func (c *Config) applyDefaults() {
	if c.Namespace == "" {
		c.Namespace = "clinassist"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.0.0"
	}
}

var defaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Provider owns a Prometheus registry and the application collectors.
// A nil *Provider is valid and records nothing.
type Provider struct {
	cfg      Config
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge

	numbersIssued    *prometheus.CounterVec
	numberingResets  *prometheus.CounterVec
	triageByPriority *prometheus.CounterVec
	labFindings      *prometheus.CounterVec
	billingAnomalies prometheus.Counter
	billingRisk      prometheus.Histogram
}

// NewProvider creates a Provider with all collectors registered.
func NewProvider(cfg Config) *Provider {
	cfg.applyDefaults()
	ns := cfg.Namespace

	p := &Provider{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   defaultDurationBuckets,
		}, []string{"method", "route", "status_code"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "http_active_requests",
			Help:      "Number of in-flight HTTP requests.",
		}),
		numbersIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "patient_numbers_issued_total",
			Help:      "Patient numbers issued, by category.",
		}, []string{"category"}),
		numberingResets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "patient_number_resets_total",
			Help:      "Sequence resets caused by crossing a reset boundary, by category.",
		}, []string{"category"}),
		triageByPriority: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "triage_suggestions_total",
			Help:      "Triage priority suggestions, by priority.",
		}, []string{"priority"}),
		labFindings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "lab_findings_total",
			Help:      "Lab result classifications, by kind.",
		}, []string{"kind"}),
		billingAnomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "billing_anomalies_total",
			Help:      "Billing line items flagged as anomalous.",
		}),
		billingRisk: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "billing_invoice_risk_score",
			Help:      "Overall risk score of screened invoices.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}

	p.registry.MustRegister(
		p.requestDuration, p.activeRequests,
		p.numbersIssued, p.numberingResets,
		p.triageByPriority, p.labFindings,
		p.billingAnomalies, p.billingRisk,
	)
	if cfg.IncludeRuntime {
		p.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return p
}

// Registry returns the underlying registry.
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Provider) RecordNumberIssued(category string) {
	if p == nil {
		return
	}
	p.numbersIssued.WithLabelValues(category).Inc()
}

func (p *Provider) RecordNumberingReset(category string) {
	if p == nil {
		return
	}
	p.numberingResets.WithLabelValues(category).Inc()
}

func (p *Provider) RecordTriage(priority string) {
	if p == nil {
		return
	}
	p.triageByPriority.WithLabelValues(priority).Inc()
}

// RecordLabFindings counts one summarized test's classifications.
func (p *Provider) RecordLabFindings(normal, abnormal, critical int) {
	if p == nil {
		return
	}
	p.labFindings.WithLabelValues("normal").Add(float64(normal))
	p.labFindings.WithLabelValues("abnormal").Add(float64(abnormal))
	p.labFindings.WithLabelValues("critical").Add(float64(critical))
}

// RecordBillingScreen counts one screened invoice.
func (p *Provider) RecordBillingScreen(anomalies int, risk float64) {
	if p == nil {
		return
	}
	p.billingAnomalies.Add(float64(anomalies))
	p.billingRisk.Observe(risk)
}

// MetricsMiddleware records request latency and in-flight requests.
func (p *Provider) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if p == nil {
				return next(c)
			}
			p.activeRequests.Inc()
			defer p.activeRequests.Dec()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			p.requestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// PrometheusHandler serves the registry in the Prometheus exposition format.
func (p *Provider) PrometheusHandler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
}
