package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestConfig_Defaults(t *testing.T) {
	p := NewProvider(Config{})
	if p.cfg.Namespace != "clinassist" {
		t.Fatalf("expected default namespace 'clinassist', got %q", p.cfg.Namespace)
	}
	if p.cfg.ServiceVersion != "0.0.0" {
		t.Fatalf("expected default version '0.0.0', got %q", p.cfg.ServiceVersion)
	}
}

func TestNilProvider_IsNoop(t *testing.T) {
	var p *Provider
	p.RecordNumberIssued("outpatient")
	p.RecordNumberingReset("outpatient")
	p.RecordTriage("urgent")
	p.RecordLabFindings(1, 2, 3)
	p.RecordBillingScreen(1, 0.5)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := p.MetricsMiddleware()(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecordNumberIssued(t *testing.T) {
	p := NewProvider(Config{})
	p.RecordNumberIssued("emergency")
	p.RecordNumberIssued("emergency")
	p.RecordNumberIssued("inpatient")

	if got := testutil.ToFloat64(p.numbersIssued.WithLabelValues("emergency")); got != 2 {
		t.Errorf("emergency issued = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.numbersIssued.WithLabelValues("inpatient")); got != 1 {
		t.Errorf("inpatient issued = %v, want 1", got)
	}
}

func TestRecordLabFindings(t *testing.T) {
	p := NewProvider(Config{})
	p.RecordLabFindings(3, 2, 1)
	if got := testutil.ToFloat64(p.labFindings.WithLabelValues("abnormal")); got != 2 {
		t.Errorf("abnormal = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.labFindings.WithLabelValues("critical")); got != 1 {
		t.Errorf("critical = %v, want 1", got)
	}
}

func TestMetricsMiddleware_RecordsRoute(t *testing.T) {
	p := NewProvider(Config{})
	e := echo.New()
	e.Use(p.MetricsMiddleware())
	e.GET("/items/:id", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", p.PrometheusHandler())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `clinassist_http_request_duration_seconds_count{method="GET",route="/items/:id",status_code="200"} 1`) {
		t.Errorf("expected labeled duration series in exposition, got:\n%s", body)
	}
}

func TestPrometheusHandler_ExposesDomainCounters(t *testing.T) {
	p := NewProvider(Config{})
	p.RecordTriage("critical")
	p.RecordBillingScreen(2, 0.4)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	if err := p.PrometheusHandler()(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`clinassist_triage_suggestions_total{priority="critical"} 1`,
		`clinassist_billing_anomalies_total 2`,
		`clinassist_billing_invoice_risk_score_count 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in exposition", want)
		}
	}
}
