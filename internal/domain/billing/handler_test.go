package billing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ehr/clinassist/internal/platform/telemetry"
	"github.com/ehr/clinassist/internal/platform/validate"
)

func newTestHandler() (*Handler, *echo.Echo) {
	h := NewHandler()
	h.SetMetrics(telemetry.NewProvider(telemetry.Config{}))
	e := echo.New()
	e.Validator = validate.New()
	return h, e
}

func TestHandler_DetectAnomalies(t *testing.T) {
	h, e := newTestHandler()
	body := `{
		"invoice": {"items": [{"service_name": "X-Ray", "quantity": 1, "unit_price": 1600}]},
		"service_charges": [{"service_name": "X-Ray", "amount": 1000}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.DetectAnomalies(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !report.HasAnomalies || len(report.Anomalies) != 1 {
		t.Errorf("expected one anomaly, got %+v", report)
	}
}

func TestHandler_DetectAnomalies_ItemsWithoutIDs(t *testing.T) {
	h, e := newTestHandler()
	body := `{
		"invoice": {"items": [
			{"service_name": "Consult", "quantity": 1, "unit_price": 100},
			{"service_name": "X-Ray", "quantity": 1, "unit_price": 1600}
		]},
		"service_charges": [{"service_name": "X-Ray", "amount": 1000}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.DetectAnomalies(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Anomalies) != 1 || report.Anomalies[0].ItemIndex != 1 {
		t.Errorf("expected the X-Ray line flagged at index 1, got %+v", report.Anomalies)
	}
}

func TestHandler_DetectAnomalies_MissingServiceName(t *testing.T) {
	h, e := newTestHandler()
	body := `{"invoice": {"items": [{"quantity": 2, "unit_price": 10}]}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.DetectAnomalies(c); err == nil {
		t.Error("expected validation error for missing service name")
	}
}

func TestHandler_DetectAnomalies_BadJSON(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"invoice":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.DetectAnomalies(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
