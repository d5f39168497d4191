package billing

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/clinassist/internal/platform/auth"
	"github.com/ehr/clinassist/internal/platform/telemetry"
)

type Handler struct {
	metrics *telemetry.Provider
}

func NewHandler() *Handler {
	return &Handler{}
}

// SetMetrics attaches an optional metrics provider.
func (h *Handler) SetMetrics(m *telemetry.Provider) {
	h.metrics = m
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/billing", auth.RequireRole("admin", "billing"))
	g.POST("/anomalies", h.DetectAnomalies)
}

// AnomalyRequest is the body of POST /billing/anomalies.
type AnomalyRequest struct {
	Invoice            Invoice         `json:"invoice"`
	HistoricalInvoices []Invoice       `json:"historical_invoices" validate:"dive"`
	ServiceCharges     []ServiceCharge `json:"service_charges" validate:"dive"`
}

func (h *Handler) DetectAnomalies(c echo.Context) error {
	var req AnomalyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	report := DetectAnomalies(req.Invoice, req.HistoricalInvoices, req.ServiceCharges)
	h.metrics.RecordBillingScreen(len(report.Anomalies), report.OverallRiskScore)
	return c.JSON(http.StatusOK, report)
}
