package labsummary

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
	g := api.Group("/lab", auth.RequireRole("admin", "physician", "nurse", "lab_tech"))
	g.POST("/summarize", h.Summarize)
	g.GET("/reference-ranges/:field", h.GetReferenceRange)
}

func (h *Handler) Summarize(c echo.Context) error {
	var test LabTest
	if err := c.Bind(&test); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&test); err != nil {
		return err
	}
	out := Summarize(test)
	h.metrics.RecordLabFindings(len(out.NormalResults), len(out.AbnormalResults), len(out.CriticalResults))
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetReferenceRange(c echo.Context) error {
	r, ok := LookupRange(c.Param("field"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no reference range for field")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"label": r.Label,
		"min":   r.Min,
		"max":   r.Max,
		"unit":  r.Unit,
	})
}
