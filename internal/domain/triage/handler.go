package triage

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
	g := api.Group("/triage", auth.RequireRole("admin", "physician", "nurse"))
	g.POST("/suggest", h.Suggest)
	g.POST("/gcs", h.ComputeGCS)
}

// SuggestRequest is the body of POST /triage/suggest.
type SuggestRequest struct {
	Vitals   *VitalSigns `json:"vitals"`
	Symptoms []string    `json:"symptoms" validate:"dive,max=200"`
	Age      int         `json:"age" validate:"gte=0,lte=150"`
}

func (h *Handler) Suggest(c echo.Context) error {
	var req SuggestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Vitals != nil {
		if err := req.Vitals.Validate(); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	out := SuggestPriority(req.Vitals, req.Symptoms, req.Age)
	h.metrics.RecordTriage(string(out.Priority))
	return c.JSON(http.StatusOK, out)
}

// GCSRequest is the body of POST /triage/gcs.
type GCSRequest struct {
	Eye    int `json:"eye" validate:"required"`
	Verbal int `json:"verbal" validate:"required"`
	Motor  int `json:"motor" validate:"required"`
}

func (h *Handler) ComputeGCS(c echo.Context) error {
	var req GCSRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	g, err := NewGlasgowComaScale(req.Eye, req.Verbal, req.Motor)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, g)
}
