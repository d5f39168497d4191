package reporting

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/clinassist/internal/platform/auth"
)

// Handler serves performance reports over caller-supplied activity.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/reports", auth.RequireRole("admin", "physician"))
	g.POST("/performance", h.Performance)
}

// Performance builds a report. The period query parameter defaults to month.
func (h *Handler) Performance(c echo.Context) error {
	period := PeriodMonth
	if q := c.QueryParam("period"); q != "" {
		p, err := ParsePeriod(q)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		period = p
	}

	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, BuildReport(in, period))
}
