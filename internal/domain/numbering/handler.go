package numbering

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/clinassist/internal/platform/auth"
)

type Handler struct {
	gen *Generator
}

func NewHandler(gen *Generator) *Handler {
	return &Handler{gen: gen}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	issue := api.Group("/numbering", auth.RequireRole("admin", "physician", "nurse", "registrar"))
	issue.POST("/:category/next", h.Next)
	issue.GET("/:category/preview", h.Preview)

	admin := api.Group("/numbering/settings", auth.RequireRole("admin"))
	admin.GET("", h.GetSettings)
	admin.PUT("", h.UpdateSettings)
}

// NumberResponse is returned by the next and preview endpoints. Number is
// empty and Issued false when the category is disabled.
type NumberResponse struct {
	Category Category `json:"category"`
	Number   string   `json:"number"`
	Issued   bool     `json:"issued"`
}

func (h *Handler) Next(c echo.Context) error {
	cat, err := ParseCategory(c.Param("category"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	number, err := h.gen.Next(c.Request().Context(), cat)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, NumberResponse{Category: cat, Number: number, Issued: number != ""})
}

func (h *Handler) Preview(c echo.Context) error {
	cat, err := ParseCategory(c.Param("category"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	number, err := h.gen.Preview(c.Request().Context(), cat)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, NumberResponse{Category: cat, Number: number})
}

func (h *Handler) GetSettings(c echo.Context) error {
	s, err := h.gen.Store().Load(c.Request().Context())
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) UpdateSettings(c echo.Context) error {
	var s Settings
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.gen.Store().Save(c.Request().Context(), &s); err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, &s)
}

func storeError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownCategory):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrLockTimeout):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "numbering is busy, retry shortly")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "numbering store unavailable").SetInternal(err)
}
