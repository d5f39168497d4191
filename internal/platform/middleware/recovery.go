package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/clinassist/internal/platform/auth"
)

// Recovery turns a handler panic into a 500 and logs the stack with the
// caller's identity and route parameters. The response echoes the request
// ID so a client report can be matched to the log line.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				panicErr, ok := r.(error)
				if !ok {
					panicErr = fmt.Errorf("%v", r)
				}
				var stack [4096]byte
				n := runtime.Stack(stack[:], false)
				rid := requestIDFrom(c)

				ev := logger.Error().
					Err(panicErr).
					Str("request_id", rid).
					Str("method", c.Request().Method).
					Str("route", c.Path()).
					Str("user_id", auth.UserIDFromContext(c.Request().Context()))
				params := zerolog.Dict()
				for _, name := range c.ParamNames() {
					params.Str(name, c.Param(name))
				}
				ev.Dict("params", params).
					Str("stack", string(stack[:n])).
					Msg("panic recovered")

				err = echo.NewHTTPError(http.StatusInternalServerError, map[string]string{
					"error":      "internal server error",
					"request_id": rid,
				}).SetInternal(panicErr)
			}()
			return next(c)
		}
	}
}
