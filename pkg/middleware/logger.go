package middleware

import (
	"github.com/labstack/echo/v4"

	"golang-papertrade/pkg/logger"
)

// NewRequestLoggerMiddleware stores a logger tagged with the request ID in the
// request context, so *Context log calls further down carry it.
func NewRequestLoggerMiddleware(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqLog := log.With(
				logger.StringField("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				logger.StringField("path", c.Path()),
			)
			req := c.Request()
			c.SetRequest(req.WithContext(logger.NewContext(req.Context(), reqLog)))
			return next(c)
		}
	}
}
