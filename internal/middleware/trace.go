package middleware

import (
	"context"

	"cartCompanion/business/recommend"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Trace propagates X-Request-ID, minting one when absent, into the request
// context and the response header.
func Trace() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			ctx := context.WithValue(c.Request().Context(), recommend.TraceIDKey, id)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			return next(c)
		}
	}
}
