package middleware

import (
	"errors"
	"net/http"
	"strings"

	"cartCompanion/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every unhandled error as {"error": code}. Unknown
// routes and unsupported methods both answer 404 not_found.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			status = http.StatusNotFound
			code = "not_found"
		case http.StatusBadRequest:
			code = "bad_request"
		case http.StatusUnauthorized:
			code = "unauthorized"
		case http.StatusRequestEntityTooLarge:
			code = "payload_too_large"
		default:
			code = strings.ToLower(strings.ReplaceAll(http.StatusText(he.Code), " ", "_"))
			if code == "" {
				code = "error"
			}
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, map[string]string{"error": code})
	}
	if writeErr != nil {
		logger.Error("failed to write error response", writeErr)
	}
}
