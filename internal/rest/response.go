package rest

import (
	"errors"
	"io"
	"net/http"

	"cartCompanion/domain"
	"cartCompanion/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// APIError is the body of the public recommendation endpoints.
type APIError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

const maxBodyBytes = 1 << 20

var errInvalidJSON = errors.New("invalid json")

// decodeJSON reads the request body into dst. An empty body decodes as {}.
func decodeJSON(c echo.Context, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return errInvalidJSON
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errInvalidJSON
	}
	return nil
}

// writeServiceError maps service errors onto the public error contract.
func writeServiceError(c echo.Context, err error) error {
	var missing *domain.MissingFieldError
	if errors.As(err, &missing) {
		return c.JSON(http.StatusBadRequest, APIError{Error: "missing_field", Field: missing.Field})
	}
	logger.Error("recommendation request failed", "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, APIError{Error: "internal_error"})
}
