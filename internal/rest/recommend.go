package rest

import (
	"context"
	"net/http"

	"cartCompanion/domain"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	RecommendHandler struct {
		recommendService RecommendService
	}

	RecommendService interface {
		Recommend(ctx context.Context, req domain.RecommendationRequest) (domain.RecommendationResponse, error)
		Explain(ctx context.Context, req domain.RecommendationRequest) ([]domain.DebugRecommendation, error)
		Accept(ctx context.Context, req domain.AcceptRequest) error
	}
)

func NewRecommendHandler(svc RecommendService) *RecommendHandler {
	return &RecommendHandler{recommendService: svc}
}

// GET /health
func (h *RecommendHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// POST /api/v1/recommend
func (h *RecommendHandler) Recommend(c echo.Context) error {
	var req domain.RecommendationRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Error: "invalid_json"})
	}

	resp, err := h.recommendService.Recommend(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// POST /api/v1/feedback/accept
func (h *RecommendHandler) Accept(c echo.Context) error {
	var req domain.AcceptRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Error: "invalid_json"})
	}

	if err := h.recommendService.Accept(c.Request().Context(), req); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// POST /api/v1/recommend/debug
func (h *RecommendHandler) Debug(c echo.Context) error {
	var req domain.RecommendationRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Error: "invalid_json"})
	}

	recs, err := h.recommendService.Explain(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}
