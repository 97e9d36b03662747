package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cartCompanion/business/bandit"
	"cartCompanion/business/ranker"
	"cartCompanion/business/retrain"
	"cartCompanion/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	// ModelStore loads and persists model files.
	ModelStore interface {
		Load(path string) (*ranker.LogisticModel, error)
		Save(m *ranker.LogisticModel, path string) error
	}

	// ModelSwapper is the engine side of a hot reload.
	ModelSwapper interface {
		SwapModel(m *ranker.LogisticModel) error
		Bandit() *bandit.UCB
	}

	// Retrainer fits a model from the feedback log.
	Retrainer interface {
		Run(ctx context.Context) (*retrain.Result, error)
	}

	AdminHandler struct {
		engine     ModelSwapper
		models     ModelStore
		retrainer  Retrainer
		stateStore bandit.StateStore
		stateKey   string
		modelPath  string
		timeout    time.Duration
	}

	reloadRequest struct {
		Path string `json:"path"`
	}

	modelSummary struct {
		Path string  `json:"path"`
		Dim  int     `json:"dim"`
		Bias float64 `json:"bias"`
	}

	retrainSummary struct {
		modelSummary
		Fetched   int  `json:"fetched"`
		Used      int  `json:"used"`
		Positives int  `json:"positives"`
		Negatives int  `json:"negatives"`
		Saved     bool `json:"saved"`
	}
)

// NewAdminHandler wires the operational endpoints. retrainer and stateStore may be nil.
func NewAdminHandler(engine ModelSwapper, models ModelStore, retrainer Retrainer, stateStore bandit.StateStore, modelPath string) *AdminHandler {
	return &AdminHandler{
		engine:     engine,
		models:     models,
		retrainer:  retrainer,
		stateStore: stateStore,
		stateKey:   bandit.DefaultStateKey,
		modelPath:  modelPath,
		timeout:    2 * time.Minute,
	}
}

// POST /api/v1/admin/model/reload
// body (optional): { "path": "artifacts/model.json" }
func (h *AdminHandler) ReloadModel(c echo.Context) error {
	var body reloadRequest
	if err := decodeJSON(c, &body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid body"})
	}
	path := body.Path
	if path == "" {
		path = h.modelPath
	}

	m, err := h.models.Load(path)
	if err != nil {
		logger.Warn("model reload failed", "path", path, "error", err)
		return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: err.Error()})
	}
	if err := h.engine.SwapModel(m); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: err.Error()})
	}

	logger.Info("model reloaded", "path", path)
	return c.JSON(http.StatusOK, fres.Response.StatusOK(modelSummary{Path: path, Dim: len(m.Weights), Bias: m.Bias}))
}

// POST /api/v1/admin/model/retrain
// Fits a model on the feedback log, swaps it in and writes it to the model path.
func (h *AdminHandler) RetrainModel(c echo.Context) error {
	if h.retrainer == nil {
		return c.JSON(http.StatusServiceUnavailable, ResponseError{Message: "retraining is not configured"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res, err := h.retrainer.Run(ctx)
	if err != nil {
		if errors.Is(err, retrain.ErrNotEnoughRows) {
			return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
		}
		logger.Error("retrain failed", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if err := h.engine.SwapModel(res.Model); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: err.Error()})
	}

	saved := true
	if err := h.models.Save(res.Model, h.modelPath); err != nil {
		saved = false
		logger.Warn("retrained model not persisted", "path", h.modelPath, "error", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(retrainSummary{
		modelSummary: modelSummary{Path: h.modelPath, Dim: len(res.Model.Weights), Bias: res.Model.Bias},
		Fetched:      res.Fetched,
		Used:         res.Used,
		Positives:    res.Positives,
		Negatives:    res.Negatives,
		Saved:        saved,
	}))
}

// GET /api/v1/admin/bandit/state
func (h *AdminHandler) GetBanditState(c echo.Context) error {
	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.engine.Bandit().Snapshot()))
}

// POST /api/v1/admin/bandit/snapshot
func (h *AdminHandler) SnapshotBandit(c echo.Context) error {
	if h.stateStore == nil {
		return c.JSON(http.StatusServiceUnavailable, ResponseError{Message: "bandit state store is not configured"})
	}
	if err := bandit.SaveFrom(c.Request().Context(), h.stateStore, h.stateKey, h.engine.Bandit()); err != nil {
		logger.Error("bandit snapshot failed", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("bandit state saved"))
}
