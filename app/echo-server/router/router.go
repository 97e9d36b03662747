package router

import (
	"cartCompanion/internal/middleware"
	"cartCompanion/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetHealthRoutes(e *echo.Echo, handler *rest.RecommendHandler) {
	e.GET("/health", handler.Health)
}

func SetRecommendRoutes(api *echo.Group, handler *rest.RecommendHandler, adminSecret string) {
	api.POST("/recommend", handler.Recommend)
	api.POST("/feedback/accept", handler.Accept)
	api.POST("/recommend/debug", handler.Debug, middleware.AuthMiddleware(adminSecret), middleware.AdminOnly())
}

func SetAdminRoutes(api *echo.Group, handler *rest.AdminHandler, adminSecret string) {
	admin := api.Group("/admin", middleware.AuthMiddleware(adminSecret), middleware.AdminOnly())

	admin.POST("/model/reload", handler.ReloadModel)
	admin.POST("/model/retrain", handler.RetrainModel)
	admin.GET("/bandit/state", handler.GetBanditState)
	admin.POST("/bandit/snapshot", handler.SnapshotBandit)
}
