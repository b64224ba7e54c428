package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/menuqr_backend/controllers"
)

// RegisterAdRoutes sets up global ad management routes
func RegisterAdRoutes(e *echo.Echo, adsController *controllers.AdsController) {
	ads := e.Group("/api/ads")

	ads.POST("", adsController.OnboardAd)
	ads.GET("", adsController.GetAds)
	ads.POST("/cleanup", adsController.CleanupAds)
}
