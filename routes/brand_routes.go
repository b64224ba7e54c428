package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/menuqr_backend/controllers"
)

// RegisterBrandRoutes sets up brand onboarding and brand-scoped ad routes
func RegisterBrandRoutes(e *echo.Echo, brandController *controllers.BrandController) {
	brands := e.Group("/api/brands")

	brands.POST("", brandController.OnboardBrand)
	brands.GET("", brandController.GetAllBrands)
	brands.GET("/search/:name", brandController.SearchBrand)

	brands.POST("/:id/ads", brandController.AddAdToBrand)
	brands.GET("/:id/ads", brandController.GetBrandAds)
}
