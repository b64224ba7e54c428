package controllers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/menuqr_backend/models"
	"github.com/HSouheill/menuqr_backend/repositories"
	"github.com/HSouheill/menuqr_backend/services"
)

type AdsController struct {
	ads      *repositories.AdRepository
	rotation *services.RotationService
}

func NewAdsController(ads *repositories.AdRepository, rotation *services.RotationService) *AdsController {
	return &AdsController{ads: ads, rotation: rotation}
}

// OnboardAd creates a global ad (POST /api/ads)
func (ac *AdsController) OnboardAd(c echo.Context) error {
	var req models.AdRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request format",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ad, err := ac.rotation.OnboardAd(c.Request().Context(), req, nil)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, models.AdResponse{
		Status:  http.StatusOK,
		Message: "Ad added successfully",
		Data:    ad,
	})
}

// GetAds fetches all ads for the management surface (GET /api/ads)
func (ac *AdsController) GetAds(c echo.Context) error {
	ads, err := ac.ads.All(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.AdsResponse{
		Status:  http.StatusOK,
		Message: "List of ads",
		Data:    ads,
	})
}

// CleanupAds sweeps expired ads and reports the count removed
// (POST /api/ads/cleanup). The same sweep also runs on a background ticker;
// this endpoint exists for operational use.
func (ac *AdsController) CleanupAds(c echo.Context) error {
	deleted, err := ac.rotation.ExpireAds(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: fmt.Sprintf("Removed %d expired ads", deleted),
		Data:    map[string]int64{"deleted": deleted},
	})
}
