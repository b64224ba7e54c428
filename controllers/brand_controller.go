package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/menuqr_backend/models"
	"github.com/HSouheill/menuqr_backend/repositories"
	"github.com/HSouheill/menuqr_backend/services"
)

type BrandController struct {
	brands   *repositories.BrandRepository
	ads      *repositories.AdRepository
	rotation *services.RotationService
}

func NewBrandController(brands *repositories.BrandRepository, ads *repositories.AdRepository, rotation *services.RotationService) *BrandController {
	return &BrandController{brands: brands, ads: ads, rotation: rotation}
}

// OnboardBrand creates a new brand (POST /api/brands)
func (bc *BrandController) OnboardBrand(c echo.Context) error {
	var req models.BrandRequest
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

	brand := models.Brand{
		BrandName: req.BrandName,
		Metadata:  req.Metadata,
		CreatedAt: time.Now().UTC(),
	}
	id, err := bc.brands.Insert(c.Request().Context(), brand)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Brand onboarded successfully",
		Data:    map[string]string{"brandId": id.Hex()},
	})
}

// GetAllBrands lists every brand (GET /api/brands)
func (bc *BrandController) GetAllBrands(c echo.Context) error {
	brands, err := bc.brands.All(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.BrandsResponse{
		Status:  http.StatusOK,
		Message: "List of brands",
		Data:    brands,
	})
}

// SearchBrand matches brand names case-insensitively
// (GET /api/brands/search/:name)
func (bc *BrandController) SearchBrand(c echo.Context) error {
	brands, err := bc.brands.SearchByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return fail(c, err)
	}
	if len(brands) == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No brands found",
		})
	}
	return c.JSON(http.StatusOK, models.BrandsResponse{
		Status:  http.StatusOK,
		Message: "Matching brands",
		Data:    brands,
	})
}

// AddAdToBrand attaches a new ad to a brand (POST /api/brands/:id/ads)
func (bc *BrandController) AddAdToBrand(c echo.Context) error {
	brandID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid brand ID",
		})
	}

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

	ctx := c.Request().Context()
	if _, err := bc.brands.Get(ctx, brandID); err != nil {
		return fail(c, err)
	}

	ad, err := bc.rotation.OnboardAd(ctx, req, &brandID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, models.AdResponse{
		Status:  http.StatusOK,
		Message: "Ad added successfully",
		Data:    ad,
	})
}

// GetBrandAds lists a brand's non-expired ads (GET /api/brands/:id/ads)
func (bc *BrandController) GetBrandAds(c echo.Context) error {
	brandID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid brand ID",
		})
	}

	ctx := c.Request().Context()
	if _, err := bc.brands.Get(ctx, brandID); err != nil {
		return fail(c, err)
	}

	ads, err := bc.ads.ByBrand(ctx, brandID)
	if err != nil {
		return fail(c, err)
	}
	if len(ads) == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No ads found or all ads expired",
		})
	}
	return c.JSON(http.StatusOK, models.AdsResponse{
		Status:  http.StatusOK,
		Message: "List of brand ads",
		Data:    ads,
	})
}
