package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/menuqr_backend/models"
	"github.com/HSouheill/menuqr_backend/services"
)

// MenuController drives the render pipeline: pick the next ad, produce the
// menu PDF, produce the QR code linking to it, and serve both artifacts.
type MenuController struct {
	menus    *services.MenuService
	rotation *services.RotationService
	render   *services.RenderService
}

func NewMenuController(menus *services.MenuService, rotation *services.RotationService, render *services.RenderService) *MenuController {
	return &MenuController{menus: menus, rotation: rotation, render: render}
}

// GenerateMenuQR renders the menu PDF with the next rotated ad and a QR code
// pointing at its download URL
// (GET /api/restaurants/:id/menus/:menuId/generate-qr)
func (mc *MenuController) GenerateMenuQR(c echo.Context) error {
	id, err := restaurantID(c)
	if err != nil {
		return invalidID(c, "restaurant")
	}
	menuID := c.Param("menuId")

	ctx := c.Request().Context()
	menu, err := mc.menus.Menu(ctx, id, menuID)
	if err != nil {
		return fail(c, err)
	}

	// Optional brand scoping for the ad slot; default is the global pool
	var brandID *primitive.ObjectID
	if raw := c.QueryParam("brandId"); raw != "" {
		parsed, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return invalidID(c, "brand")
		}
		brandID = &parsed
	}

	// Ads are auxiliary: an empty pool degrades to an ad-free menu, but a
	// store failure fails the render.
	ad, err := mc.rotation.NextAd(ctx, brandID)
	if err != nil {
		if !errors.Is(err, services.ErrNoAdsAvailable) {
			return fail(c, err)
		}
		log.Printf("No ads available for menu %s, rendering without ad", menuID)
		ad = nil
	}

	if err := mc.render.GenerateMenuPDF(menu, ad); err != nil {
		return fail(c, err)
	}

	pdfURL := mc.render.PDFURL(menuID)
	if err := mc.render.GenerateQRCode(pdfURL, menuID); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "QR Code and PDF generated",
		Data: map[string]string{
			"pdfUrl":    pdfURL,
			"qrCodeUrl": mc.render.QRURL(menuID),
		},
	})
}

// DownloadPDF serves a previously generated menu PDF
// (GET /api/menus/:menuId/download-pdf)
func (mc *MenuController) DownloadPDF(c echo.Context) error {
	path, err := mc.render.ArtifactFile(mc.render.PDFPath(c.Param("menuId")))
	if err != nil {
		return fail(c, err)
	}
	return c.File(path)
}

// DownloadQR serves a previously generated QR code
// (GET /api/menus/:menuId/download-qr)
func (mc *MenuController) DownloadQR(c echo.Context) error {
	path, err := mc.render.ArtifactFile(mc.render.QRPath(c.Param("menuId")))
	if err != nil {
		return fail(c, err)
	}
	return c.File(path)
}
