package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/menuqr_backend/controllers"
)

// RegisterMenuRoutes sets up artifact download routes addressable by menu id
// alone, so a QR scan works without knowing the restaurant
func RegisterMenuRoutes(e *echo.Echo, menuController *controllers.MenuController) {
	menus := e.Group("/api/menus")

	menus.GET("/:menuId/download-pdf", menuController.DownloadPDF)
	menus.GET("/:menuId/download-qr", menuController.DownloadQR)
}
