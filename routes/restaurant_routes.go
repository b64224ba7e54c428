package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/menuqr_backend/controllers"
)

// RegisterRestaurantRoutes sets up restaurant, menu, category and dish routes
func RegisterRestaurantRoutes(e *echo.Echo, restaurantController *controllers.RestaurantController, dishController *controllers.DishController, menuController *controllers.MenuController) {
	restaurants := e.Group("/api/restaurants")

	restaurants.POST("", restaurantController.CreateRestaurant)
	restaurants.GET("", restaurantController.GetRestaurants)
	restaurants.GET("/:id", restaurantController.GetRestaurant)

	restaurants.POST("/:id/menus", restaurantController.CreateMenu)
	restaurants.GET("/:id/menus", restaurantController.GetMenus)
	restaurants.PUT("/:id/menus/:menuId", restaurantController.RenameMenu)
	restaurants.GET("/:id/menus/:menuId/generate-qr", menuController.GenerateMenuQR)

	restaurants.POST("/:id/menus/:menuId/categories", restaurantController.AddCategory)
	restaurants.PUT("/:id/menus/:menuId/categories/:index", restaurantController.UpdateCategory)
	restaurants.DELETE("/:id/menus/:menuId/categories/:index", restaurantController.DeleteCategory)

	restaurants.POST("/:id/menus/:menuId/categories/:name/dishes", dishController.AddDish)
	restaurants.PUT("/:id/menus/:menuId/categories/:name/dishes/:dishIndex", dishController.UpdateDish)
	restaurants.DELETE("/:id/menus/:menuId/categories/:name/dishes/:dishIndex", dishController.DeleteDish)
}
