package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/menuqr_backend/models"
	"github.com/HSouheill/menuqr_backend/repositories"
	"github.com/HSouheill/menuqr_backend/services"
)

type RestaurantController struct {
	restaurants *repositories.RestaurantRepository
	menus       *services.MenuService
}

func NewRestaurantController(restaurants *repositories.RestaurantRepository, menus *services.MenuService) *RestaurantController {
	return &RestaurantController{restaurants: restaurants, menus: menus}
}

func restaurantID(c echo.Context) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Param("id"))
}

func invalidID(c echo.Context, entity string) error {
	return c.JSON(http.StatusBadRequest, models.Response{
		Status:  http.StatusBadRequest,
		Message: "Invalid " + entity + " ID",
	})
}

// CreateRestaurant creates a restaurant with an empty menu tree
// (POST /api/restaurants)
func (rc *RestaurantController) CreateRestaurant(c echo.Context) error {
	var req models.RestaurantRequest
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

	restaurant := models.Restaurant{
		Name:     req.Name,
		Location: req.Location,
		Menus:    []models.Menu{},
	}
	id, err := rc.restaurants.Insert(c.Request().Context(), restaurant)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Restaurant created successfully",
		Data:    map[string]string{"id": id.Hex()},
	})
}

// GetRestaurants lists all restaurants (GET /api/restaurants)
func (rc *RestaurantController) GetRestaurants(c echo.Context) error {
	restaurants, err := rc.restaurants.All(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "List of restaurants",
		Data:    restaurants,
	})
}

// GetRestaurant returns one restaurant with its full menu tree
// (GET /api/restaurants/:id)
func (rc *RestaurantController) GetRestaurant(c echo.Context) error {
	id, err := restaurantID(c)
	if err != nil {
		return invalidID(c, "restaurant")
	}
	restaurant, err := rc.restaurants.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Restaurant found",
		Data:    restaurant,
	})
}

// CreateMenu adds a menu to a restaurant (POST /api/restaurants/:id/menus)
func (rc *RestaurantController) CreateMenu(c echo.Context) error {
	id, err := restaurantID(c)
	if err != nil {
		return invalidID(c, "restaurant")
	}

	var req models.MenuRequest
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

	menu, err := rc.menus.AddMenu(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Menu added successfully",
		Data:    map[string]string{"menuId": menu.ID},
	})
}

// GetMenus lists a restaurant's menus (GET /api/restaurants/:id/menus)
func (rc *RestaurantController) GetMenus(c echo.Context) error {
	id, err := restaurantID(c)
	if err != nil {
		return invalidID(c, "restaurant")
	}
	menus, err := rc.menus.Menus(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "List of menus",
		Data:    menus,
	})
}

// RenameMenu updates a menu's name and welcome text
// (PUT /api/restaurants/:id/menus/:menuId)
func (rc *RestaurantController) RenameMenu(c echo.Context) error {
	id, err := restaurantID(c)
	if err != nil {
		return invalidID(c, "restaurant")
	}

	var req models.MenuRequest
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

	if err := rc.menus.RenameMenu(c.Request().Context(), id, c.Param("menuId"), req); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Menu updated successfully",
	})
}

// AddCategory appends a category to a menu
// (POST /api/restaurants/:id/menus/:menuId/categories)
func (rc *RestaurantController) AddCategory(c echo.Context) error {
	id, err := restaurantID(c)
	if err != nil {
		return invalidID(c, "restaurant")
	}

	var req models.CategoryRequest
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

	category := models.Category{Name: req.Name, Dishes: []models.Dish{}}
	if err := rc.menus.AddCategory(c.Request().Context(), id, c.Param("menuId"), category); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Category added successfully",
	})
}

// UpdateCategory renames the category at a position
// (PUT /api/restaurants/:id/menus/:menuId/categories/:index)
func (rc *RestaurantController) UpdateCategory(c echo.Context) error {
	id, err := restaurantID(c)
	if err != nil {
		return invalidID(c, "restaurant")
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid category index",
		})
	}

	var req models.CategoryRequest
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

	if err := rc.menus.UpdateCategory(c.Request().Context(), id, c.Param("menuId"), index, req.Name); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Category updated successfully",
	})
}

// DeleteCategory removes the category at a position
// (DELETE /api/restaurants/:id/menus/:menuId/categories/:index)
func (rc *RestaurantController) DeleteCategory(c echo.Context) error {
	id, err := restaurantID(c)
	if err != nil {
		return invalidID(c, "restaurant")
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid category index",
		})
	}

	if err := rc.menus.DeleteCategory(c.Request().Context(), id, c.Param("menuId"), index); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Category deleted successfully",
	})
}
