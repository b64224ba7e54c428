package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/menuqr_backend/models"
	"github.com/HSouheill/menuqr_backend/services"
)

type DishController struct {
	menus *services.MenuService
}

func NewDishController(menus *services.MenuService) *DishController {
	return &DishController{menus: menus}
}

func (dc *DishController) bindDish(c echo.Context) (*models.DishRequest, error) {
	var req models.DishRequest
	if err := c.Bind(&req); err != nil {
		return nil, c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request format",
		})
	}
	if err := c.Validate(&req); err != nil {
		return nil, c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}
	return &req, nil
}

// AddDish appends a dish to a named category
// (POST /api/restaurants/:id/menus/:menuId/categories/:name/dishes)
func (dc *DishController) AddDish(c echo.Context) error {
	id, err := restaurantID(c)
	if err != nil {
		return invalidID(c, "restaurant")
	}
	req, errResp := dc.bindDish(c)
	if req == nil {
		return errResp
	}

	dish := models.Dish{Name: req.Name, Price: req.Price}
	if err := dc.menus.AddDish(c.Request().Context(), id, c.Param("menuId"), c.Param("name"), dish); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dish added successfully",
		Data:    dish,
	})
}

// UpdateDish replaces the dish at a position
// (PUT /api/restaurants/:id/menus/:menuId/categories/:name/dishes/:dishIndex)
func (dc *DishController) UpdateDish(c echo.Context) error {
	id, err := restaurantID(c)
	if err != nil {
		return invalidID(c, "restaurant")
	}
	index, err := strconv.Atoi(c.Param("dishIndex"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid dish index",
		})
	}
	req, errResp := dc.bindDish(c)
	if req == nil {
		return errResp
	}

	dish := models.Dish{Name: req.Name, Price: req.Price}
	if err := dc.menus.UpdateDish(c.Request().Context(), id, c.Param("menuId"), c.Param("name"), index, dish); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dish updated successfully",
	})
}

// DeleteDish removes the dish at a position
// (DELETE /api/restaurants/:id/menus/:menuId/categories/:name/dishes/:dishIndex)
func (dc *DishController) DeleteDish(c echo.Context) error {
	id, err := restaurantID(c)
	if err != nil {
		return invalidID(c, "restaurant")
	}
	index, err := strconv.Atoi(c.Param("dishIndex"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid dish index",
		})
	}

	if err := dc.menus.DeleteDish(c.Request().Context(), id, c.Param("menuId"), c.Param("name"), index); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dish deleted successfully",
	})
}
