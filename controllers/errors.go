package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/menuqr_backend/models"
	"github.com/HSouheill/menuqr_backend/repositories"
	"github.com/HSouheill/menuqr_backend/services"
)

// fail maps core errors onto the response envelope. Lookup failures name the
// missing entity; anything unrecognized is treated as an upstream failure.
func fail(c echo.Context, err error) error {
	status := http.StatusBadGateway
	message := "Upstream unavailable"

	switch {
	case errors.Is(err, repositories.ErrRestaurantNotFound),
		errors.Is(err, repositories.ErrBrandNotFound),
		errors.Is(err, repositories.ErrAdNotFound),
		errors.Is(err, services.ErrMenuNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrIndexOutOfRange),
		errors.Is(err, services.ErrNoAdsAvailable),
		errors.Is(err, services.ErrArtifactMissing):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrInvalidAd):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, repositories.ErrConflict),
		errors.Is(err, repositories.ErrServeConflict):
		status = http.StatusConflict
		message = err.Error()
	}

	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
	})
}
