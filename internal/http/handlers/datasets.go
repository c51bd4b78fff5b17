package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelbot/internal/http/middleware"
	"travelbot/internal/services"
)

// GET /api/datasets/flights?origin=&destination=&from=&to=
func (a *App) SearchFlights(c *gin.Context) {
	var in services.SearchInput
	if !BindQueryOrError(c, &in) {
		return
	}
	res, err := a.searchService(c).Flights(c.Request.Context(), middleware.SessionFrom(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/datasets/hotels?city=&from=&to=
func (a *App) SearchHotels(c *gin.Context) {
	var in services.SearchInput
	if !BindQueryOrError(c, &in) {
		return
	}
	res, err := a.searchService(c).Hotels(c.Request.Context(), middleware.SessionFrom(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/datasets/cars?city=&from=&to=
func (a *App) SearchCars(c *gin.Context) {
	var in services.SearchInput
	if !BindQueryOrError(c, &in) {
		return
	}
	res, err := a.searchService(c).CarRentals(c.Request.Context(), middleware.SessionFrom(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/datasets/advisories?city=
func (a *App) SearchAdvisories(c *gin.Context) {
	var in services.SearchInput
	if !BindQueryOrError(c, &in) {
		return
	}
	res, err := a.searchService(c).Advisories(c.Request.Context(), middleware.SessionFrom(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
