package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelbot/internal/services"
)

// GET /api/live/flights
func (a *App) LiveFlights(c *gin.Context) {
	var in services.LiveFlightInput
	if !BindQueryOrError(c, &in) {
		return
	}
	res, err := a.liveService(c).Flights(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/live/hotels?city=
func (a *App) LiveHotels(c *gin.Context) {
	res, err := a.liveService(c).Hotels(c.Request.Context(), c.Query("city"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/live/hotels/:id
func (a *App) LiveHotel(c *gin.Context) {
	res, err := a.liveService(c).Hotel(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/live/cars?city=
func (a *App) LiveCars(c *gin.Context) {
	res, err := a.liveService(c).Cars(c.Request.Context(), c.Query("city"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
