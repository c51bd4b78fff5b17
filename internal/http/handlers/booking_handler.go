package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"travelbot/internal/http/middleware"
	"travelbot/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GET /api/bookings?canceled=true
func (a *App) BookingHistory(c *gin.Context) {
	canceled := false
	if raw := c.Query("canceled"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "canceled must be true or false", nil)
			return
		}
		canceled = v
	}
	res, err := a.bookingService(c).History(c.Request.Context(), middleware.SessionFrom(c), canceled)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/bookings/cancelable
func (a *App) CancelableBookings(c *gin.Context) {
	res, err := a.bookingService(c).Cancelable(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/bookings/flight
func (a *App) BookFlight(c *gin.Context) {
	var in services.FlightBookingInput
	if !BindJSONOrError(c, &in) {
		return
	}
	res, err := a.bookingService(c).BookFlight(c.Request.Context(), middleware.SessionFrom(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /api/bookings/hotel
func (a *App) BookHotel(c *gin.Context) {
	var in services.HotelBookingInput
	if !BindJSONOrError(c, &in) {
		return
	}
	res, err := a.bookingService(c).BookHotel(c.Request.Context(), middleware.SessionFrom(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /api/bookings/car
func (a *App) BookCar(c *gin.Context) {
	var in services.CarBookingInput
	if !BindJSONOrError(c, &in) {
		return
	}
	res, err := a.bookingService(c).BookCar(c.Request.Context(), middleware.SessionFrom(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /api/bookings/:id/cancel
func (a *App) CancelBooking(c *gin.Context) {
	msg, err := a.bookingService(c).Cancel(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking_id": c.Param("id"), "message": msg})
}

// GET /api/bookings/export
func (a *App) ExportBookings(c *gin.Context) {
	data, filename, err := a.bookingService(c).Export(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	attachment(c, xlsxContentType, filename, data)
}
