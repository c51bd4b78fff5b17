package handlers

import (
	"github.com/gin-gonic/gin"

	"travelbot/internal/http/middleware"
)

// GET /api/bookings/:id/receipt
func (a *App) BookingReceipt(c *gin.Context) {
	data, filename, err := a.docsService(c).GenerateReceipt(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	attachment(c, "application/pdf", filename, data)
}
