package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelbot/internal/services"
)

// GET /api/alerts/flights?source=&destination=&date=
func (a *App) FlightAlerts(c *gin.Context) {
	var in services.FlightAlertInput
	if !BindQueryOrError(c, &in) {
		return
	}
	res, err := a.alertService(c).FlightUpdates(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/support
func (a *App) Support(c *gin.Context) {
	c.JSON(http.StatusOK, a.alertService(c).Support())
}

// GET /api/support/faq?q=
func (a *App) SupportFAQ(c *gin.Context) {
	faqs, err := a.alertService(c).SearchFAQ(c.Query("q"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": c.Query("q"), "faqs": faqs, "count": len(faqs)})
}
