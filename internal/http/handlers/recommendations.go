package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelbot/internal/http/middleware"
)

// GET /api/recommendations
func (a *App) Recommendations(c *gin.Context) {
	res, err := a.recommendationService(c).For(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
