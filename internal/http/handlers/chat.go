package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelbot/internal/http/middleware"
	"travelbot/internal/services"
)

type analyzeRequest struct {
	Query string `json:"query"`
}

// POST /api/chat/analyze
func (a *App) Analyze(c *gin.Context) {
	var req analyzeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := a.chatService(c).Analyze(c.Request.Context(), middleware.SessionFrom(c), req.Query)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/chat/examples?service=Hotel
func (a *App) Examples(c *gin.Context) {
	service := c.Query("service")
	if service == "" {
		c.JSON(http.StatusOK, gin.H{"services": services.ExampleServices})
		return
	}
	examples, err := a.chatService(c).Examples(service)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": service, "examples": examples})
}
