package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelbot/internal/http/middleware"
	"travelbot/internal/services"
)

// POST /api/auth/signup
func (a *App) Signup(c *gin.Context) {
	var in services.SignupInput
	if !BindJSONOrError(c, &in) {
		return
	}
	res, err := a.authService(c).Signup(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /api/auth/login
func (a *App) Login(c *gin.Context) {
	var in services.LoginInput
	if !BindJSONOrError(c, &in) {
		return
	}
	res, err := a.authService(c).Login(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/auth/me
func (a *App) Me(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess.Anonymous() {
		respondError(c, http.StatusUnauthorized, "unauthorized", "Please log in to continue.", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":  sess,
		"greeting": "Welcome, " + sess.Name + "!",
	})
}
