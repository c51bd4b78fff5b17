package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travelbot/internal/domain"
	"travelbot/internal/http/middleware"
	"travelbot/internal/utils"
)

const msgInternal = "Something went wrong. Please try again later."

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsUpstream(err):
		utils.Logger().Warn("upstream failure", zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
		respondError(c, http.StatusBadGateway, "upstream_error", err.Error(), nil)
	default:
		_ = c.Error(err)
		utils.Logger().Error("request failed", zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal_error", msgInternal, nil)
	}
}
