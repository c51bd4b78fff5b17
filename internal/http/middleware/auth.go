package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"travelbot/internal/domain"
)

const sessionKey = "session"

// TokenParser turns a bearer token into the session it carries.
type TokenParser interface {
	ParseToken(raw string) (domain.Session, error)
}

// Auth resolves the session from "Authorization: Bearer <token>" or the
// token query parameter (browsers cannot set headers on websocket
// upgrades). Requests without a token continue anonymously; a bad token
// is rejected.
func Auth(p TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.Next()
			return
		}
		sess, err := p.ParseToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "Your session has expired. Please log in again.",
				"code":       "unauthorized",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(c.Query("token"))
}

// SessionFrom returns the request's session; the zero Session when
// anonymous.
func SessionFrom(c *gin.Context) domain.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(domain.Session); ok {
			return s
		}
	}
	return domain.Session{}
}
