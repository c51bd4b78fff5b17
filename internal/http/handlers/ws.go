package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travelbot/internal/domain"
	"travelbot/internal/http/middleware"
	"travelbot/internal/utils"
)

// GET /ws/chat streams chat replies over a websocket.
func (a *App) ChatSocket(c *gin.Context) {
	if a.Hub == nil {
		RespondError(c, http.StatusServiceUnavailable, "chat stream is not available", nil)
		return
	}
	chat := a.chatService(c)
	respond := func(ctx context.Context, sess domain.Session, text string) (string, any, error) {
		res, err := chat.Analyze(ctx, sess, text)
		if err != nil {
			return "", nil, err
		}
		return res.Reply, res, nil
	}
	if err := a.Hub.Serve(c.Writer, c.Request, middleware.SessionFrom(c), respond); err != nil {
		utils.Logger().Warn("websocket upgrade failed", zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
	}
}
