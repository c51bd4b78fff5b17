package ws

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"travelbot/internal/domain"
	"travelbot/internal/utils"
)

const msgChatFailed = "Something went wrong while answering. Please try again."

// Client is one websocket connection bound to a session.
type Client struct {
	ID      string
	Session domain.Session

	hub  *Hub
	conn *websocket.Conn

	send     chan []byte
	quit     chan struct{}
	quitOnce sync.Once
}

// enqueue queues msg without blocking; false means the client is gone or
// too slow to keep up.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case <-c.quit:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// deliver queues msg, waiting up to writeWait for room in the buffer.
func (c *Client) deliver(ctx context.Context, msg []byte) bool {
	select {
	case <-c.quit:
		return false
	default:
	}
	timer := time.NewTimer(writeWait)
	defer timer.Stop()
	select {
	case c.send <- msg:
		return true
	case <-c.quit:
	case <-ctx.Done():
	case <-timer.C:
		utils.Logger().Warn("ws client too slow, dropping reply", zap.String("client_id", c.ID))
	}
	return false
}

func (c *Client) close() {
	c.quitOnce.Do(func() { close(c.quit) })
}

func encodeFrame(f Frame) ([]byte, bool) {
	msg, err := json.Marshal(f)
	if err != nil {
		utils.Logger().Warn("ws frame encode failed", zap.String("type", f.Type), zap.Error(err))
		return nil, false
	}
	return msg, true
}

func (c *Client) sendFrame(f Frame) bool {
	msg, ok := encodeFrame(f)
	return ok && c.enqueue(msg)
}

func (c *Client) reply(ctx context.Context, f Frame) bool {
	msg, ok := encodeFrame(f)
	return ok && c.deliver(ctx, msg)
}

func (c *Client) readPump(ctx context.Context, respond Responder) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				utils.Logger().Warn("ws read failed", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}

		var in Inbound
		if err := json.Unmarshal(raw, &in); err != nil {
			in = Inbound{Type: "message", Text: string(raw)}
		}
		switch in.Type {
		case "ping":
			c.sendFrame(Frame{Type: FramePong})
		case "message", "":
			c.answer(ctx, respond, in.Text)
		}
	}
}

// answer streams the reply one word per frame, then the analysis.
func (c *Client) answer(ctx context.Context, respond Responder, text string) {
	reply, data, err := respond(ctx, c.Session, text)
	if err != nil {
		c.reply(ctx, Frame{Type: FrameError, Error: userMessage(err)})
		return
	}
	for _, word := range strings.Fields(reply) {
		if !c.reply(ctx, Frame{Type: FrameToken, Text: word}) {
			return
		}
		if c.hub.WordDelay > 0 {
			select {
			case <-time.After(c.hub.WordDelay):
			case <-ctx.Done():
				return
			}
		}
	}
	c.reply(ctx, Frame{Type: FrameAnalysis, Text: reply, Data: data})
}

func userMessage(err error) string {
	switch {
	case domain.IsValidation(err), domain.IsNotFound(err), domain.IsConflict(err), domain.IsUpstream(err):
		return err.Error()
	}
	utils.Logger().Error("ws chat failed", zap.Error(err))
	return msgChatFailed
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.quit:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
