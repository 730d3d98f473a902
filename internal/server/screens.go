package server

import (
	"context"
	"log/slog"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/editorimages/internal/hub"
)

const feedBuffer = 32

// feedClient connects one websocket to the screens hub.
type feedClient struct {
	conn       *websocket.Conn
	hub        *hub.Hub
	subscriber *hub.Subscriber
}

// handleScreens streams ScreenChanged payloads as JSON text frames.
func (s *Server) handleScreens(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		// The feed is meant for a UI shell on the same machine.
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
	})
	if err != nil {
		slog.Error("Failed to upgrade screens WebSocket", "error", err)
		return err
	}

	client := &feedClient{conn: conn, hub: s.deps.Screens, subscriber: hub.NewSubscriber(feedBuffer)}
	ctx := c.Request().Context()
	select {
	case client.hub.Register <- client.subscriber:
	case <-ctx.Done():
		conn.Close(websocket.StatusGoingAway, "")
		return nil
	}

	go client.writePump(ctx)
	client.readPump(ctx)
	return nil
}

// readPump drains the connection until the client goes away. The feed is
// one-way, so incoming messages are ignored.
func (c *feedClient) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.Unregister <- c.subscriber:
		case <-ctx.Done():
		}
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				slog.Debug("Screens WebSocket closed normally")
			} else {
				slog.Debug("Screens readPump ended", "error", err)
			}
			return
		}
	}
}

func (c *feedClient) writePump(ctx context.Context) {
	for message := range c.subscriber.Send {
		if err := c.conn.Write(ctx, websocket.MessageText, message); err != nil {
			slog.Debug("Screens writePump error", "error", err)
			return
		}
	}
	c.conn.Close(websocket.StatusNormalClosure, "")
}
