package realtime

import (
	"github.com/gofiber/contrib/v3/websocket"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/models"
)

// RequireUpgrade rejects plain HTTP requests to a websocket route
func RequireUpgrade(c fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler streams analytics frames, starting with the current snapshot
func Handler(h *Hub, snapshot func() models.AnalyticsRecord) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		frames, cancel := h.Subscribe()
		defer cancel()

		if initial, err := Encode(snapshot()); err == nil {
			if err := conn.WriteMessage(websocket.TextMessage, initial); err != nil {
				return
			}
		}

		// Reading detects the peer going away; client frames are ignored
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-gone:
				return
			case frame, ok := <-frames:
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					h.log.Debug("websocket write failed", zap.Error(err))
					return
				}
			}
		}
	})
}
