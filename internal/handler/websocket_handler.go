package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/service"
)

// StreamWSHandler handles WebSocket connections on /ws. The channel is
// server→client push only: inbound frames are drained and discarded, they
// only drive disconnect detection.
type StreamWSHandler struct {
	hub    *service.Hub
	logger *zap.Logger
}

// NewStreamWSHandler creates the WebSocket stream handler.
func NewStreamWSHandler(hub *service.Hub, logger *zap.Logger) *StreamWSHandler {
	return &StreamWSHandler{hub: hub, logger: logger}
}

// ServeWS upgrades the request and runs the subscriber until disconnect.
func (h *StreamWSHandler) ServeWS(c *gin.Context) {
	conn, err := h.hub.Upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub, cleanup := h.hub.Register(conn)
	defer cleanup()

	// Writer goroutine: drain the subscriber queue onto the connection.
	go h.writePump(sub)

	// Reader: discard inbound frames; a read error means the peer is gone.
	h.readPump(sub)
}

func (h *StreamWSHandler) readPump(s *service.Subscriber) {
	defer func() {
		_ = s.Conn.Close()
	}()
	for {
		if _, _, err := s.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Debug("read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *StreamWSHandler) writePump(s *service.Subscriber) {
	defer func() {
		_ = s.Conn.Close()
	}()
	for {
		select {
		case <-s.Done():
			return
		case data := <-s.Send:
			if err := s.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
