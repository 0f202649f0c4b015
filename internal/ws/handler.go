package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"aquawatch/internal/service"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
)

// Subscriber opens per-device reading streams.
type Subscriber interface {
	Subscribe(ctx context.Context, deviceID string) (service.ReadingStream, error)
}

// Handler upgrades dashboard clients and streams live readings for one
// device. Each connection owns its own store subscription; closing the
// connection closes the subscription.
type Handler struct {
	store    Subscriber
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler returns ws handler.
func NewHandler(store Subscriber, logger *zap.Logger) *Handler {
	return &Handler{
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is enforced by the CORS layer on the REST routes; the
			// ws endpoint accepts any origin like the rest of the local API.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP handles GET /ws/readings?device_id=.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		http.Error(w, "device_id is required", http.StatusBadRequest)
		return
	}

	stream, err := h.store.Subscribe(r.Context(), deviceID)
	if err != nil {
		h.logger.Error("failed to open reading stream",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		http.Error(w, "failed to subscribe", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		stream.Close()
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &connection{
		ws:       conn,
		stream:   stream,
		deviceID: deviceID,
		logger:   h.logger,
	}
	go c.writePump()
	c.readPump()
}

type connection struct {
	ws       *websocket.Conn
	stream   service.ReadingStream
	deviceID string
	logger   *zap.Logger
}

// readPump exists only to observe the close handshake and pong replies.
func (c *connection) readPump() {
	defer c.cleanup()
	c.ws.SetReadLimit(512)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			c.logger.Debug("reading stream client gone",
				zap.String("device_id", c.deviceID),
				zap.Error(err),
			)
			return
		}
	}
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer c.cleanup()

	for {
		select {
		case reading, ok := <-c.stream.Readings():
			if !ok {
				_ = c.write(websocket.CloseMessage, nil)
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteJSON(reading); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *connection) write(messageType int, payload []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(messageType, payload)
}

func (c *connection) cleanup() {
	c.stream.Close()
	_ = c.ws.Close()
}
