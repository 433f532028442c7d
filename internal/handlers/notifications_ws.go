package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/foodieshare/foodieshare-backend/internal/middleware"
	"github.com/foodieshare/foodieshare-backend/internal/models"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 90 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// NotificationSource is satisfied by *services.NotificationHub.
type NotificationSource interface {
	Subscribe(uid string) (<-chan models.Notification, func())
}

type NotificationHandler struct {
	source   NotificationSource
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewNotificationHandler checks the Origin header against allowedOrigins.
// An empty list accepts any origin.
func NewNotificationHandler(source NotificationSource, allowedOrigins []string, logger *slog.Logger) *NotificationHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &NotificationHandler{
		source: source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
		logger: logger,
	}
}

// Stream pushes the caller's notifications over a WebSocket until either
// side goes away. The socket is write-only; client frames are discarded.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, false, "Not authorized, no token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, unsubscribe := h.source.Subscribe(user.ID)
	defer unsubscribe()

	h.logger.Debug("notification stream opened", "uid", user.ID)
	defer h.logger.Debug("notification stream closed", "uid", user.ID)

	// Reader: handles pongs and notices disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(4 * 1024)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case n, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(n); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
