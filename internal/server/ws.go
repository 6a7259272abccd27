package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/repcounter/internal/app"
)

const statusWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StatusSource publishes counter snapshots.
type StatusSource interface {
	Status() app.Status
	Subscribe() (<-chan app.Status, func())
}

// StatusHandler pushes every status change to WebSocket clients as JSON.
type StatusHandler struct {
	source StatusSource
}

// NewStatusHandler creates a new StatusHandler reading from source.
func NewStatusHandler(source StatusSource) *StatusHandler {
	return &StatusHandler{source: source}
}

// ServeHTTP upgrades the request and streams snapshots until the client goes away.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade error")
		return
	}
	defer conn.Close()

	updates, unsubscribe := h.source.Subscribe()
	defer unsubscribe()

	// Clients never send anything useful; reading only detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.write(conn, h.source.Status()); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := h.write(conn, st); err != nil {
				logrus.WithError(err).Debug("status client dropped")
				return
			}
		}
	}
}

func (h *StatusHandler) write(conn *websocket.Conn, st app.Status) error {
	conn.SetWriteDeadline(time.Now().Add(statusWriteTimeout))
	return conn.WriteJSON(st)
}
