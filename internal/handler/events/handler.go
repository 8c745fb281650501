// Package events streams engine activity to ops tooling over a websocket.
package events

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/superparty/callcenter/internal/events"
)

const pingInterval = 30 * time.Second

// Handler upgrades feed requests and relays bus events.
type Handler struct {
	bus      *events.Bus
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// New creates the live feed handler.
func New(bus *events.Bus, log zerolog.Logger) *Handler {
	return &Handler{
		bus: bus,
		log: log.With().Str("component", "events-handler").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the feed endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/events", h.handleFeed)
}

func (h *Handler) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	feed, cancel := h.bus.Subscribe()
	defer cancel()

	// Reader goroutine only detects the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case event := <-feed:
			if err := conn.WriteJSON(event); err != nil {
				h.log.Debug().Err(err).Msg("feed write failed, closing")
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
