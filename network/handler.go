package network

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lixenwraith/endless-runner/game"
)

// Snapshotter supplies the state frames carry
type Snapshotter interface {
	Snapshot() game.View
}

// HandlerConfig carries optional Handler dependencies
type HandlerConfig struct {
	Logger *log.Logger
}

// Handler upgrades feed requests and registers them with the hub
type Handler struct {
	hub      *Hub
	source   Snapshotter
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewHandler serves hub subscribers with welcome frames taken from source
// A nil cfg.Logger uses log.Default(); buffer sizes come from the hub's config
func NewHandler(hub *Hub, source Snapshotter, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  hub.cfg.ReadBufferSize,
		WriteBufferSize: hub.cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:      hub,
		source:   source,
		logger:   logger,
		upgrader: upgrader,
	}
}

// Handle serves /ws: the first frame is a welcome carrying the subscriber ID and current state
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	welcome := func(id uuid.UUID) ([]byte, error) {
		view := h.source.Snapshot()
		return Frame{
			Type:   MsgWelcome,
			ID:     id.String(),
			SentAt: time.Now().UnixMilli(),
			State:  &view,
		}.Encode()
	}

	if _, err := h.hub.Subscribe(conn, welcome); err != nil {
		reason := "subscribe failed"
		if errors.Is(err, ErrHubFull) {
			reason = "server full"
		}
		h.logger.Printf("rejecting %s: %v", r.RemoteAddr, err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, reason),
			time.Now().Add(time.Second))
		conn.Close()
	}
}

// Health serves /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Status      string `json:"status"`
		ServerTime  int64  `json:"serverTime"`
		Subscribers int    `json:"subscribers"`
	}{
		Status:      "ok",
		ServerTime:  time.Now().UnixMilli(),
		Subscribers: h.hub.Count(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Printf("health encode failed: %v", err)
	}
}

// NewMux routes /ws and /healthz
func NewMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.Handle)
	mux.HandleFunc("/healthz", h.Health)
	return mux
}
