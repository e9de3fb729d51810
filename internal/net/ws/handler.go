// Package ws upgrades client connections and pumps their frames into the
// simulation loop.
package ws

import (
	nethttp "net/http"
	"strings"

	"github.com/gorilla/websocket"

	"voxelfront/server/internal/net/intake"
	"voxelfront/server/internal/notify"
	"voxelfront/server/internal/telemetry"
	"voxelfront/server/logging"
)

const defaultMaxMessageBytes = 4096

// HandlerConfig wires a Handler to the rest of the server.
type HandlerConfig struct {
	Hub       *notify.Hub
	Commands  intake.Enqueuer
	Tick      func() uint64
	Clock     logging.Clock
	Publisher logging.Publisher
	Logger    telemetry.Logger
	// MaxMessageBytes bounds a single client frame.
	MaxMessageBytes int64
}

// Handler accepts websocket connections at /ws?actor=<id>.
type Handler struct {
	cfg      HandlerConfig
	upgrader websocket.Upgrader
}

// NewHandler constructs a websocket handler for the given hub and loop.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = telemetry.NopLogger()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = logging.NopPublisher()
	}
	if cfg.Clock == nil {
		cfg.Clock = logging.SystemClock()
	}
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = defaultMaxMessageBytes
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{cfg: cfg, upgrader: upgrader}
}

// Handle upgrades the request and serves the session until the client goes
// away.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	actorID := strings.TrimSpace(r.URL.Query().Get("actor"))
	if actorID == "" {
		nethttp.Error(w, "missing actor", nethttp.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.cfg.Logger.Printf("[ws] upgrade failed for %s: %v", actorID, err)
		return
	}
	conn.SetReadLimit(h.cfg.MaxMessageBytes)
	h.Serve(actorID, conn, r.RemoteAddr)
}
