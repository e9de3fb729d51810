// Package net exposes the server's HTTP surface.
package net

import (
	"encoding/json"
	nethttp "net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voxelfront/server/internal/items"
	"voxelfront/server/internal/observability"
	"voxelfront/server/internal/telemetry"
)

// Status is the live view /diagnostics reports.
type Status interface {
	Tick() uint64
	Pending() int
}

// Sessions counts connected clients.
type Sessions interface {
	Count() int
}

type HTTPHandlerConfig struct {
	Logger telemetry.Logger
	// WebSocket serves /ws.
	WebSocket nethttp.HandlerFunc
	Status    Status
	Sessions  Sessions
	TickRate  int
	Catalog   items.Catalog
	// Gatherer backs /metrics; nil leaves the route unmounted.
	Gatherer      prometheus.Gatherer
	Observability observability.Config
	ClientDir     string
	Now           func() time.Time
}

type diagnosticsPayload struct {
	Status     string `json:"status"`
	ServerTime int64  `json:"serverTime"`
	TickRate   int    `json:"tickRate"`
	Tick       uint64 `json:"tick"`
	Pending    int    `json:"pending"`
	Connected  int    `json:"connected"`
}

func NewHTTPHandler(cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := diagnosticsPayload{
			Status:     "ok",
			ServerTime: now().UnixMilli(),
			TickRate:   cfg.TickRate,
		}
		if cfg.Status != nil {
			payload.Tick = cfg.Status.Tick()
			payload.Pending = cfg.Status.Pending()
		}
		if cfg.Sessions != nil {
			payload.Connected = cfg.Sessions.Count()
		}
		writeJSON(w, logger, payload)
	})

	mux.HandleFunc("/catalog", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, logger, cfg.Catalog)
	})

	if cfg.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	if cfg.WebSocket != nil {
		mux.HandleFunc("/ws", cfg.WebSocket)
	}

	cfg.Observability.Mount(mux)

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

func writeJSON(w nethttp.ResponseWriter, logger telemetry.Logger, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Printf("[http] encode response: %v", err)
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
