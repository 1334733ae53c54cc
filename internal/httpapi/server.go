// Package httpapi serves the health endpoints used by the hosting platform,
// Prometheus metrics and the live activity feed.
package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ent0n29/aanyaa/internal/config"
	"github.com/ent0n29/aanyaa/internal/feed"
	"github.com/ent0n29/aanyaa/internal/identity"
	"github.com/ent0n29/aanyaa/internal/observability"
	"github.com/ent0n29/aanyaa/internal/rules"
)

const rootBanner = "Aanyaa bot is running! 🌸"

// Deps are the read-only views the server reports on. Any of them may be nil.
type Deps struct {
	Metrics *observability.Metrics
	Feed    *feed.Hub
	Owner   *identity.OwnerBinding
	Ledger  *identity.Ledger
	Rules   *rules.Engine
}

type Server struct {
	cfg      config.Config
	deps     Deps
	ready    atomic.Bool
	upgrader websocket.Upgrader
}

func New(cfg config.Config, deps Deps) *Server {
	return &Server{
		cfg:  cfg,
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browsers may watch the feed unless configured otherwise.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

// SetReady flips /readyz once the bot identity is known and polling started.
func (s *Server) SetReady(ready bool) { s.ready.Store(ready) }

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		respondText(w, http.StatusOK, rootBanner)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondText(w, http.StatusOK, "OK")
	})
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Get("/v1/status", s.handleStatus)
	r.Get("/v1/stats", s.handleStats)
	r.Get("/v1/feed/ws", s.handleFeedWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"brain_mode": s.cfg.BrainMode,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "starting"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"brain_mode": s.cfg.BrainMode,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Metrics == nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"generated_at": "",
			"window_size":  0,
			"stages":       []any{},
		})
		return
	}
	respondJSON(w, http.StatusOK, s.deps.Metrics.Latency())
}

func (s *Server) handleFeedWS(w http.ResponseWriter, r *http.Request) {
	if s.deps.Feed == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "activity feed not configured")
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	s.deps.Feed.Serve(r.Context(), conn)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
