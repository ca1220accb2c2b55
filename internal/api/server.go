// Package api provides the HTTP server for the hearth daemon.
// It exposes the wallet, upgrade shop, catalog, and lifecycle endpoints
// plus a live SSE event feed.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hearth-app/hearth/internal/domain"
	"github.com/hearth-app/hearth/internal/economy"
)

// Server is the hearth HTTP API server.
type Server struct {
	engine         *economy.Engine
	metricsEnabled bool
	hub            *EventHub
}

// NewServer creates a new API server.
func NewServer(engine *economy.Engine) *Server {
	return &Server{engine: engine}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetEventHub sets the live event SSE hub.
func (s *Server) SetEventHub(h *EventHub) { s.hub = h }

// EventHub returns the live event hub (for broadcasting events).
func (s *Server) EventHub() *EventHub { return s.hub }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Get("/wallet", s.handleWallet)
		r.Post("/wallet/tap", s.handleTap)
		r.Post("/wallet/credit", s.handleCredit)

		r.Get("/upgrades", s.handleUpgrades)
		r.Post("/upgrades/{id}/buy", s.handleBuyUpgrade)

		r.Get("/catalog", s.handleCatalog)
		r.Post("/catalog", s.handleRegisterItem)
		r.Post("/catalog/{id}/buy", s.handleBuyItem)
		r.Post("/catalog/{id}/grant", s.handleGrantItem)
		r.Get("/inventory", s.handleInventory)

		r.Post("/lifecycle/background", s.handleBackground)
		r.Post("/lifecycle/foreground", s.handleForeground)

		r.Post("/reset", s.handleReset)
		r.Post("/reset/profile", s.handleResetProfile)
	})

	// Live event SSE feed
	if s.hub != nil {
		r.Get("/api/events", s.hub.HandleEventsSSE)
	}

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Wallet ─────────────────────────────────────────────────────────────────

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	wallet := s.engine.Wallet()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "hearth is running",
		"balance":      wallet.Balance,
		"accrual_rate": wallet.AccrualRate,
		"pretty":       domain.HumanCredits(wallet.Balance),
	})
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Wallet())
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.engine.Tap(req.Amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Wallet())
}

func (s *Server) handleCredit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.engine.Credit(req.Amount, domain.TxReward); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Wallet())
}

// ─── Upgrades ───────────────────────────────────────────────────────────────

func (s *Server) handleUpgrades(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"upgrades":     s.engine.Upgrades(),
		"accrual_rate": s.engine.AccrualRate(),
	})
}

func (s *Server) handleBuyUpgrade(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.engine.PurchaseUpgrade(id); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"wallet":   s.engine.Wallet(),
		"upgrades": s.engine.Upgrades(),
	})
}

// ─── Catalog ────────────────────────────────────────────────────────────────

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": s.engine.CatalogEntries(),
	})
}

type registerRequest struct {
	Seed     string   `json:"seed"`
	ID       string   `json:"id,omitempty"`
	Cost     int64    `json:"cost,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	ImageRef string   `json:"image_ref,omitempty"`
}

func (s *Server) handleRegisterItem(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := s.engine.RegisterItem(req.Seed, &economy.RegisterOptions{
		ID:       req.ID,
		Cost:     req.Cost,
		Tags:     req.Tags,
		ImageRef: req.ImageRef,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleBuyItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.engine.PurchaseItem(id); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"wallet": s.engine.Wallet(),
		"owned":  s.engine.Owns(id),
	})
}

func (s *Server) handleGrantItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	granted, err := s.engine.GrantItem(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"granted": granted,
		"owned":   true,
	})
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": s.engine.Inventory(),
	})
}

// ─── Lifecycle ──────────────────────────────────────────────────────────────

func (s *Server) handleBackground(w http.ResponseWriter, r *http.Request) {
	s.engine.EnteredBackground()
	writeJSON(w, http.StatusOK, map[string]string{"state": "background"})
}

func (s *Server) handleForeground(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.engine.EnteredForeground()
	resp := map[string]interface{}{
		"state":  "foreground",
		"wallet": s.engine.Wallet(),
	}
	if ok {
		resp["reconciliation"] = ev
	}
	writeJSON(w, http.StatusOK, resp)
}

// ─── Reset ──────────────────────────────────────────────────────────────────

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Reset(); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Wallet())
}

func (s *Server) handleResetProfile(w http.ResponseWriter, r *http.Request) {
	s.engine.ResetProfileCounter()
	writeJSON(w, http.StatusOK, s.engine.Wallet())
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeEngineError maps domain errors onto HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidIdentity):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnknownItem),
		errors.Is(err, domain.ErrUnknownUpgrade):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
