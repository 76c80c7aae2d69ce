package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"sermon-subscription-billing/internal/config"
	"sermon-subscription-billing/internal/infra/redis"
	"sermon-subscription-billing/internal/usecase"
)

const maxPayloadBytes = 1 << 20 // providers send a few KB; anything bigger is hostile

// Server is the inbound webhook listener. One route per provider tag; the
// provider name in the path becomes the event source.
type Server struct {
	engine  usecase.ReconcileUseCase
	limiter *redis.RateLimiter // optional
	cfg     *config.Config
	log     *zerolog.Logger
	server  *http.Server
}

func NewServer(engine usecase.ReconcileUseCase, limiter *redis.RateLimiter, cfg *config.Config, logger *zerolog.Logger) *Server {
	return &Server{engine: engine, limiter: limiter, cfg: cfg, log: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/webhooks/{provider}", s.handleWebhook)
	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Server.Port).Msg("webhook listener started")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")

	if s.limiter != nil {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		allowed, err := s.limiter.Allow(ctx, redis.WebhookKey(provider, host), s.cfg.RateLimit.Limit, s.cfg.RateLimit.Window)
		if err != nil {
			// Limiter outage must not drop provider traffic.
			s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		} else if !allowed {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	ev, err := s.engine.ProcessWebhook(ctx, provider, peekEventType(body), body)
	if err != nil && ev == nil {
		// Could not even record the event; the provider should retry later.
		s.log.Error().Err(err).Str("provider", provider).Msg("webhook rejected, audit write failed")
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		// Recorded but not reconciled; the row is visible as unprocessed
		// and the retry worker will pick it up. Acknowledge the provider.
		s.log.Error().Err(err).Str("provider", provider).Str("event_id", ev.ID).Msg("webhook recorded but reconciliation failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "event_id": ev.ID})
}

// peekEventType extracts the provider's own event name from the payload,
// best effort; it is stored verbatim on the audit row.
func peekEventType(body []byte) string {
	var doc struct {
		Event string `json:"event"`
		Type  string `json:"type"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	if doc.Event != "" {
		return doc.Event
	}
	return doc.Type
}
