package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"sermon-subscription-billing/internal/usecase"
)

// Server is the ops API: audit-log inspection, event purge, subscription
// counters and the Prometheus endpoint. Everything under /api is behind
// the API-key middleware.
type Server struct {
	eventUC usecase.EventUseCase
	statsUC usecase.StatsUseCase
	apiKey  string
	port    int
	log     *zerolog.Logger
	server  *http.Server
}

func NewServer(
	eventUC usecase.EventUseCase,
	statsUC usecase.StatsUseCase,
	apiKey string,
	port int,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		eventUC: eventUC,
		statsUC: statsUC,
		apiKey:  apiKey,
		port:    port,
		log:     logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/events", eventsListHandler(s.eventUC))
		r.Get("/events/unprocessed", eventsUnprocessedHandler(s.eventUC))
		r.Delete("/events", eventsPurgeHandler(s.eventUC))
		r.Get("/stats", statsHandler(s.statsUC))
	})
	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", s.port).Msg("ops server started")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// authMiddleware provides simple Bearer token authentication for the ops API.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("Ops API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}

		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
