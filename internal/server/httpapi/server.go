// Package httpapi exposes the services over HTTP with a chi router.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/logging"
	"github.com/dmitrijs2005/agentdesk/internal/server/metrics"
	"github.com/dmitrijs2005/agentdesk/internal/server/services"
)

// Services are the handlers' dependencies.
type Services struct {
	Auth          *services.AuthService
	Conversations *services.ConversationService
	Email         *services.EmailService
	Planner       *services.PlannerService
	Research      *services.ResearchService
	Export        *services.ExportService
}

type Server struct {
	address     string
	svc         Services
	metrics     *metrics.Metrics
	logger      logging.Logger
	jwtSecret   []byte
	tokenTTL    time.Duration
	recentLimit int
}

func NewServer(address string, svc Services, m *metrics.Metrics, l logging.Logger, secretKey string, tokenTTL time.Duration, recentLimit int) *Server {
	if recentLimit <= 0 {
		recentLimit = common.DefaultRecentLimit
	}
	return &Server{
		address:     address,
		svc:         svc,
		metrics:     m,
		logger:      l.With("module", "http_server"),
		jwtSecret:   []byte(secretKey),
		tokenTTL:    tokenTTL,
		recentLimit: recentLimit,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/metrics", s.metrics.Handler().ServeHTTP)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)

		r.Post("/plans", s.handleCreatePlan)
		r.Get("/plans", s.handleListPlans)
		r.Post("/research", s.handleAsk)
		r.Get("/research", s.handleListResearch)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/drafts", s.handleDraft)
			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", s.handleCreateSession)
				r.Get("/", s.handleListSessions)
				r.Get("/{id}/messages", s.handleMessages)
				r.Post("/{id}/drafts", s.handleDraft)
				r.Get("/{id}/export", s.handleExport)
			})
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
