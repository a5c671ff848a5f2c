// Package server is the mock REST API the dashboard client talks to
package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/foxzi/wadesk/internal/metrics"
	"github.com/foxzi/wadesk/internal/server/repository"
)

// Config holds the server settings
type Config struct {
	ListenAddr string
	JWTSecret  string
	TokenTTL   time.Duration
	Version    string
}

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     Config
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tokens     *tokenIssuer
	startTime  time.Time

	users     *repository.UserRepository
	contacts  *repository.ContactRepository
	chats     *repository.ChatRepository
	campaigns *repository.CampaignRepository
	templates *repository.TemplateRepository
}

// New creates a new API server. m may be nil.
func New(db *sql.DB, cfg Config, m *metrics.Metrics, logger *slog.Logger) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}

	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger.With("component", "api"),
		metrics:   m,
		tokens:    newTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL),
		startTime: time.Now(),
		users:     repository.NewUserRepository(db),
		contacts:  repository.NewContactRepository(db),
		chats:     repository.NewChatRepository(db),
		campaigns: repository.NewCampaignRepository(db),
		templates: repository.NewTemplateRepository(db),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.StripSlashes)

	s.router.Get("/health", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/users/me", s.handleGetMe)
			r.Put("/users/me", s.handleUpdateMe)

			r.Get("/contacts", s.handleListContacts)
			r.Post("/contacts", s.handleCreateContact)
			r.Put("/contacts/{id}", s.handleUpdateContact)
			r.Delete("/contacts/{id}", s.handleDeleteContact)

			r.Get("/chats", s.handleListChats)
			r.Post("/chats", s.handleStartChat)
			r.Get("/chats/{id}/messages", s.handleListMessages)
			r.Post("/chats/{id}/messages", s.handleSendMessage)

			r.Get("/campaigns", s.handleListCampaigns)
			r.Post("/campaigns", s.handleCreateCampaign)
			r.Delete("/campaigns/{id}", s.handleDeleteCampaign)
			r.Put("/campaigns/{id}/status", s.handleUpdateCampaignStatus)

			r.Get("/templates", s.handleListTemplates)
			r.Post("/templates", s.handleCreateTemplate)
			r.Put("/templates/{id}", s.handleUpdateTemplate)
			r.Delete("/templates/{id}", s.handleDeleteTemplate)
		})
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP API server", "addr", s.config.ListenAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP API server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
