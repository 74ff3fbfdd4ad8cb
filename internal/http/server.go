// Package http serves the MusicMem web UI and operational endpoints.
package http

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"musicmem/internal/core"
	"musicmem/internal/flood"
	"musicmem/internal/i18n"
	"musicmem/internal/session"
)

const shutdownTimeout = 10 * time.Second

// Authenticator is the OAuth side of the catalog.
type Authenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*core.AuthSession, error)
	ValidSession(ctx context.Context, auth *core.AuthSession) (*core.AuthSession, error)
	Catalog(ctx context.Context, auth *core.AuthSession) core.Catalog
}

type Dependencies struct {
	Pipeline  *core.Pipeline
	Auth      Authenticator
	Sessions  *session.Manager
	Localizer *i18n.Localizer
	Metrics   *Metrics
	Gatherer  prometheus.Gatherer
	Limiter   *flood.Floodgate // nil disables throttling
}

type Server struct {
	config    *core.ServerConfig
	logger    *zap.Logger
	server    *http.Server
	deps      Dependencies
	templates map[string]*template.Template
	now       func() time.Time
}

func NewServer(config *core.ServerConfig, deps Dependencies, logger *zap.Logger) *Server {
	s := &Server{
		config:    config,
		logger:    logger,
		deps:      deps,
		templates: parseTemplates(deps.Localizer),
		now:       time.Now,
	}

	s.server = createHTTPServer(config, s.routes())

	return s
}

func createHTTPServer(config *core.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /login", s.handleLogin)
	mux.HandleFunc("GET /callback", s.handleCallback)
	mux.HandleFunc("GET /logout", s.handleLogout)
	mux.HandleFunc("GET /preferences", s.handlePreferencesForm)
	mux.HandleFunc("POST /preferences", s.handlePreferencesSubmit)
	mux.HandleFunc("GET /recommendations", s.handleRecommendations)
	mux.HandleFunc("POST /recommendations", s.handleCreatePlaylist)
	mux.HandleFunc("GET /playlists/{id}", s.handlePlaylist)
	mux.HandleFunc("POST /playlists/{id}", s.handleRemoveTrack)

	mux.HandleFunc("GET /healthz", healthzHandler)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))

	return mux
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func healthzHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","service":"musicmem"}`))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := s.deps.Sessions.Ping(r.Context()); err != nil {
		s.logger.Warn("Session store not ready", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable","service":"musicmem"}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready","service":"musicmem"}`))
}
