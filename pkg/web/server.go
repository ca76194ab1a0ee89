// Package web serves the chat page and its JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AagmanBhatia/Oora/pkg/conversation"
	"github.com/AagmanBhatia/Oora/pkg/render"
	"github.com/AagmanBhatia/Oora/pkg/session"
)

// SessionCookie is the cookie carrying the session id.
const SessionCookie = "oora_session"

const shutdownTimeout = 10 * time.Second

// Server is the HTTP surface in front of the session store.
type Server struct {
	store        *session.Store
	renderer     *render.Renderer
	logger       *zap.Logger
	secureCookie bool
	router       chi.Router
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Store    *session.Store
	Renderer *render.Renderer
	Logger   *zap.Logger

	// SecureCookie marks the session cookie Secure (HTTPS only).
	SecureCookie bool
}

// NewServer wires the routes.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := &Server{
		store:        cfg.Store,
		renderer:     cfg.Renderer,
		logger:       cfg.Logger,
		secureCookie: cfg.SecureCookie,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/metrics", s.handleMetrics)

	r.Get("/", s.handleIndex)
	r.Post("/chat", s.handleSubmit)
	r.Post("/regenerate", s.handleRegenerate)
	r.Post("/clear", s.handleClear)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/conversation", s.apiConversation)
		r.Delete("/conversation", s.apiReset)
		r.Post("/messages", s.apiSubmit)
		r.Post("/regenerate", s.apiRegenerate)
		r.Delete("/session", s.apiEndSession)
	})

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting chat server", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down chat server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// session returns the caller's controller, starting a session and setting
// the cookie when the request carries none or an expired one.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *conversation.Controller) {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}

	id, ctrl, created := s.store.Resolve(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
		s.refreshSessionGauge()
	}
	return id, ctrl
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.store.End(c.Value)
		s.refreshSessionGauge()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// completionContext detaches the provider call from the request: closing
// the page does not abort a completion already issued.
func completionContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// observe records metrics for a finished submit or regenerate.
func observe(op string, start time.Time, err error) {
	switch {
	case err == nil:
		metricCompletions.WithLabelValues(op, "success").Inc()
		metricCompletionDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	case errors.Is(err, conversation.ErrEmptyQuery):
		metricRejected.WithLabelValues("empty_query").Inc()
	case errors.Is(err, conversation.ErrNothingToRegenerate):
		metricRejected.WithLabelValues("nothing_to_regenerate").Inc()
	default:
		metricCompletions.WithLabelValues(op, "failure").Inc()
		metricCompletionDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
