package web

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AagmanBhatia/Oora/pkg/conversation"
	"github.com/AagmanBhatia/Oora/pkg/models"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, ctrl := s.session(w, r)
	s.renderPage(w, http.StatusOK, ctrl.Turns(), "")
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, ctrl := s.session(w, r)
	query := r.PostFormValue("query")

	start := time.Now()
	turns, err := ctrl.Submit(completionContext(r), query)
	observe("submit", start, err)
	s.finish(w, r, id, "submit", turns, err)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	id, ctrl := s.session(w, r)

	start := time.Now()
	turns, err := ctrl.Regenerate(completionContext(r))
	observe("regenerate", start, err)
	s.finish(w, r, id, "regenerate", turns, err)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	_, ctrl := s.session(w, r)
	ctrl.Reset()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// finish redirects back to the page after a successful or ignored
// operation and re-renders it with the error banner after a failed one.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, id, op string, turns []models.Message, err error) {
	switch {
	case err == nil,
		errors.Is(err, conversation.ErrEmptyQuery),
		errors.Is(err, conversation.ErrNothingToRegenerate):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		s.logger.Warn("Chat operation failed",
			zap.String("op", op),
			zap.String("session_id", id),
			zap.Error(err),
		)
		s.renderPage(w, http.StatusBadGateway, turns, err.Error())
	}
}

func (s *Server) renderPage(w http.ResponseWriter, status int, turns []models.Message, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := s.renderer.Render(w, turns, errMsg); err != nil {
		s.logger.Error("Failed to render page", zap.Error(err))
	}
}
