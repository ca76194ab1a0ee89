package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/AagmanBhatia/Oora/pkg/conversation"
	"github.com/AagmanBhatia/Oora/pkg/models"
)

// SubmitRequest is the body of POST /api/v1/messages.
type SubmitRequest struct {
	Query string `json:"query"`
}

// ConversationResponse carries the whole conversation after an operation.
// Error is set when the operation failed; Turns is still the current state.
type ConversationResponse struct {
	SessionID string           `json:"session_id"`
	Turns     []models.Message `json:"turns"`
	Error     string           `json:"error,omitempty"`
}

func (s *Server) apiConversation(w http.ResponseWriter, r *http.Request) {
	id, ctrl := s.session(w, r)
	respondJSON(w, http.StatusOK, ConversationResponse{SessionID: id, Turns: ctrl.Turns()})
}

func (s *Server) apiSubmit(w http.ResponseWriter, r *http.Request) {
	id, ctrl := s.session(w, r)

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ConversationResponse{
			SessionID: id,
			Turns:     ctrl.Turns(),
			Error:     "invalid request body",
		})
		return
	}

	start := time.Now()
	turns, err := ctrl.Submit(completionContext(r), req.Query)
	observe("submit", start, err)
	respondOperation(w, id, turns, err)
}

func (s *Server) apiRegenerate(w http.ResponseWriter, r *http.Request) {
	id, ctrl := s.session(w, r)

	start := time.Now()
	turns, err := ctrl.Regenerate(completionContext(r))
	observe("regenerate", start, err)
	respondOperation(w, id, turns, err)
}

func (s *Server) apiReset(w http.ResponseWriter, r *http.Request) {
	id, ctrl := s.session(w, r)
	respondJSON(w, http.StatusOK, ConversationResponse{SessionID: id, Turns: ctrl.Reset()})
}

func (s *Server) apiEndSession(w http.ResponseWriter, r *http.Request) {
	s.endSession(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func respondOperation(w http.ResponseWriter, id string, turns []models.Message, err error) {
	resp := ConversationResponse{SessionID: id, Turns: turns}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = statusFor(err)
	}
	respondJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, conversation.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, conversation.ErrNothingToRegenerate):
		return http.StatusConflict
	case conversation.IsCompletionFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
