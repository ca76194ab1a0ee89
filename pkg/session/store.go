// Package session keeps one conversation controller per browser session.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AagmanBhatia/Oora/pkg/conversation"
)

// Factory builds the controller for a new session.
type Factory func(id string) *conversation.Controller

// Store maps session ids to controllers and forgets sessions that have
// been idle longer than the TTL.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	factory  Factory
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

type entry struct {
	ctrl     *conversation.Controller
	lastSeen time.Time
}

// NewStore creates an empty store.
func NewStore(factory Factory, ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]*entry),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Create starts a new session and returns its id and controller.
func (s *Store) Create() (string, *conversation.Controller) {
	id := uuid.NewString()
	ctrl := s.factory(id)

	s.mu.Lock()
	s.sessions[id] = &entry{ctrl: ctrl, lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Debug("Session started", zap.String("session_id", id))
	return id, ctrl
}

// Get returns the controller for id and marks the session as active.
func (s *Store) Get(id string) (*conversation.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(e) {
		delete(s.sessions, id)
		return nil, false
	}
	e.lastSeen = s.now()
	return e.ctrl, true
}

// Resolve returns the session for id, creating a new one when id is empty,
// unknown or expired. created reports whether a new session was made.
func (s *Store) Resolve(id string) (sessionID string, ctrl *conversation.Controller, created bool) {
	if id != "" {
		if ctrl, ok := s.Get(id); ok {
			return id, ctrl, false
		}
	}
	sessionID, ctrl = s.Create()
	return sessionID, ctrl, true
}

// End tears the session down. Ending an unknown session is a no-op.
func (s *Store) End(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		s.logger.Debug("Session ended", zap.String("session_id", id))
	}
}

// Len returns the number of sessions held, expired ones included until
// the next Sweep.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if s.expired(e) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("Expired idle sessions", zap.Int("removed", removed), zap.Int("remaining", len(s.sessions)))
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store) expired(e *entry) bool {
	return s.ttl > 0 && s.now().Sub(e.lastSeen) > s.ttl
}
