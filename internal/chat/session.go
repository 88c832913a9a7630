// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Session is one chat thread: the server's session id plus the request
// currently in flight. At most one request per session is honored; a new
// one cancels the previous. Safe for concurrent use.
type Session struct {
	mu           sync.Mutex
	id           string
	lastQuestion string
	inFlight     string // request token, empty when idle
	cancel       context.CancelFunc
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// ResumeSession returns a session that continues an existing server
// thread. lastQuestion may be empty when it is not known.
func ResumeSession(id, lastQuestion string) *Session {
	return &Session{id: id, lastQuestion: lastQuestion}
}

// ID returns the server session id, empty until the first answer carries one.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// LastQuestion returns the most recent question asked, excluding regenerates.
func (s *Session) LastQuestion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuestion
}

// InFlight reports whether a request is outstanding.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight != ""
}

// Cancel aborts the outstanding request, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// begin registers a new request, cancelling the previous one. It returns
// the request context, the request token and the session id to send.
func (s *Session) begin(parent context.Context, question string, regenerate bool) (context.Context, string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	token := uuid.NewString()
	s.inFlight = token
	s.cancel = cancel
	if !regenerate {
		s.lastQuestion = question
	}
	return ctx, token, s.id
}

// isCurrent reports whether token is still the request in flight.
func (s *Session) isCurrent(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight == token
}

// commit applies a completed request's session id. It reports false, and
// changes nothing, when the request has been superseded.
func (s *Session) commit(token, sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight != token {
		return false
	}
	if sessionID != "" {
		s.id = sessionID
	}
	return true
}

// end releases a request's resources if it is still the current one.
func (s *Session) end(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight != token {
		return
	}
	s.inFlight = ""
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
