//go:build !ios && !android && (amd64 || arm64)

package spgo

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/obinnaokechukwu/spgo/internal/logging"
	"github.com/obinnaokechukwu/spgo/libspotify"
	"github.com/obinnaokechukwu/spgo/load"
)

// Session drives libspotify's event processing for an sp_session created by
// the application. Creating and logging in sessions is left to the caller;
// spgo only needs the pointer to pump events while proxies load.
type Session struct {
	sp libspotify.Session

	mu   sync.Mutex
	next time.Duration
}

var (
	defaultMu      sync.Mutex
	defaultSession *Session
)

// AttachSession wraps sp and makes it the default session used by proxies
// that were not given one.
func AttachSession(sp libspotify.Session) (*Session, error) {
	if sp == nil {
		return nil, ErrNoSession
	}
	s := &Session{sp: sp}
	defaultMu.Lock()
	defaultSession = s
	defaultMu.Unlock()
	return s, nil
}

// DetachSession clears the default session if it is s.
func DetachSession(s *Session) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultSession == s {
		defaultSession = nil
	}
}

// DefaultSession returns the most recently attached session, or nil.
func DefaultSession() *Session {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultSession
}

// ProcessEvents runs libspotify's pending work once and returns how long
// libspotify asks to wait before the next call.
func (s *Session) ProcessEvents() (time.Duration, error) {
	if s == nil {
		return 0, ErrNoSession
	}
	next, code := native.processEvents(s.sp)
	s.mu.Lock()
	s.next = next
	s.mu.Unlock()
	if err := NewError(code, "process_events"); err != nil {
		logging.Logger().Warn("process events failed", zap.Error(err))
		return next, err
	}
	return next, nil
}

// NextTimeout is the delay requested by the last ProcessEvents call.
func (s *Session) NextTimeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Pointer returns the underlying sp_session.
func (s *Session) Pointer() libspotify.Session {
	return s.sp
}

// waiter builds a load.Waiter that pumps s. A nil session waits without
// pumping, which only succeeds if another goroutine drives libspotify.
func (s *Session) waiter() *load.Waiter {
	w := &load.Waiter{PollInterval: PollInterval()}
	if s != nil {
		w.Pump = func() { _, _ = s.ProcessEvents() }
	}
	return w
}

func sessionOrDefault(s *Session) *Session {
	if s != nil {
		return s
	}
	return DefaultSession()
}
