// Package session tracks the UI state each host window mounts so that one
// window can be torn down without touching another.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"colljump/internal/logging"
)

// Session owns the nodes and handler subscriptions mounted into one window
type Session struct {
	ID     uuid.UUID
	Window string

	mu       sync.Mutex
	nodes    map[string]any
	cleanups []func()
	closed   bool
}

func newSession(window string) *Session {
	return &Session{
		ID:     uuid.New(),
		Window: window,
		nodes:  make(map[string]any),
	}
}

// Attach records a mounted node under name, replacing any previous node
func (s *Session) Attach(name string, node any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.nodes[name] = node
}

// Node returns the node mounted under name
func (s *Session) Node(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[name]
	return n, ok
}

// Nodes returns the number of mounted nodes
func (s *Session) Nodes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// OnClose registers fn to run when the session closes. Registering on a
// closed session runs fn immediately.
func (s *Session) OnClose(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
	s.mu.Unlock()
}

// Closed reports whether Close has run
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close runs the cleanup handlers in reverse registration order and drops
// every node. A panicking handler does not stop the others.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cleanups := s.cleanups
	s.cleanups = nil
	s.nodes = make(map[string]any)
	s.mu.Unlock()

	var errs []error
	for i := len(cleanups) - 1; i >= 0; i-- {
		if err := runCleanup(cleanups[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func runCleanup(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CleanupError{Value: r}
		}
	}()
	fn()
	return nil
}

// CleanupError wraps a panic raised by a cleanup handler
type CleanupError struct {
	Value any
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("session cleanup panicked: %v", e.Value)
}

// Registry maps host windows to their sessions
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	logger   *log.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *log.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		logger:   logging.OrDiscard(logger),
	}
}

// Mount returns the session for window, creating it on first use. Mounting
// an already mounted window returns the existing session.
func (r *Registry) Mount(window string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[window]; ok {
		return s
	}
	s := newSession(window)
	r.sessions[window] = s
	r.logger.Debug("window mounted", "window", window, "session", s.ID)
	return s
}

// Get returns the live session for window
func (r *Registry) Get(window string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[window]
	return s, ok
}

// Len returns the number of mounted windows
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Unmount closes and forgets the session of window. Unknown windows are a
// no-op.
func (r *Registry) Unmount(window string) error {
	r.mu.Lock()
	s, ok := r.sessions[window]
	delete(r.sessions, window)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	err := s.Close()
	if err != nil {
		r.logger.Warn("window cleanup failed", "window", window, "session", s.ID, "err", err)
	} else {
		r.logger.Debug("window unmounted", "window", window, "session", s.ID)
	}
	return err
}

// UnmountAll closes every session, as on application shutdown
func (r *Registry) UnmountAll() error {
	r.mu.Lock()
	windows := make([]string, 0, len(r.sessions))
	for w := range r.sessions {
		windows = append(windows, w)
	}
	r.mu.Unlock()

	var errs []error
	for _, w := range windows {
		if err := r.Unmount(w); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
