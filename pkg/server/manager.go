package server

import (
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/IgniteUI/igniteui-angular-sub020/internal/errors"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/trackby"
	"github.com/oklog/ulid/v2"
)

var errSessionClosed = stderrors.New("server: session closed")

// SessionManager owns all sessions and evicts idle ones.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl         time.Duration
	maxSessions int
	observer    differ.Observer
	logger      *slog.Logger

	onClose func(*Session) // guarded by mu

	done        chan struct{}
	cleanupDone chan struct{}
	stopOnce    sync.Once
}

// NewSessionManager creates a manager and starts its cleanup loop. Call
// Shutdown to stop it.
func NewSessionManager(ttl, interval time.Duration, maxSessions int, observer differ.Observer, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	sm := &SessionManager{
		sessions:    make(map[string]*Session),
		ttl:         ttl,
		maxSessions: maxSessions,
		observer:    observer,
		logger:      logger.With("component", "session_manager"),
		done:        make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
	go sm.cleanupLoop(interval)
	return sm
}

// Create starts a session tracking items with spec.
func (sm *SessionManager) Create(spec trackby.Spec) (*Session, error) {
	if err := spec.Validate(); err != nil {
		return nil, errors.New("E105").Wrap(err)
	}
	opts, release, err := spec.Options(sm.logger)
	if err != nil {
		return nil, errors.New("E104").Wrap(err)
	}
	if sm.observer != nil {
		opts = append(opts, differ.WithObserver(sm.observer))
	}

	now := time.Now()
	s := &Session{
		ID:      ulid.Make().String(),
		TrackBy: spec,
		Created: now,
		differ:  differ.New(opts...),
		release: release,
	}
	s.touch(now)

	sm.mu.Lock()
	if sm.maxSessions > 0 && len(sm.sessions) >= sm.maxSessions {
		sm.mu.Unlock()
		release()
		return nil, errors.New("E011")
	}
	sm.sessions[s.ID] = s
	count := len(sm.sessions)
	sm.mu.Unlock()

	sm.logger.Info("session created",
		"session_id", s.ID,
		"track_by", spec.String(),
		"active_sessions", count)
	return s, nil
}

// Get returns the session with id, or an E010 error.
func (sm *SessionManager) Get(id string) (*Session, error) {
	sm.mu.RLock()
	s, ok := sm.sessions[id]
	sm.mu.RUnlock()
	if !ok {
		return nil, errors.New("E010").WithSource(id)
	}
	return s, nil
}

// Close removes and closes the session with id. It reports whether the
// session existed.
func (sm *SessionManager) Close(id string) bool {
	sm.mu.Lock()
	s, ok := sm.sessions[id]
	delete(sm.sessions, id)
	sm.mu.Unlock()
	if !ok {
		return false
	}
	sm.closeSession(s, "closed")
	return true
}

// OnClose registers fn to run after a session is closed or expires.
func (sm *SessionManager) OnClose(fn func(*Session)) {
	sm.mu.Lock()
	sm.onClose = fn
	sm.mu.Unlock()
}

func (sm *SessionManager) closeSession(s *Session, reason string) {
	s.close()
	sm.mu.RLock()
	onClose := sm.onClose
	sm.mu.RUnlock()
	if onClose != nil {
		onClose(s)
	}
	sm.logger.Info("session "+reason, "session_id", s.ID, "active_sessions", sm.Count())
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

func (sm *SessionManager) cleanupLoop(interval time.Duration) {
	defer close(sm.cleanupDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-sm.done:
			return
		case now := <-ticker.C:
			sm.cleanupExpired(now)
		}
	}
}

// cleanupExpired closes sessions idle for longer than the TTL.
func (sm *SessionManager) cleanupExpired(now time.Time) int {
	cutoff := now.Add(-sm.ttl)

	var expired []*Session
	sm.mu.Lock()
	for id, s := range sm.sessions {
		if s.LastUsed().Before(cutoff) {
			expired = append(expired, s)
			delete(sm.sessions, id)
		}
	}
	sm.mu.Unlock()

	for _, s := range expired {
		sm.closeSession(s, "expired")
	}
	return len(expired)
}

// Shutdown stops the cleanup loop and closes every session.
func (sm *SessionManager) Shutdown() {
	sm.stopOnce.Do(func() {
		close(sm.done)
		<-sm.cleanupDone

		sm.mu.Lock()
		all := make([]*Session, 0, len(sm.sessions))
		for id, s := range sm.sessions {
			all = append(all, s)
			delete(sm.sessions, id)
		}
		sm.mu.Unlock()

		for _, s := range all {
			sm.closeSession(s, "closed")
		}
	})
}
