package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/protocol"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/trackby"
)

// Session is one diff session. Checks on a session are serialized.
type Session struct {
	ID      string
	TrackBy trackby.Spec
	Created time.Time

	mu       sync.Mutex
	differ   *differ.IterableDiffer
	seq      uint64
	closed   bool
	release  func()
	lastUsed atomic.Int64 // unix nanoseconds
}

func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

// LastUsed returns when the session last served a request.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

// Check diffs items against the previous snapshot of the session.
func (s *Session) Check(items []any) (*protocol.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(time.Now())

	if s.closed {
		return nil, errSessionClosed
	}
	if _, err := s.differ.Check(items); err != nil {
		return nil, err
	}
	s.seq++
	r := protocol.NewReport(s.differ)
	r.Session = s.ID
	r.Seq = s.seq
	return r, nil
}

// Items reports the current items without change lists.
func (s *Session) Items() *protocol.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(time.Now())

	r := protocol.NewItemsReport(s.differ)
	r.Session = s.ID
	r.Seq = s.seq
	return r
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.release()
}
