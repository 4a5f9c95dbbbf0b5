package honeypot

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ashwinrao/scam-honeypot/pkg/logging"
)

// ErrSessionNotFound is returned by lookups for unknown session ids.
var ErrSessionNotFound = errors.New("honeypot: session not found")

// SessionStore owns session lifecycle. Reads return copies; writers must go
// through Save. The engine serializes access per session id, so stores only
// need to be safe for concurrent use across different ids.
type SessionStore interface {
	// GetOrCreate returns the session for id, creating it with default
	// field values on first access.
	GetOrCreate(ctx context.Context, id string) (*Session, error)
	// Get returns the session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Save persists the session state.
	Save(ctx context.Context, session *Session) error
	// Count returns the number of live sessions.
	Count(ctx context.Context) (int, error)
	// IDs lists live session ids, sorted.
	IDs(ctx context.Context) ([]string, error)
}

type memoryEntry struct {
	session  *Session
	lastSeen time.Time
}

// MemorySessionStore is the in-process store. Sessions idle past the TTL are
// evicted by a janitor goroutine; a TTL of zero disables eviction and
// restores the original keep-forever behavior.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*memoryEntry
	ttl      time.Duration
	logger   *logging.Logger
	nowFn    func() time.Time
}

// NewMemorySessionStore creates a memory store. A positive ttl starts a
// background janitor that drops sessions idle longer than ttl.
func NewMemorySessionStore(ttl time.Duration, logger *logging.Logger) *MemorySessionStore {
	if logger == nil {
		logger = logging.Default()
	}
	s := &MemorySessionStore{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		logger:   logger,
		nowFn:    time.Now,
	}
	if ttl > 0 {
		go s.janitor()
	}
	return s
}

func (s *MemorySessionStore) GetOrCreate(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn().UTC()
	entry, ok := s.sessions[id]
	if !ok {
		entry = &memoryEntry{
			session: &Session{
				ID:        id,
				History:   []Message{},
				StartedAt: now,
			},
		}
		s.sessions[id] = entry
	}
	entry.lastSeen = now
	return entry.session.Clone(), nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry.session.Clone(), nil
}

func (s *MemorySessionStore) Save(_ context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return errors.New("honeypot: cannot save session without id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = &memoryEntry{
		session:  session.Clone(),
		lastSeen: s.nowFn().UTC(),
	}
	return nil
}

func (s *MemorySessionStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

func (s *MemorySessionStore) IDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// janitor periodically evicts sessions idle past the TTL.
func (s *MemorySessionStore) janitor() {
	interval := s.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		s.evictIdle()
	}
}

func (s *MemorySessionStore) evictIdle() {
	cutoff := s.nowFn().UTC().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			s.logger.Info("evicted idle session", "session_id", id)
		}
	}
}
