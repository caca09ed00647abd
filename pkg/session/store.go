package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Store is the key-value abstraction over session persistence. Get returns
// (nil, nil) for an unknown id - not found is not an error. A returned
// session is owned by the caller; mutations are invisible until Save.
// Implementations need not serialize callers per key; the engine does that
// with a KeyLock.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Lister is optionally implemented by stores that can enumerate sessions
// cheaply (used by the stats endpoint; distributed backends may skip it).
type Lister interface {
	All(ctx context.Context) ([]*Session, error)
}

// ============================================================================
// IN-MEMORY STORE
// ============================================================================
// Thread-safe in-memory session storage. Sessions live for process lifetime
// by default; the optional TTL sweep is a deliberate capacity extension for
// long-running deployments, not part of the core engagement semantics.

// MemoryStore implements Store with process-local storage. Suitable for
// single-node deployments; use RedisStore or PostgresStore when sessions
// must survive restarts. The store owns its records: Save stores a copy and
// Get returns one, so callers may mutate what they hold without racing the
// stats enumeration.
type MemoryStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	maxAge     time.Duration // 0 = keep forever
	cleanupTTL time.Duration

	stopCleanup chan struct{}
	cleanupOnce sync.Once
}

// MemoryOption is a functional option for configuring MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxAge enables eviction of sessions idle longer than d.
func WithMaxAge(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.maxAge = d
	}
}

// WithCleanupInterval sets how often the eviction sweep runs.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.cleanupTTL = d
	}
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		sessions:    make(map[string]*Session),
		cleanupTTL:  5 * time.Minute,
		stopCleanup: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.maxAge > 0 {
		go s.cleanupLoop()
	}

	return s
}

// Get retrieves a session by id. Returns nil, nil if not found or expired.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	if s.maxAge > 0 && time.Since(sess.LastTurnAt) > s.maxAge {
		// Stale, treat as not found; the sweep reclaims it.
		return nil, nil
	}
	return sess.Clone(), nil
}

// Save creates or updates a session.
func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	if sess == nil {
		return fmt.Errorf("session is nil")
	}
	if sess.SessionID == "" {
		return fmt.Errorf("session id is required")
	}

	snap := sess.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[snap.SessionID] = snap
	return nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// All returns snapshots of every live session.
func (s *MemoryStore) All(_ context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	return out, nil
}

// Close stops the eviction sweep.
func (s *MemoryStore) Close() error {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, sess := range s.sessions {
		if now.Sub(sess.LastTurnAt) > s.maxAge {
			delete(s.sessions, id)
		}
	}
}

// Ensure MemoryStore implements Store and Lister.
var (
	_ Store  = (*MemoryStore)(nil)
	_ Lister = (*MemoryStore)(nil)
)
