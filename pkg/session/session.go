// Package session keeps per-client editor state for the HTTP API.
//
// A browser front end creates a session and then reports gestures against
// it. The session remembers the client's pending [editor.Selection] and the
// layout it was made on, so two tabs do not steal each other's selection.
// Layout data itself lives in the shared collection; sessions only hold the
// transient interaction state.
//
// Sessions expire after [DefaultTTL] of inactivity.
//
//	store := session.NewMemoryStore()
//	sess := session.New(layoutID, session.DefaultTTL)
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if errors.Is(err, session.ErrExpired) {
//	    // create a new one
//	}
//
// [editor.Selection]: github.com/matzehuels/banktags/pkg/editor.Selection
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/banktags/pkg/editor"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("session expired")
)

// DefaultTTL is the default idle lifetime of a session.
const DefaultTTL = 2 * time.Hour

// Session is one client's interaction state.
type Session struct {
	ID        string           `json:"id"`
	LayoutID  int              `json:"layoutId"`
	Selection editor.Selection `json:"selection"`
	CreatedAt time.Time        `json:"createdAt"`
	ExpiresAt time.Time        `json:"expiresAt"`
	ttl       time.Duration
}

// New creates a session with a random id.
func New(layoutID int, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		LayoutID:  layoutID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		ttl:       ttl,
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch extends the session by its TTL.
func (s *Session) Touch() {
	if s.ttl > 0 {
		s.ExpiresAt = time.Now().Add(s.ttl)
	}
}

// Store is the interface for session storage.
type Store interface {
	// Get retrieves a session by ID.
	// Returns ErrNotFound if it doesn't exist and ErrExpired if it has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// MemoryStore is an in-memory [Store]. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if s.IsExpired() {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return nil, ErrExpired
	}
	return &s, nil
}

func (m *MemoryStore) Set(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Cleanup(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.IsExpired() {
			delete(m.sessions, id)
		}
	}
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
