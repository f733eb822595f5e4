// Package wizard runs the admin's multi-step conversational flows: one
// question per message, answers accumulated in a session, a single commit at
// the end. Sessions live in a pluggable store so deployments can keep them
// in memory or in Redis.
package wizard

import (
	"context"
	"sync"
	"time"
)

// Session is one in-progress wizard for one admin. Field values are kept as
// canonical strings (prices in minor units, lists comma-joined) so memory and
// Redis stores serialize identically.
type Session struct {
	Wizard    string            `json:"wizard"`
	Step      int               `json:"step"`
	Fields    map[string]string `json:"fields"`
	StartedAt time.Time         `json:"started_at"`
}

// SessionStore persists at most one session per user.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (Session, bool, error)
	Put(ctx context.Context, userID int64, s Session) error
	Delete(ctx context.Context, userID int64) error
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryStore returns a process-local SessionStore for single-instance
// deployments and tests.
func NewMemoryStore() SessionStore {
	return &memoryStore{sessions: make(map[int64]Session)}
}

func (m *memoryStore) Get(_ context.Context, userID int64) (Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok, nil
}

func (m *memoryStore) Put(_ context.Context, userID int64, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
	return nil
}

func (m *memoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
