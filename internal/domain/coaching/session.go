// Package coaching tracks active coaching sessions and produces spending
// advice for eligible users.
package coaching

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// sessionTTL bounds how long an idle session stays active. Get treats
// anything older as ended so a forgotten session cannot capture routing
// forever.
const sessionTTL = 30 * time.Minute

// Session is an active coaching conversation. A user has at most one.
type Session struct {
	UserIDHash   string
	State        string
	StartedAt    time.Time
	LastActivity time.Time
}

// Session states.
const (
	StateActive = "active"
	StateEnded  = "ended"
)

// SessionStore persists coaching sessions.
type SessionStore interface {
	// Get returns the user's active session, or nil when none exists or the
	// session has been idle past the TTL.
	Get(ctx context.Context, userIDHash string) (*Session, error)
	// Start opens a session, reviving an ended one if present.
	Start(ctx context.Context, userIDHash string) (*Session, error)
	// Touch bumps the session's last activity time.
	Touch(ctx context.Context, userIDHash string) error
	// End closes the user's active session. No-op when none exists.
	End(ctx context.Context, userIDHash string) error
}

// PostgresSessionStore implements SessionStore on PostgreSQL.
type PostgresSessionStore struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionStore creates a session store.
func NewPostgresSessionStore(pool *pgxpool.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool}
}

// Get returns the user's active, non-expired session, or nil.
func (s *PostgresSessionStore) Get(ctx context.Context, userIDHash string) (*Session, error) {
	query := `
		SELECT user_id_hash, state, started_at, last_activity
		FROM coaching_sessions
		WHERE user_id_hash = $1 AND state = $2 AND last_activity > $3`

	session := &Session{}
	err := s.pool.QueryRow(ctx, query, userIDHash, StateActive, time.Now().Add(-sessionTTL)).Scan(
		&session.UserIDHash,
		&session.State,
		&session.StartedAt,
		&session.LastActivity,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coaching session: %w", err)
	}
	return session, nil
}

// Start opens a session, reviving an ended one if present.
func (s *PostgresSessionStore) Start(ctx context.Context, userIDHash string) (*Session, error) {
	query := `
		INSERT INTO coaching_sessions (user_id_hash, state, started_at, last_activity)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (user_id_hash) DO UPDATE
		SET state = $2, started_at = now(), last_activity = now()
		RETURNING user_id_hash, state, started_at, last_activity`

	session := &Session{}
	err := s.pool.QueryRow(ctx, query, userIDHash, StateActive).Scan(
		&session.UserIDHash,
		&session.State,
		&session.StartedAt,
		&session.LastActivity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start coaching session: %w", err)
	}
	return session, nil
}

// Touch bumps the session's last activity time.
func (s *PostgresSessionStore) Touch(ctx context.Context, userIDHash string) error {
	query := `UPDATE coaching_sessions SET last_activity = now() WHERE user_id_hash = $1 AND state = $2`
	if _, err := s.pool.Exec(ctx, query, userIDHash, StateActive); err != nil {
		return fmt.Errorf("failed to touch coaching session: %w", err)
	}
	return nil
}

// End closes the user's active session.
func (s *PostgresSessionStore) End(ctx context.Context, userIDHash string) error {
	query := `UPDATE coaching_sessions SET state = $2 WHERE user_id_hash = $1`
	if _, err := s.pool.Exec(ctx, query, userIDHash, StateEnded); err != nil {
		return fmt.Errorf("failed to end coaching session: %w", err)
	}
	return nil
}

// MemorySessionStore is an in-memory SessionStore for tests and stub mode.
// The zero Now uses wall-clock time; tests inject a fake clock.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	Now      func() time.Time
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session), Now: time.Now}
}

func (m *MemorySessionStore) Get(_ context.Context, userIDHash string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userIDHash]
	if !ok || s.State != StateActive {
		return nil, nil
	}
	if m.Now().Sub(s.LastActivity) > sessionTTL {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (m *MemorySessionStore) Start(_ context.Context, userIDHash string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Now()
	s := &Session{UserIDHash: userIDHash, State: StateActive, StartedAt: now, LastActivity: now}
	m.sessions[userIDHash] = s
	copied := *s
	return &copied, nil
}

func (m *MemorySessionStore) Touch(_ context.Context, userIDHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userIDHash]; ok && s.State == StateActive {
		s.LastActivity = m.Now()
	}
	return nil
}

func (m *MemorySessionStore) End(_ context.Context, userIDHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userIDHash]; ok {
		s.State = StateEnded
	}
	return nil
}
