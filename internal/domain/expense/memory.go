package expense

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and database-less stub mode.
// The zero Now uses wall-clock time; tests inject a fake clock.
type MemoryStore struct {
	mu       sync.Mutex
	expenses []*Expense
	users    map[string]*User
	Now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*User), Now: time.Now}
}

func (m *MemoryStore) Insert(_ context.Context, e *Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := m.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	m.expenses = append(m.expenses, e)
	if u, ok := m.users[e.UserIDHash]; ok {
		u.TotalMinor += e.AmountMinor
		u.ExpenseCount++
		u.LastInteraction = now
	}
	return nil
}

func (m *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findByID(id)
}

func (m *MemoryStore) findByID(id uuid.UUID) (*Expense, error) {
	for _, e := range m.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) QueryRecent(_ context.Context, user string, since time.Time, limit int) ([]*Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Expense
	for _, e := range m.expenses {
		if e.UserIDHash == user && e.SupersededBy == nil && !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) FindByCorrelationID(_ context.Context, user, correlationID string) (*Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if correlationID == "" {
		return nil, ErrNotFound
	}
	for _, e := range m.expenses {
		if e.UserIDHash == user && e.CorrelationID == correlationID {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) SupersedeAndInsert(_ context.Context, old, replacement *Expense, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, err := m.findByID(old.ID)
	if err != nil {
		return err
	}
	if stored.SupersededBy != nil {
		return ErrCandidateSuperseded
	}
	if replacement.ID == uuid.Nil {
		replacement.ID = uuid.New()
	}
	now := m.Now()
	replacement.CreatedAt = now
	m.expenses = append(m.expenses, replacement)
	stored.SupersededBy = &replacement.ID
	stored.CorrectedAt = &now
	stored.CorrectedReason = &reason
	if u, ok := m.users[old.UserIDHash]; ok {
		u.TotalMinor += replacement.AmountMinor - old.AmountMinor
		u.LastInteraction = now
	}
	return nil
}

func (m *MemoryStore) GetOrCreateUser(_ context.Context, user string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[user]; ok {
		return u, nil
	}
	u := &User{UserIDHash: user, CurrencyCode: "BDT", CreatedAt: m.Now()}
	m.users[user] = u
	return u, nil
}

func (m *MemoryStore) TouchUser(_ context.Context, user string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[user]; ok {
		u.LastInteraction = at
	}
	return nil
}

func (m *MemoryStore) SumActive(_ context.Context, user string, from, to time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, e := range m.active(user, from, to) {
		total += e.AmountMinor
	}
	return total, nil
}

func (m *MemoryStore) SumActiveByCategory(_ context.Context, user string, from, to time.Time) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	totals := make(map[string]int64)
	for _, e := range m.active(user, from, to) {
		totals[e.Category] += e.AmountMinor
	}
	return totals, nil
}

func (m *MemoryStore) CountSince(_ context.Context, user string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, e := range m.expenses {
		if e.UserIDHash == user && e.SupersededBy == nil && !e.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) ListActive(_ context.Context, user string, from, to time.Time) ([]*Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.active(user, from, to)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) ListUsers(_ context.Context) ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserIDHash < out[j].UserIDHash })
	return out, nil
}

func (m *MemoryStore) ReconcileTotals(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	totals := make(map[string]int64)
	counts := make(map[string]int)
	for _, e := range m.expenses {
		if e.SupersededBy == nil {
			totals[e.UserIDHash] += e.AmountMinor
			counts[e.UserIDHash]++
		}
	}
	var changed int64
	for hash, u := range m.users {
		if u.TotalMinor != totals[hash] || u.ExpenseCount != counts[hash] {
			u.TotalMinor = totals[hash]
			u.ExpenseCount = counts[hash]
			changed++
		}
	}
	return changed, nil
}

func (m *MemoryStore) active(user string, from, to time.Time) []*Expense {
	var out []*Expense
	for _, e := range m.expenses {
		if e.UserIDHash == user && e.SupersededBy == nil &&
			!e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			out = append(out, e)
		}
	}
	return out
}
