package expense

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the persistence operations the expense services need.
type Store interface {
	// Insert writes a new expense and bumps the user's running totals in one
	// transaction. A zero CreatedAt takes the store clock; statement imports
	// pass the row's own date.
	Insert(ctx context.Context, e *Expense) error

	// GetByID fetches one expense. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Expense, error)

	// QueryRecent returns the user's active (non-superseded) expenses created
	// after since, newest first, capped at limit.
	QueryRecent(ctx context.Context, userIDHash string, since time.Time, limit int) ([]*Expense, error)

	// FindByCorrelationID looks up an expense by the chat message id that
	// produced it. Returns ErrNotFound when absent.
	FindByCorrelationID(ctx context.Context, userIDHash, correlationID string) (*Expense, error)

	// SupersedeAndInsert atomically marks old as superseded by the
	// replacement, inserts the replacement, and applies the signed amount
	// delta to the user's totals. Returns ErrCandidateSuperseded when the
	// old row was already superseded by a concurrent correction.
	SupersedeAndInsert(ctx context.Context, old *Expense, replacement *Expense, reason string) error

	// GetOrCreateUser returns the user aggregate row, creating it on first
	// contact.
	GetOrCreateUser(ctx context.Context, userIDHash string) (*User, error)

	// TouchUser updates the user's last interaction timestamp.
	TouchUser(ctx context.Context, userIDHash string, at time.Time) error

	// SumActive sums active expense amounts for a user inside [from, to).
	SumActive(ctx context.Context, userIDHash string, from, to time.Time) (int64, error)

	// SumActiveByCategory aggregates active expense amounts per category
	// inside [from, to).
	SumActiveByCategory(ctx context.Context, userIDHash string, from, to time.Time) (map[string]int64, error)

	// CountSince counts active expenses created after since.
	CountSince(ctx context.Context, userIDHash string, since time.Time) (int, error)

	// ListActive returns active expenses inside [from, to), newest first.
	ListActive(ctx context.Context, userIDHash string, from, to time.Time) ([]*Expense, error)

	// ListUsers returns every user aggregate row.
	ListUsers(ctx context.Context) ([]*User, error)

	// ReconcileTotals re-derives each user's running total and expense count
	// from the active expense rows, repairing any drift. Returns the number
	// of users whose totals changed.
	ReconcileTotals(ctx context.Context) (int64, error)
}
