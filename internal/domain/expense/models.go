// Package expense holds the expense ledger: logging chat-parsed expenses,
// querying them, and applying corrections via supersede records.
package expense

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no matching expense exists.
	ErrNotFound = errors.New("expense not found")
	// ErrCandidateSuperseded is returned when a correction races another
	// correction that already superseded the target row.
	ErrCandidateSuperseded = errors.New("correction target already superseded")
	// ErrDuplicateMessage is returned when a message id was already processed.
	ErrDuplicateMessage = errors.New("message already processed")
)

// Expense is a single logged expense. A corrected expense is never mutated
// in place: the old row gets SupersededBy pointing at the replacement.
type Expense struct {
	ID              uuid.UUID
	UserIDHash      string
	AmountMinor     int64
	CurrencyCode    string
	Category        string
	Description     string
	Merchant        string
	CorrelationID   string
	SupersededBy    *uuid.UUID
	CorrectedAt     *time.Time
	CorrectedReason *string
	CreatedAt       time.Time
}

// IsActive reports whether the expense still counts toward totals.
func (e *Expense) IsActive() bool {
	return e.SupersededBy == nil
}

// User is the per-chat-user aggregate row. UserIDHash is the hashed chat
// platform id; raw ids are never stored.
type User struct {
	UserIDHash      string
	TotalMinor      int64
	CurrencyCode    string
	ExpenseCount    int
	LastInteraction time.Time
	CreatedAt       time.Time
}
