package expense

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const expenseColumns = `id, user_id_hash, amount_minor, currency_code, category, description, merchant, correlation_id, superseded_by, corrected_at, corrected_reason, created_at`

// DB is the subset of pgxpool.Pool the store needs. pgxmock satisfies it too.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	pool DB
}

// NewPostgresStore creates a new PostgreSQL expense store.
func NewPostgresStore(pool DB) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func scanExpense(row pgx.Row) (*Expense, error) {
	e := &Expense{}
	err := row.Scan(
		&e.ID,
		&e.UserIDHash,
		&e.AmountMinor,
		&e.CurrencyCode,
		&e.Category,
		&e.Description,
		&e.Merchant,
		&e.CorrelationID,
		&e.SupersededBy,
		&e.CorrectedAt,
		&e.CorrectedReason,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Insert writes a new expense and bumps the user's totals in one transaction.
func (s *PostgresStore) Insert(ctx context.Context, e *Expense) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	// Imported statement rows carry their own date; chat rows leave
	// CreatedAt zero and take the database clock.
	var createdAt any
	if !e.CreatedAt.IsZero() {
		createdAt = e.CreatedAt
	}

	insertQuery := `
		INSERT INTO expenses (id, user_id_hash, amount_minor, currency_code, category, description, merchant, correlation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9::timestamptz, now()))
		RETURNING created_at`

	err = tx.QueryRow(ctx, insertQuery,
		e.ID,
		e.UserIDHash,
		e.AmountMinor,
		e.CurrencyCode,
		e.Category,
		e.Description,
		e.Merchant,
		e.CorrelationID,
		createdAt,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	updateQuery := `
		UPDATE users
		SET total_minor = total_minor + $2,
		    expense_count = expense_count + 1,
		    last_interaction = now()
		WHERE user_id_hash = $1`
	_, err = tx.Exec(ctx, updateQuery, e.UserIDHash, e.AmountMinor)
	if err != nil {
		return fmt.Errorf("failed to update user totals: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID retrieves an expense by id.
func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	e, err := scanExpense(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

// QueryRecent returns active expenses created after since, newest first.
func (s *PostgresStore) QueryRecent(ctx context.Context, userIDHash string, since time.Time, limit int) ([]*Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE user_id_hash = $1
		  AND superseded_by IS NULL
		  AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := s.pool.Query(ctx, query, userIDHash, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent expenses: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

// FindByCorrelationID looks up an expense by the chat message id that produced it.
func (s *PostgresStore) FindByCorrelationID(ctx context.Context, userIDHash, correlationID string) (*Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE user_id_hash = $1 AND correlation_id = $2`

	e, err := scanExpense(s.pool.QueryRow(ctx, query, userIDHash, correlationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find expense by correlation id: %w", err)
	}
	return e, nil
}

// SupersedeAndInsert atomically replaces old with replacement and applies the
// signed amount delta to the user's totals. The conditional UPDATE on
// superseded_by IS NULL is what detects a concurrent correction.
func (s *PostgresStore) SupersedeAndInsert(ctx context.Context, old *Expense, replacement *Expense, reason string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if replacement.ID == uuid.Nil {
		replacement.ID = uuid.New()
	}

	insertQuery := `
		INSERT INTO expenses (id, user_id_hash, amount_minor, currency_code, category, description, merchant, correlation_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	err = tx.QueryRow(ctx, insertQuery,
		replacement.ID,
		replacement.UserIDHash,
		replacement.AmountMinor,
		replacement.CurrencyCode,
		replacement.Category,
		replacement.Description,
		replacement.Merchant,
		replacement.CorrelationID,
	).Scan(&replacement.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert replacement expense: %w", err)
	}

	supersedeQuery := `
		UPDATE expenses
		SET superseded_by = $2, corrected_at = now(), corrected_reason = $3
		WHERE id = $1 AND superseded_by IS NULL`
	result, err := tx.Exec(ctx, supersedeQuery, old.ID, replacement.ID, reason)
	if err != nil {
		return fmt.Errorf("failed to supersede expense: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCandidateSuperseded
	}

	delta := replacement.AmountMinor - old.AmountMinor
	updateQuery := `
		UPDATE users
		SET total_minor = total_minor + $2,
		    last_interaction = now()
		WHERE user_id_hash = $1`
	_, err = tx.Exec(ctx, updateQuery, old.UserIDHash, delta)
	if err != nil {
		return fmt.Errorf("failed to apply totals delta: %w", err)
	}

	return tx.Commit(ctx)
}

// GetOrCreateUser returns the user aggregate row, creating it on first contact.
func (s *PostgresStore) GetOrCreateUser(ctx context.Context, userIDHash string) (*User, error) {
	query := `
		INSERT INTO users (user_id_hash, currency_code)
		VALUES ($1, 'BDT')
		ON CONFLICT (user_id_hash) DO UPDATE SET last_interaction = now()
		RETURNING user_id_hash, total_minor, currency_code, expense_count, last_interaction, created_at`

	u := &User{}
	err := s.pool.QueryRow(ctx, query, userIDHash).Scan(
		&u.UserIDHash,
		&u.TotalMinor,
		&u.CurrencyCode,
		&u.ExpenseCount,
		&u.LastInteraction,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}
	return u, nil
}

// TouchUser updates the user's last interaction timestamp.
func (s *PostgresStore) TouchUser(ctx context.Context, userIDHash string, at time.Time) error {
	query := `UPDATE users SET last_interaction = $2 WHERE user_id_hash = $1`
	_, err := s.pool.Exec(ctx, query, userIDHash, at)
	if err != nil {
		return fmt.Errorf("failed to touch user: %w", err)
	}
	return nil
}

// SumActive sums active expense amounts inside [from, to).
func (s *PostgresStore) SumActive(ctx context.Context, userIDHash string, from, to time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount_minor), 0)
		FROM expenses
		WHERE user_id_hash = $1
		  AND superseded_by IS NULL
		  AND created_at >= $2 AND created_at < $3`

	var total int64
	err := s.pool.QueryRow(ctx, query, userIDHash, from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return total, nil
}

// SumActiveByCategory aggregates active expense amounts per category.
func (s *PostgresStore) SumActiveByCategory(ctx context.Context, userIDHash string, from, to time.Time) (map[string]int64, error) {
	query := `
		SELECT category, COALESCE(SUM(amount_minor), 0)
		FROM expenses
		WHERE user_id_hash = $1
		  AND superseded_by IS NULL
		  AND created_at >= $2 AND created_at < $3
		GROUP BY category`

	rows, err := s.pool.Query(ctx, query, userIDHash, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by category: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var category string
		var sum int64
		if err := rows.Scan(&category, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals[category] = sum
	}
	return totals, rows.Err()
}

// CountSince counts active expenses created after since.
func (s *PostgresStore) CountSince(ctx context.Context, userIDHash string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM expenses
		WHERE user_id_hash = $1
		  AND superseded_by IS NULL
		  AND created_at >= $2`

	var count int
	err := s.pool.QueryRow(ctx, query, userIDHash, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}

// ListActive returns active expenses inside [from, to), newest first.
func (s *PostgresStore) ListActive(ctx context.Context, userIDHash string, from, to time.Time) ([]*Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE user_id_hash = $1
		  AND superseded_by IS NULL
		  AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, userIDHash, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

// ListUsers returns every user aggregate row.
func (s *PostgresStore) ListUsers(ctx context.Context) ([]*User, error) {
	query := `
		SELECT user_id_hash, total_minor, currency_code, expense_count, last_interaction, created_at
		FROM users
		ORDER BY last_interaction DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(&u.UserIDHash, &u.TotalMinor, &u.CurrencyCode, &u.ExpenseCount, &u.LastInteraction, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ReconcileTotals re-derives users.total_minor and users.expense_count from
// the active expense rows. Correction deltas keep the totals current in the
// hot path; this repairs any drift left by crashes mid-transaction.
func (s *PostgresStore) ReconcileTotals(ctx context.Context) (int64, error) {
	query := `
		UPDATE users u
		SET total_minor = derived.total, expense_count = derived.count
		FROM (
			SELECT user_id_hash,
			       COALESCE(SUM(amount_minor), 0) AS total,
			       COUNT(*) AS count
			FROM expenses
			WHERE superseded_by IS NULL
			GROUP BY user_id_hash
		) AS derived
		WHERE u.user_id_hash = derived.user_id_hash
		  AND (u.total_minor <> derived.total OR u.expense_count <> derived.count)`

	tag, err := s.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile totals: %w", err)
	}
	return tag.RowsAffected(), nil
}

func collectExpenses(rows pgx.Rows) ([]*Expense, error) {
	var out []*Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
