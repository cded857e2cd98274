package cron

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/kharcha/internal/domain/expense"
	"github.com/FACorreiaa/kharcha/internal/notify"
)

func newTestScheduler(t *testing.T) (*Scheduler, *expense.MemoryStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := expense.NewMemoryStore()
	notifier := notify.NewService("", "", "", logger)
	return NewScheduler(store, notifier, "0 9 * * 1", logger), store
}

func TestReconcileTotals_RepairsDrift(t *testing.T) {
	s, store := newTestScheduler(t)
	ctx := context.Background()

	u, err := store.GetOrCreateUser(ctx, "hash-1")
	require.NoError(t, err)
	require.NoError(t, store.Insert(ctx, &expense.Expense{
		UserIDHash: "hash-1", AmountMinor: 5000, CurrencyCode: "BDT", Category: "food",
	}))

	// simulate drift from a crash between insert and totals update
	u.TotalMinor = 99999

	s.reconcileTotals()

	assert.Equal(t, int64(5000), u.TotalMinor)
	assert.Equal(t, int64(1), s.lastReconciled)
}

func TestSendWeeklyDigest_CountsActiveUsers(t *testing.T) {
	s, store := newTestScheduler(t)
	ctx := context.Background()

	_, err := store.GetOrCreateUser(ctx, "hash-1")
	require.NoError(t, err)
	require.NoError(t, store.Insert(ctx, &expense.Expense{
		UserIDHash: "hash-1", AmountMinor: 5000, CurrencyCode: "BDT", Category: "food",
	}))

	// unconfigured notifier logs instead of sending, so this must not error
	s.sendWeeklyDigest()
}

func TestStart_RegistersJobs(t *testing.T) {
	s, _ := newTestScheduler(t)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Len(t, s.cron.Entries(), 2)
}
