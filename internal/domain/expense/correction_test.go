package expense

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/kharcha/internal/domain/categorization"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newMemStore(clock func() time.Time) *MemoryStore {
	s := NewMemoryStore()
	s.Now = clock
	return s
}

// failingSupersede forces SupersedeAndInsert to fail, simulating a lost race.
type failingSupersede struct {
	*MemoryStore
	err error
}

func (f *failingSupersede) SupersedeAndInsert(context.Context, *Expense, *Expense, string) error {
	return f.err
}

func newTestCorrector(store Store) *Corrector {
	return NewCorrector(store, categorization.DefaultEngine(), discardLogger())
}

func TestCorrect_SupersedesRecentExpense(t *testing.T) {
	clock := testClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	svc := NewService(store, categorization.DefaultEngine(), discardLogger())

	ctx := context.Background()
	logged, err := svc.Log(ctx, LogRequest{UserIDHash: "u1", MessageID: "m1", Text: "coffee 50"})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), logged.Expense.AmountMinor)

	corrector := newTestCorrector(store)
	corrector.now = clock
	out, err := corrector.Correct(ctx, CorrectionRequest{UserIDHash: "u1", MessageID: "m2", Text: "sorry, I meant 500"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeApplied, out.Kind)
	assert.Equal(t, int64(5000), out.Old.AmountMinor)
	assert.Equal(t, int64(50000), out.New.AmountMinor)
	assert.Equal(t, int64(45000), out.DeltaMin)
	assert.Equal(t, "food", out.New.Category, "category inherited from candidate")
	assert.Equal(t, "BDT", out.New.CurrencyCode)

	old, err := store.GetByID(ctx, out.Old.ID)
	require.NoError(t, err)
	require.NotNil(t, old.SupersededBy)
	assert.Equal(t, out.New.ID, *old.SupersededBy)
	require.NotNil(t, old.CorrectedAt)

	u, err := store.GetOrCreateUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), u.TotalMinor, "totals reflect only the active expense")
}

func TestCorrect_NoCandidateLogsAsNew(t *testing.T) {
	clock := testClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	corrector := newTestCorrector(store)
	corrector.now = clock

	out, err := corrector.Correct(context.Background(), CorrectionRequest{
		UserIDHash: "u1", MessageID: "m1", Text: "actually it was ৳300 for lunch",
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeLoggedAsNew, out.Kind)
	assert.Nil(t, out.Old)
	assert.Equal(t, int64(30000), out.New.AmountMinor)
	assert.Equal(t, "food", out.New.Category)
}

func TestCorrect_OutsideWindowLogsAsNew(t *testing.T) {
	start := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	clock := testClock(start)
	store := newMemStore(clock)
	svc := NewService(store, categorization.DefaultEngine(), discardLogger())

	ctx := context.Background()
	_, err := svc.Log(ctx, LogRequest{UserIDHash: "u1", MessageID: "m1", Text: "coffee 50"})
	require.NoError(t, err)

	corrector := newTestCorrector(store)
	// correction arrives 20 minutes later, past the 10 minute window
	corrector.now = func() time.Time { return start.Add(20 * time.Minute) }

	out, err := corrector.Correct(ctx, CorrectionRequest{UserIDHash: "u1", MessageID: "m2", Text: "i meant 500"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeLoggedAsNew, out.Kind)
}

func TestCorrect_IdempotentReplay(t *testing.T) {
	clock := testClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	svc := NewService(store, categorization.DefaultEngine(), discardLogger())

	ctx := context.Background()
	_, err := svc.Log(ctx, LogRequest{UserIDHash: "u1", MessageID: "m1", Text: "coffee 50"})
	require.NoError(t, err)

	corrector := newTestCorrector(store)
	corrector.now = clock

	req := CorrectionRequest{UserIDHash: "u1", MessageID: "m2", Text: "i meant 500"}
	first, err := corrector.Correct(ctx, req)
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, first.Kind)

	second, err := corrector.Correct(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second.Kind)
	assert.Equal(t, first.New.ID, second.New.ID)

	// exactly one superseded and one active row for the pair
	superseded := 0
	for _, e := range store.expenses {
		if e.SupersededBy != nil {
			superseded++
		}
	}
	assert.Equal(t, 1, superseded)

	u, _ := store.GetOrCreateUser(ctx, "u1")
	assert.Equal(t, int64(50000), u.TotalMinor, "replay must not double-apply the delta")
}

func TestCorrect_CategoryMatchBeatsRecency(t *testing.T) {
	clock := testClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	svc := NewService(store, categorization.DefaultEngine(), discardLogger())

	ctx := context.Background()
	coffee, err := svc.Log(ctx, LogRequest{UserIDHash: "u1", MessageID: "m1", Text: "coffee 100"})
	require.NoError(t, err)
	rickshaw, err := svc.Log(ctx, LogRequest{UserIDHash: "u1", MessageID: "m2", Text: "spent ৳60 on rickshaw"})
	require.NoError(t, err)
	require.Equal(t, "transport", rickshaw.Expense.Category)

	corrector := newTestCorrector(store)
	corrector.now = clock

	// mentions coffee, so the older food expense outscores the newer one
	out, err := corrector.Correct(ctx, CorrectionRequest{
		UserIDHash: "u1", MessageID: "m3", Text: "the coffee was actually 150",
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, out.Kind)
	assert.Equal(t, coffee.Expense.ID, out.Old.ID)
	assert.Equal(t, "actually", out.Reason)
}

func TestCorrect_LowScoreFallsBackToMostRecent(t *testing.T) {
	clock := testClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	svc := NewService(store, categorization.DefaultEngine(), discardLogger())

	ctx := context.Background()
	_, err := svc.Log(ctx, LogRequest{UserIDHash: "u1", MessageID: "m1", Text: "coffee 100"})
	require.NoError(t, err)
	latest, err := svc.Log(ctx, LogRequest{UserIDHash: "u1", MessageID: "m2", Text: "spent ৳60 on rickshaw"})
	require.NoError(t, err)

	corrector := newTestCorrector(store)
	corrector.now = clock

	out, err := corrector.Correct(ctx, CorrectionRequest{UserIDHash: "u1", MessageID: "m3", Text: "i meant 80"})
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, out.Kind)
	assert.Equal(t, latest.Expense.ID, out.Old.ID)
}

func TestCorrect_RaceReturnsError(t *testing.T) {
	clock := testClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	mem := newMemStore(clock)
	svc := NewService(mem, categorization.DefaultEngine(), discardLogger())

	ctx := context.Background()
	_, err := svc.Log(ctx, LogRequest{UserIDHash: "u1", MessageID: "m1", Text: "coffee 50"})
	require.NoError(t, err)

	corrector := newTestCorrector(&failingSupersede{MemoryStore: mem, err: ErrCandidateSuperseded})
	corrector.now = clock

	_, err = corrector.Correct(ctx, CorrectionRequest{UserIDHash: "u1", MessageID: "m2", Text: "i meant 500"})
	assert.ErrorIs(t, err, ErrCandidateSuperseded)
}

func TestCorrect_NoAmountFails(t *testing.T) {
	clock := testClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	corrector := newTestCorrector(store)
	corrector.now = clock

	_, err := corrector.Correct(context.Background(), CorrectionRequest{
		UserIDHash: "u1", MessageID: "m1", Text: "that was wrong",
	})
	assert.Error(t, err)
}

func TestClassifyReason(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"actually it was 500", "actually"},
		{"typo, 500 not 50", "typo fix"},
		{"it should be 500", "should be"},
		{"আসলে ৫০০ টাকা", "actually"},
		{"i meant 500", "amount correction"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyReason(tt.text))
		})
	}
}

func TestTotalsInvariant(t *testing.T) {
	clock := testClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	svc := NewService(store, categorization.DefaultEngine(), discardLogger())
	corrector := newTestCorrector(store)
	corrector.now = clock

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := svc.Log(ctx, LogRequest{
			UserIDHash: "u1",
			MessageID:  fmt.Sprintf("log-%d", i),
			Text:       fmt.Sprintf("spent ৳%d on lunch", (i+1)*100),
		})
		require.NoError(t, err)
	}
	_, err := corrector.Correct(ctx, CorrectionRequest{UserIDHash: "u1", MessageID: "c1", Text: "i meant 250"})
	require.NoError(t, err)
	_, err = corrector.Correct(ctx, CorrectionRequest{UserIDHash: "u1", MessageID: "c2", Text: "actually 300"})
	require.NoError(t, err)

	var activeSum int64
	for _, e := range store.expenses {
		if e.SupersededBy == nil {
			activeSum += e.AmountMinor
		}
	}
	u, _ := store.GetOrCreateUser(ctx, "u1")
	assert.Equal(t, activeSum, u.TotalMinor)
}
