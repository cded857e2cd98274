package expense

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/kharcha/internal/domain/categorization"
)

func newTestService(store Store) *Service {
	return NewService(store, categorization.DefaultEngine(), discardLogger())
}

func TestLog_BengaliExpenseWithVerb(t *testing.T) {
	clock := testClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	svc := newTestService(store)

	out, err := svc.Log(context.Background(), LogRequest{
		UserIDHash: "u1", MessageID: "m1", Text: "চা ৫০ টাকা খরচ করেছি",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5000), out.Expense.AmountMinor)
	assert.Equal(t, "BDT", out.Expense.CurrencyCode)
	assert.Equal(t, "food", out.Expense.Category)
	assert.False(t, out.Duplicate)
}

func TestLog_ImplicitItem(t *testing.T) {
	clock := testClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	svc := newTestService(store)

	out, err := svc.Log(context.Background(), LogRequest{
		UserIDHash: "u1", MessageID: "m1", Text: "coffee 100",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10000), out.Expense.AmountMinor)
	assert.Equal(t, "BDT", out.Expense.CurrencyCode)
	assert.Equal(t, "food", out.Expense.Category)
}

func TestLog_ForeignCurrencyMarker(t *testing.T) {
	clock := testClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	svc := newTestService(store)

	out, err := svc.Log(context.Background(), LogRequest{
		UserIDHash: "u1", MessageID: "m1", Text: "paid $12.50 for lunch",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1250), out.Expense.AmountMinor)
	assert.Equal(t, "USD", out.Expense.CurrencyCode)
}

func TestLog_DuplicateMessageReturnsOriginal(t *testing.T) {
	clock := testClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	svc := newTestService(store)

	ctx := context.Background()
	req := LogRequest{UserIDHash: "u1", MessageID: "m1", Text: "coffee 100"}
	first, err := svc.Log(ctx, req)
	require.NoError(t, err)

	second, err := svc.Log(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Expense.ID, second.Expense.ID)
	assert.Len(t, store.expenses, 1)
}

func TestLog_NoAmountFails(t *testing.T) {
	clock := testClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	svc := newTestService(store)

	_, err := svc.Log(context.Background(), LogRequest{
		UserIDHash: "u1", MessageID: "m1", Text: "had a great lunch today",
	})
	assert.Error(t, err)
}

func TestExtractMerchant(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"at phrase", "lunch at star kabab", "star kabab"},
		{"from phrase", "bought medicine from lazz pharma", "lazz pharma"},
		{"bengali theke", "আড়ং থেকে জামা কিনেছি", "আড়ং"},
		{"no merchant", "coffee 100", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMerchant(tt.text))
		})
	}
}

func TestLedgerCount(t *testing.T) {
	clock := testClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	svc := newTestService(store)

	ctx := context.Background()
	_, err := svc.Log(ctx, LogRequest{UserIDHash: "u1", MessageID: "m1", Text: "coffee 100"})
	require.NoError(t, err)
	_, err = svc.Log(ctx, LogRequest{UserIDHash: "u1", MessageID: "m2", Text: "tea 20"})
	require.NoError(t, err)

	count, err := svc.LedgerCount(ctx, "u1", 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
