package analysis

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/kharcha/internal/domain/expense"
	"github.com/FACorreiaa/kharcha/internal/domain/signals"
)

type fakeLedger struct {
	items []*expense.Expense
}

func (f *fakeLedger) inWindow(from, to time.Time) []*expense.Expense {
	var out []*expense.Expense
	for _, e := range f.items {
		if e.SupersededBy == nil && !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeLedger) SumActive(_ context.Context, _ string, from, to time.Time) (int64, error) {
	var total int64
	for _, e := range f.inWindow(from, to) {
		total += e.AmountMinor
	}
	return total, nil
}

func (f *fakeLedger) SumActiveByCategory(_ context.Context, _ string, from, to time.Time) (map[string]int64, error) {
	totals := make(map[string]int64)
	for _, e := range f.inWindow(from, to) {
		totals[e.Category] += e.AmountMinor
	}
	return totals, nil
}

func (f *fakeLedger) ListActive(_ context.Context, _ string, from, to time.Time) ([]*expense.Expense, error) {
	return f.inWindow(from, to), nil
}

func exp(amountMinor int64, category string, at time.Time) *expense.Expense {
	return &expense.Expense{
		ID:           uuid.New(),
		UserIDHash:   "u1",
		AmountMinor:  amountMinor,
		CurrencyCode: "BDT",
		Category:     category,
		CreatedAt:    at,
	}
}

func testWindow() signals.TimeWindow {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return signals.TimeWindow{From: from, To: from.AddDate(0, 1, 0), Description: "this month"}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSummarize(t *testing.T) {
	win := testWindow()
	ledger := &fakeLedger{items: []*expense.Expense{
		exp(5000, "food", win.From.Add(24*time.Hour)),
		exp(3000, "food", win.From.Add(48*time.Hour)),
		exp(2000, "transport", win.From.Add(72*time.Hour)),
		exp(99900, "shopping", win.From.Add(-24*time.Hour)), // outside window
	}}
	svc := NewService(ledger, testLogger())

	sum, err := svc.Summarize(context.Background(), "u1", win)
	require.NoError(t, err)

	assert.Equal(t, int64(10000), sum.TotalMinor)
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, "food", sum.TopCategory())
	require.Len(t, sum.ByCategory, 2)
	assert.Equal(t, int64(8000), sum.ByCategory[0].TotalMinor)
	assert.InDelta(t, 80.0, sum.ByCategory[0].Percent, 0.001)
}

func TestSummarize_IgnoresSuperseded(t *testing.T) {
	win := testWindow()
	superseded := exp(100000, "food", win.From.Add(time.Hour))
	newer := uuid.New()
	superseded.SupersededBy = &newer

	ledger := &fakeLedger{items: []*expense.Expense{
		superseded,
		exp(4000, "food", win.From.Add(2*time.Hour)),
	}}
	svc := NewService(ledger, testLogger())

	sum, err := svc.Summarize(context.Background(), "u1", win)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), sum.TotalMinor)
	assert.Equal(t, 1, sum.Count)
}

func TestSummarize_Empty(t *testing.T) {
	svc := NewService(&fakeLedger{}, testLogger())
	sum, err := svc.Summarize(context.Background(), "u1", testWindow())
	require.NoError(t, err)
	assert.Zero(t, sum.TotalMinor)
	assert.Empty(t, sum.ByCategory)
	assert.Equal(t, "", sum.TopCategory())
}

func TestCategoryBreakdown(t *testing.T) {
	win := testWindow()
	ledger := &fakeLedger{items: []*expense.Expense{
		exp(5000, "food", win.From.Add(24*time.Hour)),
		exp(2000, "transport", win.From.Add(48*time.Hour)),
		exp(1500, "Food", win.From.Add(72*time.Hour)),
	}}
	svc := NewService(ledger, testLogger())

	out, err := svc.CategoryBreakdown(context.Background(), "u1", "food", win)
	require.NoError(t, err)
	assert.Equal(t, int64(6500), out.TotalMinor, "category match is case-insensitive")
	assert.Len(t, out.Items, 2)
}

func TestWriteCSV(t *testing.T) {
	win := testWindow()
	items := []*expense.Expense{
		exp(5000, "food", win.From.Add(24*time.Hour)),
	}
	items[0].Merchant = "star kabab"

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, items))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "date,amount,currency,category,merchant,description"))
	assert.Contains(t, out, "50.00,BDT,food,star kabab")
}

func TestWriteXLSX(t *testing.T) {
	win := testWindow()
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []*expense.Expense{
		exp(5000, "food", win.From.Add(24*time.Hour)),
	}))
	assert.NotZero(t, buf.Len())
}
