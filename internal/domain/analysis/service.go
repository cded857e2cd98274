// Package analysis builds spending summaries and category breakdowns over a
// parsed time window.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/FACorreiaa/kharcha/internal/domain/expense"
	"github.com/FACorreiaa/kharcha/internal/domain/signals"
	"github.com/FACorreiaa/kharcha/pkg/money"
)

// Ledger is the read side of the expense store the analysis service needs.
type Ledger interface {
	SumActive(ctx context.Context, userIDHash string, from, to time.Time) (int64, error)
	SumActiveByCategory(ctx context.Context, userIDHash string, from, to time.Time) (map[string]int64, error)
	ListActive(ctx context.Context, userIDHash string, from, to time.Time) ([]*expense.Expense, error)
}

// Service computes spending summaries.
type Service struct {
	ledger Ledger
	logger *slog.Logger
}

// NewService creates an analysis service.
func NewService(ledger Ledger, logger *slog.Logger) *Service {
	return &Service{ledger: ledger, logger: logger}
}

// CategoryTotal is one category's share of a summary.
type CategoryTotal struct {
	Category   string
	TotalMinor int64
	Percent    float64
}

// Summary is the spending picture for a user inside a window.
type Summary struct {
	Window       signals.TimeWindow
	TotalMinor   int64
	CurrencyCode string
	Count        int
	ByCategory   []CategoryTotal
}

// TopCategory returns the largest category, or empty when nothing was spent.
func (s *Summary) TopCategory() string {
	if len(s.ByCategory) == 0 {
		return ""
	}
	return s.ByCategory[0].Category
}

// Total returns the summary total as Money.
func (s *Summary) Total() *money.Money {
	return money.New(s.TotalMinor, s.CurrencyCode)
}

// Summarize aggregates active expenses inside the window. Categories are
// sorted by spend, largest first.
func (s *Service) Summarize(ctx context.Context, userIDHash string, win signals.TimeWindow) (*Summary, error) {
	total, err := s.ledger.SumActive(ctx, userIDHash, win.From, win.To)
	if err != nil {
		return nil, fmt.Errorf("failed to total window: %w", err)
	}
	byCat, err := s.ledger.SumActiveByCategory(ctx, userIDHash, win.From, win.To)
	if err != nil {
		return nil, fmt.Errorf("failed to break down window: %w", err)
	}
	items, err := s.ledger.ListActive(ctx, userIDHash, win.From, win.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list window: %w", err)
	}

	summary := &Summary{
		Window:       win,
		TotalMinor:   total,
		CurrencyCode: money.BDT,
		Count:        len(items),
	}
	for cat, sum := range byCat {
		pct := 0.0
		if total > 0 {
			pct = float64(sum) / float64(total) * 100
		}
		summary.ByCategory = append(summary.ByCategory, CategoryTotal{
			Category:   cat,
			TotalMinor: sum,
			Percent:    pct,
		})
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		a, b := summary.ByCategory[i], summary.ByCategory[j]
		if a.TotalMinor != b.TotalMinor {
			return a.TotalMinor > b.TotalMinor
		}
		return a.Category < b.Category
	})

	s.logger.InfoContext(ctx, "summary built",
		slog.String("window", win.Description),
		slog.Int64("total_minor", total),
		slog.Int("categories", len(summary.ByCategory)))
	return summary, nil
}

// Export lists the active expenses inside the window, oldest first, for
// download as CSV or XLSX.
func (s *Service) Export(ctx context.Context, userIDHash string, win signals.TimeWindow) ([]*expense.Expense, error) {
	items, err := s.ledger.ListActive(ctx, userIDHash, win.From, win.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list window: %w", err)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

// CategorySummary is the spend of one category inside a window, with the
// individual expenses behind it.
type CategorySummary struct {
	Category   string
	Window     signals.TimeWindow
	TotalMinor int64
	Items      []*expense.Expense
}

// CategoryBreakdown totals one category inside the window. Matching is
// case-insensitive on the stored category name.
func (s *Service) CategoryBreakdown(ctx context.Context, userIDHash, category string, win signals.TimeWindow) (*CategorySummary, error) {
	items, err := s.ledger.ListActive(ctx, userIDHash, win.From, win.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list window: %w", err)
	}

	out := &CategorySummary{Category: strings.ToLower(category), Window: win}
	for _, e := range items {
		if strings.EqualFold(e.Category, category) {
			out.TotalMinor += e.AmountMinor
			out.Items = append(out.Items, e)
		}
	}
	return out, nil
}
