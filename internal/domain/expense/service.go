package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/FACorreiaa/kharcha/internal/domain/categorization"
	"github.com/FACorreiaa/kharcha/internal/domain/signals"
	"github.com/FACorreiaa/kharcha/internal/domain/textnorm"
	"github.com/FACorreiaa/kharcha/pkg/money"
)

// Categorizer assigns a category to normalized expense text.
type Categorizer interface {
	Categorize(normalized string) string
	Detect(normalized string) (category, keyword string, ok bool)
}

var _ Categorizer = (*categorization.Engine)(nil)

// Service logs expenses parsed from chat messages.
type Service struct {
	store      Store
	categories Categorizer
	logger     *slog.Logger
}

// NewService creates a new expense service.
func NewService(store Store, categories Categorizer, logger *slog.Logger) *Service {
	return &Service{store: store, categories: categories, logger: logger}
}

// LogRequest carries one chat message already routed as an expense log.
type LogRequest struct {
	UserIDHash string
	MessageID  string
	Text       string
	Signals    signals.Signals
}

// LogResult is the outcome of logging an expense.
type LogResult struct {
	Expense   *Expense
	Duplicate bool
}

// merchant extraction: "at <name>", "from <name>", "থেকে" preceding word.
var merchantRe = regexp.MustCompile(`\b(?:at|from)\s+([a-z][a-z0-9&'. -]{1,40}?)(?:\s+(?:for|today|yesterday)\b|$)`)
var bengaliMerchantRe = regexp.MustCompile(`(\S+)\s+থেকে`)

// Log parses the message into an expense and persists it. The message id acts
// as an idempotency key: redelivered messages return the original expense.
func (s *Service) Log(ctx context.Context, req LogRequest) (*LogResult, error) {
	if req.MessageID != "" {
		existing, err := s.store.FindByCorrelationID(ctx, req.UserIDHash, req.MessageID)
		if err == nil {
			s.logger.InfoContext(ctx, "duplicate message, returning original expense",
				slog.String("correlation_id", req.MessageID))
			return &LogResult{Expense: existing, Duplicate: true}, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("idempotency lookup failed: %w", err)
		}
	}

	normalized := req.Signals.NormalizedText
	if normalized == "" {
		normalized = textnorm.Normalize(req.Text)
	}

	amount, err := parseAmount(normalized)
	if err != nil {
		return nil, err
	}

	e := &Expense{
		UserIDHash:    req.UserIDHash,
		AmountMinor:   amount.Amount(),
		CurrencyCode:  amount.Currency(),
		Category:      s.categories.Categorize(normalized),
		Description:   normalized,
		Merchant:      ExtractMerchant(normalized),
		CorrelationID: req.MessageID,
	}

	if _, err := s.store.GetOrCreateUser(ctx, req.UserIDHash); err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, e); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "expense logged",
		slog.String("expense_id", e.ID.String()),
		slog.Int64("amount_minor", e.AmountMinor),
		slog.String("currency", e.CurrencyCode),
		slog.String("category", e.Category))

	return &LogResult{Expense: e}, nil
}

// parseAmount pulls the first money amount from the message. Implicit item
// messages like "coffee 100" carry no currency marker, so the bare number is
// read as the home currency.
func parseAmount(normalized string) (*money.Money, error) {
	if amt, ok := textnorm.ExtractFirstAmount(normalized); ok {
		code := money.NormalizeCurrencyMarker(firstCurrencyMarker(normalized))
		return money.NewFromFloat(amt, code), nil
	}
	if _, amt, ok := signals.ParseImplicitItem(normalized); ok {
		return money.NewFromFloat(amt, money.BDT), nil
	}
	return nil, fmt.Errorf("no parseable amount in message")
}

var currencyMarkerRe = regexp.MustCompile(`৳|\$|£|€|₹|টাকা|\btk\b|\bbdt\b|\btaka\b`)

func firstCurrencyMarker(normalized string) string {
	return currencyMarkerRe.FindString(normalized)
}

// ExtractMerchant pulls a merchant name from phrases like "lunch at star
// kabab" or "আড়ং থেকে". Empty when no phrase matches.
func ExtractMerchant(normalized string) string {
	if m := merchantRe.FindStringSubmatch(normalized); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := bengaliMerchantRe.FindStringSubmatch(normalized); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// LedgerCount returns the user's active expense count over the trailing
// window. The router uses the 30 day count for coaching eligibility.
func (s *Service) LedgerCount(ctx context.Context, userIDHash string, window time.Duration) (int, error) {
	return s.store.CountSince(ctx, userIDHash, time.Now().Add(-window))
}
