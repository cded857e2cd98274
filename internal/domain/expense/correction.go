package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/kharcha/internal/domain/textnorm"
	"github.com/FACorreiaa/kharcha/pkg/money"
)

// Candidate matching parameters for corrections.
const (
	correctionWindow    = 10 * time.Minute
	maxCandidates       = 5
	categoryMatchScore  = 10
	merchantMatchScore  = 5
	recencyBonus        = 1
	minScoreThreshold   = 5
	minMerchantFragment = 3
)

// OutcomeKind is the terminal state of a correction request.
type OutcomeKind string

const (
	// OutcomeApplied means a prior expense was superseded by the new values.
	OutcomeApplied OutcomeKind = "applied"
	// OutcomeLoggedAsNew means no candidate existed in the window, so the
	// parsed target was logged as a fresh expense. A designed fallback, not
	// an error.
	OutcomeLoggedAsNew OutcomeKind = "logged_as_new"
	// OutcomeDuplicate means this message id was already processed; nothing
	// was mutated.
	OutcomeDuplicate OutcomeKind = "duplicate"
)

// CorrectionOutcome reports what a correction did.
type CorrectionOutcome struct {
	Kind     OutcomeKind
	Old      *Expense // set when Kind == OutcomeApplied
	New      *Expense
	DeltaMin int64 // signed new − old, zero unless applied
	Reason   string
}

// CorrectionRequest carries one correction-style chat message.
type CorrectionRequest struct {
	UserIDHash string
	MessageID  string
	Text       string
}

// Corrector runs the correction workflow: parse target, find candidates,
// then supersede or fall back to logging as new.
type Corrector struct {
	store      Store
	categories Categorizer
	logger     *slog.Logger
	now        func() time.Time
}

// NewCorrector creates a correction handler.
func NewCorrector(store Store, categories Categorizer, logger *slog.Logger) *Corrector {
	return &Corrector{store: store, categories: categories, logger: logger, now: time.Now}
}

// bare numbers are valid amounts in a correction context
var bareNumberRe = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?\b|\b\d+(?:\.\d{1,2})?\b`)

// reason classification phrases, first match wins
var reasonPhrases = []struct {
	re     *regexp.Regexp
	reason string
}{
	{regexp.MustCompile(`\bactually\b|আসলে`), "actually"},
	{regexp.MustCompile(`\btypo\b|ভুল করে`), "typo fix"},
	{regexp.MustCompile(`\bshould be\b|হওয়া উচিত`), "should be"},
}

// Correct applies a correction message against the user's recent expenses.
// Replaying the same message id returns OutcomeDuplicate without mutating
// anything.
func (c *Corrector) Correct(ctx context.Context, req CorrectionRequest) (*CorrectionOutcome, error) {
	normalized := textnorm.Normalize(req.Text)

	// idempotency: a prior run of this exact message already produced a row
	if req.MessageID != "" {
		existing, err := c.store.FindByCorrelationID(ctx, req.UserIDHash, req.MessageID)
		if err == nil {
			return &CorrectionOutcome{Kind: OutcomeDuplicate, New: existing}, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("idempotency lookup failed: %w", err)
		}
	}

	target, err := c.parseTarget(normalized)
	if err != nil {
		return nil, err
	}

	since := c.now().Add(-correctionWindow)
	candidates, err := c.store.QueryRecent(ctx, req.UserIDHash, since, maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("candidate query failed: %w", err)
	}

	if len(candidates) == 0 {
		return c.logAsNew(ctx, req, target, normalized)
	}

	chosen := pickCandidate(candidates, target)
	replacement := buildReplacement(req, target, chosen, normalized)
	reason := classifyReason(normalized)

	if err := c.store.SupersedeAndInsert(ctx, chosen, replacement, reason); err != nil {
		if errors.Is(err, ErrCandidateSuperseded) {
			c.logger.WarnContext(ctx, "correction race lost, candidate already superseded",
				slog.String("candidate_id", chosen.ID.String()))
		}
		return nil, err
	}

	delta := replacement.AmountMinor - chosen.AmountMinor
	c.logger.InfoContext(ctx, "correction applied",
		slog.String("old_id", chosen.ID.String()),
		slog.String("new_id", replacement.ID.String()),
		slog.Int64("delta_minor", delta),
		slog.String("reason", reason))

	return &CorrectionOutcome{
		Kind:     OutcomeApplied,
		Old:      chosen,
		New:      replacement,
		DeltaMin: delta,
		Reason:   reason,
	}, nil
}

// correctionTarget is the parsed content of a correction message. Category
// and merchant are hints; empty hints inherit from the matched candidate.
type correctionTarget struct {
	amount   *money.Money
	category string
	merchant string
}

// parseTarget extracts the corrected amount plus optional category and
// merchant hints. Unlike normal logging, a bare number with no currency
// marker is a valid amount here.
func (c *Corrector) parseTarget(normalized string) (*correctionTarget, error) {
	t := &correctionTarget{merchant: ExtractMerchant(normalized)}

	if cat, _, ok := c.categories.Detect(normalized); ok {
		t.category = cat
	}

	if amt, ok := textnorm.ExtractFirstAmount(normalized); ok {
		code := money.NormalizeCurrencyMarker(firstCurrencyMarker(normalized))
		t.amount = money.NewFromFloat(amt, code)
		return t, nil
	}

	raw := bareNumberRe.FindString(normalized)
	if raw == "" {
		return nil, fmt.Errorf("no parseable amount in correction")
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return nil, fmt.Errorf("no parseable amount in correction")
	}
	// currency unknown for bare numbers, inherited later from the candidate
	t.amount = money.NewFromFloat(f, money.BDT)
	return t, nil
}

// pickCandidate scores candidates against the target hints. Candidates are
// newest first; the first gets the recency bonus. A best score under the
// threshold falls back to the most recent candidate.
func pickCandidate(candidates []*Expense, target *correctionTarget) *Expense {
	best := candidates[0]
	bestScore := -1

	for i, cand := range candidates {
		score := 0
		if target.category != "" && strings.EqualFold(cand.Category, target.category) {
			score += categoryMatchScore
		}
		if merchantsSimilar(cand.Merchant, target.merchant) {
			score += merchantMatchScore
		}
		if i == 0 {
			score += recencyBonus
		}
		if score > bestScore {
			best, bestScore = cand, score
		}
	}

	if bestScore < minScoreThreshold {
		return candidates[0]
	}
	return best
}

func merchantsSimilar(a, b string) bool {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if len(a) < minMerchantFragment || len(b) < minMerchantFragment {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	if r := fuzzy.RankMatchNormalizedFold(b, a); r >= 0 && r <= 2 {
		return true
	}
	r := fuzzy.RankMatchNormalizedFold(a, b)
	return r >= 0 && r <= 2
}

// buildReplacement fills the new expense, inheriting currency, category and
// merchant from the candidate when the correction gave no hint.
func buildReplacement(req CorrectionRequest, target *correctionTarget, cand *Expense, normalized string) *Expense {
	currency := target.amount.Currency()
	amountMinor := target.amount.Amount()
	if !hasCurrencyMarker(normalized) {
		currency = cand.CurrencyCode
		amountMinor = money.NewFromFloat(amountFromMinor(target.amount), currency).Amount()
	}

	category := target.category
	if category == "" {
		category = cand.Category
	}
	merchant := target.merchant
	if merchant == "" {
		merchant = cand.Merchant
	}

	return &Expense{
		UserIDHash:    req.UserIDHash,
		AmountMinor:   amountMinor,
		CurrencyCode:  currency,
		Category:      category,
		Description:   normalized,
		Merchant:      merchant,
		CorrelationID: req.MessageID,
	}
}

func hasCurrencyMarker(normalized string) bool {
	return firstCurrencyMarker(normalized) != ""
}

func amountFromMinor(m *money.Money) float64 {
	f, _ := m.ToDecimal().Float64()
	return f
}

// classifyReason extracts a short corrected_reason phrase from the message.
func classifyReason(normalized string) string {
	for _, rp := range reasonPhrases {
		if rp.re.MatchString(normalized) {
			return rp.reason
		}
	}
	return "amount correction"
}

// logAsNew handles the empty-candidate fallback: the correction becomes a
// fresh expense with the full amount added to totals.
func (c *Corrector) logAsNew(ctx context.Context, req CorrectionRequest, target *correctionTarget, normalized string) (*CorrectionOutcome, error) {
	category := target.category
	if category == "" {
		category = c.categories.Categorize(normalized)
	}
	e := &Expense{
		UserIDHash:    req.UserIDHash,
		AmountMinor:   target.amount.Amount(),
		CurrencyCode:  target.amount.Currency(),
		Category:      category,
		Description:   normalized,
		Merchant:      target.merchant,
		CorrelationID: req.MessageID,
	}
	if _, err := c.store.GetOrCreateUser(ctx, req.UserIDHash); err != nil {
		return nil, err
	}
	if err := c.store.Insert(ctx, e); err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "no correction candidate, logged as new expense",
		slog.String("expense_id", e.ID.String()))
	return &CorrectionOutcome{Kind: OutcomeLoggedAsNew, New: e}, nil
}
