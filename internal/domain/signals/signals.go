// Package signals turns a normalized chat message into the flat set of
// routing facts the deterministic router consumes. Extraction is pure regex
// evaluation with no storage or network access. Facts that come from storage
// (ledger count, active coaching session) are injected by the caller through
// constructor options, never mutated afterwards.
package signals

import (
	"strconv"
	"time"

	"github.com/FACorreiaa/kharcha/internal/domain/textnorm"
)

// Signals is the immutable per-message routing input.
type Signals struct {
	NormalizedText string
	IsBengali      bool

	HasMoney                bool
	HasFirstPersonSpentVerb bool
	HasImplicitItem         bool
	HasTimeWindow           bool
	HasAnalysisTerms        bool
	HasExplicitAnalysis     bool
	HasCoachingVerbs        bool
	HasFAQTerms             bool
	HasSpendQuery           bool
	IsAdminCommand          bool

	MoneyMentions []string
	Window        *TimeWindow

	LedgerCount30d    int
	InCoachingSession bool
}

// Option injects caller-provided state at construction time.
type Option func(*Signals)

// WithLedgerCount sets the user's trailing-30-day expense count.
func WithLedgerCount(n int) Option {
	return func(s *Signals) {
		if n >= 0 {
			s.LedgerCount30d = n
		}
	}
}

// WithCoachingSession marks an active coaching session for the user.
func WithCoachingSession(active bool) Option {
	return func(s *Signals) { s.InCoachingSession = active }
}

// Extract normalizes text once and evaluates every detector against it.
// Total: malformed or empty input yields a zero-valued Signals, never an
// error.
func Extract(text string, loc *time.Location, opts ...Option) Signals {
	normalized := textnorm.Normalize(text)

	s := Signals{
		NormalizedText:          normalized,
		IsBengali:               textnorm.ContainsBengali(normalized),
		HasMoney:                textnorm.HasMoney(normalized),
		HasFirstPersonSpentVerb: spentVerbRe.MatchString(normalized),
		HasImplicitItem:         implicitItemRe.MatchString(normalized),
		HasAnalysisTerms:        analysisTermsRe.MatchString(normalized),
		HasExplicitAnalysis:     explicitAnalysisRe.MatchString(normalized),
		HasCoachingVerbs:        coachingVerbRe.MatchString(normalized),
		HasFAQTerms:             faqTermsRe.MatchString(normalized),
		HasSpendQuery:           spendQueryRe.MatchString(normalized),
		IsAdminCommand:          adminCommandRe.MatchString(normalized),
		MoneyMentions:           textnorm.ExtractMoneyMentions(normalized),
	}

	if w, ok := ParseTimeWindow(loc, normalized); ok {
		s.Window = w
		s.HasTimeWindow = true
	}

	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// IsGreeting reports whether the normalized text opens with a social phrase.
// Kept as a method so the router does not re-normalize.
func (s Signals) IsGreeting() bool {
	return greetingRe.MatchString(s.NormalizedText)
}

// ParseImplicitItem pulls the item word and bare amount out of an implicit
// expense ("coffee 100"). Amount parsing cannot fail once the pattern
// matched, but the ok flag guards callers anyway.
func ParseImplicitItem(normalized string) (item string, amount float64, ok bool) {
	m := implicitItemRe.FindStringSubmatch(normalized)
	if m == nil {
		return "", 0, false
	}
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return "", 0, false
	}
	return m[1], v, true
}
