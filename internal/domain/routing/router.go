package routing

import (
	"fmt"

	"github.com/FACorreiaa/kharcha/internal/domain/signals"
	"github.com/FACorreiaa/kharcha/internal/domain/textnorm"
)

// Result explains a routing decision. ReasonCodes and MatchedPatterns are
// part of the contract: downstream consumers rely on them for auditability,
// they are not optional telemetry.
type Result struct {
	Intent          Intent
	ReasonCodes     []string
	MatchedPatterns []string
	Confidence      float64
}

// CategoryMatcher detects a spending-category keyword in normalized text.
// Implemented by the categorization engine.
type CategoryMatcher interface {
	Detect(normalized string) (category string, keyword string, ok bool)
}

// Router is stateless: all tunables live in the immutable Config passed at
// construction.
type Router struct {
	cfg        Config
	categories CategoryMatcher
	ladder     []rule
}

// rule is one rung of the precedence ladder.
type rule struct {
	intent     Intent
	confidence float64
	// eval returns whether the rung fires plus its reason codes and
	// matched pattern names.
	eval func(sig signals.Signals) (bool, []string, []string)
}

// New builds a router from config and a category matcher. The matcher may be
// nil, in which case the category-breakdown rung never fires.
func New(cfg Config, categories CategoryMatcher) *Router {
	r := &Router{cfg: cfg, categories: categories}
	r.ladder = r.buildLadder()
	return r
}

// Route classifies one message. The ladder is evaluated strictly in order
// and the first firing rung wins; later rungs are never consulted.
func (r *Router) Route(text string, sig signals.Signals) Result {
	if sig.NormalizedText == "" && text != "" {
		sig.NormalizedText = textnorm.Normalize(text)
	}

	for _, rung := range r.ladder {
		fired, reasons, patterns := rung.eval(sig)
		if !fired {
			continue
		}
		return Result{
			Intent:          rung.intent,
			ReasonCodes:     reasons,
			MatchedPatterns: patterns,
			Confidence:      rung.confidence,
		}
	}

	// Unreachable: the last rung always fires.
	return Result{Intent: IntentUnknown, ReasonCodes: []string{"NO_RULE_MATCHED"}, Confidence: 0.5}
}

// ShouldUseDeterministicRouting is the rollout gate wrapping Route. When it
// returns false the caller defers to the AI-first fallback path.
func (r *Router) ShouldUseDeterministicRouting(sig signals.Signals) bool {
	if !r.cfg.BilingualRouting && sig.IsBengali {
		return false
	}

	switch r.cfg.Mode {
	case ModeAIFirst:
		return false
	case ModeRulesFirst:
		return true
	}

	// Hybrid: scope decides.
	switch r.cfg.Scope {
	case ScopeZeroLedgerOnly:
		return sig.LedgerCount30d == 0
	case ScopeAnalysisKeywordsOnly:
		return sig.HasExplicitAnalysis || sig.HasAnalysisTerms
	default:
		return true
	}
}

func (r *Router) buildLadder() []rule {
	threshold := r.cfg.CoachingTxnThreshold
	if threshold <= 0 {
		threshold = DefaultConfig().CoachingTxnThreshold
	}

	return []rule{
		{
			intent:     IntentAdmin,
			confidence: 1.0,
			eval: func(sig signals.Signals) (bool, []string, []string) {
				if !sig.IsAdminCommand {
					return false, nil, nil
				}
				return true, []string{"IS_ADMIN_COMMAND"}, []string{"admin_prefix"}
			},
		},
		{
			intent:     IntentPCAAudit,
			confidence: 1.0,
			eval: func(sig signals.Signals) (bool, []string, []string) {
				if !r.cfg.AuditMode {
					return false, nil, nil
				}
				return true, []string{"PCA_AUDIT_MODE_ENABLED"}, nil
			},
		},
		{
			intent:     IntentExpenseLog,
			confidence: 0.95,
			eval: func(sig signals.Signals) (bool, []string, []string) {
				switch {
				case sig.HasMoney && sig.HasFirstPersonSpentVerb:
					return true,
						[]string{"HAS_MONEY", "HAS_FIRST_PERSON_SPENT_VERB"},
						[]string{"money_mention", "spent_verb"}
				case sig.HasImplicitItem:
					return true,
						[]string{"IMPLICIT_ITEM_AMOUNT"},
						[]string{"implicit_item"}
				}
				return false, nil, nil
			},
		},
		{
			intent:     IntentClarifyExpense,
			confidence: 0.9,
			eval: func(sig signals.Signals) (bool, []string, []string) {
				if sig.HasMoney && !sig.HasFirstPersonSpentVerb && !sig.HasExplicitAnalysis {
					return true,
						[]string{"HAS_MONEY", "NO_SPENT_VERB", "NO_EXPLICIT_ANALYSIS"},
						[]string{"money_mention"}
				}
				return false, nil, nil
			},
		},
		{
			intent:     IntentCategoryBreakdown,
			confidence: 0.95,
			eval: func(sig signals.Signals) (bool, []string, []string) {
				if r.categories == nil {
					return false, nil, nil
				}
				category, keyword, ok := r.categories.Detect(sig.NormalizedText)
				if !ok || !(sig.HasSpendQuery || sig.HasTimeWindow) {
					return false, nil, nil
				}
				reasons := []string{"HAS_CATEGORY_KEYWORD"}
				if sig.HasSpendQuery {
					reasons = append(reasons, "HAS_SPEND_QUERY")
				}
				if sig.HasTimeWindow {
					reasons = append(reasons, "HAS_TIME_WINDOW")
				}
				return true, reasons, []string{"category:" + category, "keyword:" + keyword}
			},
		},
		{
			intent:     IntentAnalysis,
			confidence: 0.95,
			eval: func(sig signals.Signals) (bool, []string, []string) {
				var reasons, patterns []string
				if sig.HasExplicitAnalysis {
					reasons = append(reasons, "HAS_EXPLICIT_ANALYSIS")
					patterns = append(patterns, "explicit_analysis")
				}
				if sig.HasTimeWindow {
					reasons = append(reasons, "HAS_TIME_WINDOW")
					patterns = append(patterns, "time_window")
				}
				if sig.HasAnalysisTerms {
					reasons = append(reasons, "HAS_ANALYSIS_TERMS")
					patterns = append(patterns, "analysis_terms")
				}
				return len(reasons) > 0, reasons, patterns
			},
		},
		{
			intent:     IntentFAQ,
			confidence: 0.9,
			eval: func(sig signals.Signals) (bool, []string, []string) {
				// Coaching verbs suppress FAQ so "how can I save" does not
				// read as a feature question.
				if sig.HasFAQTerms && !sig.HasCoachingVerbs {
					return true, []string{"HAS_FAQ_TERMS", "NO_COACHING_VERBS"}, []string{"faq_terms"}
				}
				return false, nil, nil
			},
		},
		{
			intent:     IntentCoaching,
			confidence: 0.85,
			eval: func(sig signals.Signals) (bool, []string, []string) {
				// An explicit analysis request always overrides coaching,
				// session or not.
				if sig.HasExplicitAnalysis {
					return false, nil, nil
				}
				if sig.HasCoachingVerbs && sig.LedgerCount30d >= threshold {
					return true, []string{
						"HAS_COACHING_VERBS",
						fmt.Sprintf("LEDGER_COUNT_GTE_%d", threshold),
					}, []string{"coaching_verbs"}
				}
				if sig.InCoachingSession && r.cfg.CoachingSessionRespect {
					return true, []string{"IN_COACHING_SESSION"}, []string{"coaching_session"}
				}
				return false, nil, nil
			},
		},
		{
			intent:     IntentSmalltalk,
			confidence: 0.8,
			eval: func(sig signals.Signals) (bool, []string, []string) {
				if sig.IsGreeting() {
					return true, []string{"GREETING_MATCH"}, []string{"greeting"}
				}
				return false, nil, nil
			},
		},
		{
			intent:     IntentUnknown,
			confidence: 0.5,
			eval: func(signals.Signals) (bool, []string, []string) {
				return true, []string{"NO_RULE_MATCHED"}, nil
			},
		},
	}
}
