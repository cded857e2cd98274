package routing

// Mode selects how the deterministic router cooperates with the AI fallback.
type Mode string

// Scope limits which users the deterministic router runs for. It is a
// rollout switch, not a routing rule.
type Scope string

const (
	ModeAIFirst    Mode = "ai_first"
	ModeHybrid     Mode = "hybrid"
	ModeRulesFirst Mode = "rules_first"

	ScopeZeroLedgerOnly       Scope = "zero_ledger_only"
	ScopeAnalysisKeywordsOnly Scope = "analysis_keywords_only"
	ScopeAll                  Scope = "all"
)

// Config is the immutable router configuration, loaded once at startup and
// threaded through explicitly. There is no package-level default instance.
type Config struct {
	Mode                   Mode
	Scope                  Scope
	CoachingTxnThreshold   int
	CoachingSessionRespect bool
	BilingualRouting       bool
	AuditMode              bool
}

// DefaultConfig is the safe fallback used when configuration is missing or
// invalid: hybrid mode, all users, coaching after 10 logged expenses.
func DefaultConfig() Config {
	return Config{
		Mode:                   ModeHybrid,
		Scope:                  ScopeAll,
		CoachingTxnThreshold:   10,
		CoachingSessionRespect: true,
		BilingualRouting:       true,
	}
}

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeAIFirst, ModeHybrid, ModeRulesFirst:
		return Mode(s), true
	}
	return ModeHybrid, false
}

// ParseScope validates a scope string.
func ParseScope(s string) (Scope, bool) {
	switch Scope(s) {
	case ScopeZeroLedgerOnly, ScopeAnalysisKeywordsOnly, ScopeAll:
		return Scope(s), true
	}
	return ScopeAll, false
}
