// Package routing implements the deterministic intent router: a strict
// precedence ladder over bilingual message signals. Routing is a total
// function: every message maps to exactly one intent.
package routing

// Intent is the classified purpose of a user message.
type Intent string

// Intents in precedence order, highest first. The ladder in router.go
// evaluates them in exactly this order and stops at the first match.
const (
	IntentAdmin             Intent = "admin"
	IntentPCAAudit          Intent = "pca_audit"
	IntentExpenseLog        Intent = "expense_log"
	IntentClarifyExpense    Intent = "clarify_expense"
	IntentCategoryBreakdown Intent = "category_breakdown"
	IntentAnalysis          Intent = "analysis"
	IntentFAQ               Intent = "faq"
	IntentCoaching          Intent = "coaching"
	IntentSmalltalk         Intent = "smalltalk"
	IntentUnknown           Intent = "unknown"
)

// AllIntents lists every intent in precedence order.
var AllIntents = []Intent{
	IntentAdmin,
	IntentPCAAudit,
	IntentExpenseLog,
	IntentClarifyExpense,
	IntentCategoryBreakdown,
	IntentAnalysis,
	IntentFAQ,
	IntentCoaching,
	IntentSmalltalk,
	IntentUnknown,
}

// Precedence returns the rank of an intent, 0 being the highest. Unknown
// intents rank last.
func Precedence(i Intent) int {
	for idx, in := range AllIntents {
		if in == i {
			return idx
		}
	}
	return len(AllIntents)
}
