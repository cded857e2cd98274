package chat

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/kharcha/internal/domain/analysis"
	"github.com/FACorreiaa/kharcha/internal/domain/expense"
	"github.com/FACorreiaa/kharcha/pkg/money"
)

// Reply templates are plain string formatting, picked by language. Bengali
// replies go to messages that contained Bengali script.

func replyExpenseLogged(e *expense.Expense, bengali bool) string {
	amount := money.New(e.AmountMinor, e.CurrencyCode).Display()
	if bengali {
		return fmt.Sprintf("লিখে রাখলাম: %s (%s)।", amount, e.Category)
	}
	return fmt.Sprintf("Logged %s under %s.", amount, e.Category)
}

func replyClarifyExpense(bengali bool) string {
	if bengali {
		return "টাকার কথা বললেন, কিন্তু এটা কি খরচ? \"খরচ করেছি\" লিখলে আমি সেভ করে রাখব।"
	}
	return "I see an amount — did you spend this? Say something like \"spent 50\" and I'll log it."
}

func replyCorrection(out *expense.CorrectionOutcome, bengali bool) string {
	switch out.Kind {
	case expense.OutcomeDuplicate:
		if bengali {
			return "এই সংশোধনটা আগেই করা হয়ে গেছে।"
		}
		return "That correction was already applied."
	case expense.OutcomeLoggedAsNew:
		amount := money.New(out.New.AmountMinor, out.New.CurrencyCode).Display()
		if bengali {
			return fmt.Sprintf("সংশোধনের মতো কিছু পাইনি, তাই নতুন খরচ হিসেবে %s লিখে রাখলাম।", amount)
		}
		return fmt.Sprintf("I couldn't find a recent expense to fix, so I logged %s as a new one.", amount)
	default:
		oldAmount := money.New(out.Old.AmountMinor, out.Old.CurrencyCode).Display()
		newAmount := money.New(out.New.AmountMinor, out.New.CurrencyCode).Display()
		suffix := ""
		if out.New.Merchant != "" {
			suffix = " (" + out.New.Merchant + ")"
		}
		if bengali {
			return fmt.Sprintf("ঠিক করে দিলাম: %s → %s, খাত %s%s।", oldAmount, newAmount, out.New.Category, suffix)
		}
		return fmt.Sprintf("Fixed: %s → %s under %s%s.", oldAmount, newAmount, out.New.Category, suffix)
	}
}

func replyCorrectionFailed(bengali bool) string {
	if bengali {
		return "দুঃখিত, সংশোধনটা করতে পারিনি। আবার চেষ্টা করুন।"
	}
	return "Sorry, I couldn't process that correction. Please try again."
}

func replySummary(sum *analysis.Summary, bengali bool) string {
	total := sum.Total().Display()
	if sum.Count == 0 {
		if bengali {
			return fmt.Sprintf("%s সময়ে কোনো খরচ পাইনি।", sum.Window.Description)
		}
		return fmt.Sprintf("No expenses found for %s.", sum.Window.Description)
	}

	var b strings.Builder
	if bengali {
		fmt.Fprintf(&b, "%s: মোট খরচ %s (%dটি খরচ)।", sum.Window.Description, total, sum.Count)
	} else {
		fmt.Fprintf(&b, "%s: you spent %s across %d expenses.", sum.Window.Description, total, sum.Count)
	}
	for i, cat := range sum.ByCategory {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, "\n- %s: %s (%.0f%%)",
			cat.Category, money.New(cat.TotalMinor, sum.CurrencyCode).Display(), cat.Percent)
	}
	return b.String()
}

func replyCategoryBreakdown(out *analysis.CategorySummary, currency string, bengali bool) string {
	total := money.New(out.TotalMinor, currency).Display()
	if len(out.Items) == 0 {
		if bengali {
			return fmt.Sprintf("%s সময়ে %s খাতে কোনো খরচ পাইনি।", out.Window.Description, out.Category)
		}
		return fmt.Sprintf("No %s expenses found for %s.", out.Category, out.Window.Description)
	}
	if bengali {
		return fmt.Sprintf("%s সময়ে %s খাতে মোট %s খরচ করেছেন (%dটি খরচ)।",
			out.Window.Description, out.Category, total, len(out.Items))
	}
	return fmt.Sprintf("You spent %s on %s during %s (%d expenses).",
		total, out.Category, out.Window.Description, len(out.Items))
}

func replyFAQFallback(bengali bool) string {
	if bengali {
		return "আমি খরচ লিখে রাখি, সারাংশ দিই আর খরচ ঠিক করতে সাহায্য করি। \"চা ৫০ টাকা খরচ করেছি\" লিখে দেখুন।"
	}
	return "I log expenses, build summaries, and fix mistakes. Try \"coffee 100\" to log one."
}

func replySmalltalk(bengali bool) string {
	if bengali {
		return "হ্যালো! কী খরচ করলেন আজ? লিখে পাঠালেই হিসাব রাখব।"
	}
	return "Hey! Tell me what you spent and I'll keep track."
}

func replyCoachingEnded(bengali bool) string {
	if bengali {
		return "ঠিক আছে, কোচিং এখানেই শেষ। আবার পরামর্শ চাইলে বলবেন।"
	}
	return "Okay, wrapping up coaching. Ask again whenever you want more advice."
}

func replyUnknown(bengali bool) string {
	if bengali {
		return "ঠিক বুঝলাম না। খরচ লিখতে \"চা ৫০ টাকা খরচ করেছি\" ধরনের কিছু লিখুন, বা \"বিশ্লেষণ দাও\" বলুন।"
	}
	return "I didn't quite get that. To log an expense try \"coffee 100\", or say \"analysis please\" for a summary."
}

func replyAuditMode(bengali bool) string {
	if bengali {
		return "অডিট মোড চালু আছে; বার্তাটি রেকর্ড করা হলো।"
	}
	return "Audit mode is on; your message was recorded for review."
}

func adminHelp(bengali bool) string {
	if bengali {
		return "কমান্ড: /id — আপনার আইডি, /status — অবস্থা, /debug — রাউটিং তথ্য, /help — এই তালিকা।"
	}
	return "Commands: /id — your id, /status — service status, /debug — routing info, /help — this list."
}
