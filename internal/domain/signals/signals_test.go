package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, text string, opts ...Option) Signals {
	t.Helper()
	return Extract(text, time.UTC, opts...)
}

func TestExtract_MoneyAndVerbs(t *testing.T) {
	t.Run("bengali spend message", func(t *testing.T) {
		s := extract(t, "চা ৫০ টাকা খরচ করেছি")
		assert.True(t, s.HasMoney)
		assert.True(t, s.HasFirstPersonSpentVerb)
		assert.True(t, s.IsBengali)
		require.NotEmpty(t, s.MoneyMentions)
		assert.Contains(t, s.MoneyMentions[0], "50")
	})

	t.Run("money without verb", func(t *testing.T) {
		s := extract(t, "চা ৫০ টাকা")
		assert.True(t, s.HasMoney)
		assert.False(t, s.HasFirstPersonSpentVerb)
	})

	t.Run("english spent verb", func(t *testing.T) {
		s := extract(t, "I spent 100 tk on coffee")
		assert.True(t, s.HasMoney)
		assert.True(t, s.HasFirstPersonSpentVerb)
		assert.False(t, s.IsBengali)
	})

	t.Run("implicit item is english only", func(t *testing.T) {
		assert.True(t, extract(t, "coffee 100").HasImplicitItem)
		assert.False(t, extract(t, "coffee was great").HasImplicitItem)
		// Bengali bare mentions stay ambiguous and go through clarify.
		assert.False(t, extract(t, "চা ৫০").HasImplicitItem)

		item, amount, ok := ParseImplicitItem("coffee 100")
		require.True(t, ok)
		assert.Equal(t, "coffee", item)
		assert.InDelta(t, 100.0, amount, 0.001)
	})
}

func TestExtract_AnalysisSignals(t *testing.T) {
	t.Run("explicit analysis english", func(t *testing.T) {
		s := extract(t, "analysis please")
		assert.True(t, s.HasExplicitAnalysis)
	})

	t.Run("explicit analysis bengali", func(t *testing.T) {
		s := extract(t, "বিশ্লেষণ দাও")
		assert.True(t, s.HasExplicitAnalysis)
	})

	t.Run("generic terms", func(t *testing.T) {
		assert.True(t, extract(t, "show me a summary").HasAnalysisTerms)
		assert.True(t, extract(t, "খরচের হিসাব দাও").HasAnalysisTerms)
		assert.False(t, extract(t, "hello there").HasAnalysisTerms)
	})

	t.Run("time window populates signal", func(t *testing.T) {
		s := extract(t, "how much did I spend last week")
		assert.True(t, s.HasTimeWindow)
		require.NotNil(t, s.Window)
		assert.Equal(t, "last week", s.Window.Description)
	})
}

func TestExtract_AdminAndSocial(t *testing.T) {
	assert.True(t, extract(t, "/id").IsAdminCommand)
	assert.True(t, extract(t, "/status now").IsAdminCommand)
	assert.False(t, extract(t, "my /id is lost").IsAdminCommand)

	assert.True(t, extract(t, "hello there").IsGreeting())
	assert.True(t, extract(t, "ধন্যবাদ").IsGreeting())
	assert.False(t, extract(t, "spent 50 tk").IsGreeting())
}

func TestExtract_CoachingAndFAQ(t *testing.T) {
	s := extract(t, "help me reduce food spend")
	assert.True(t, s.HasCoachingVerbs)

	s = extract(t, "what can you do")
	assert.True(t, s.HasFAQTerms)
	assert.False(t, s.HasCoachingVerbs)

	s = extract(t, "তুমি কী করতে পারো")
	assert.True(t, s.HasFAQTerms)
}

func TestExtract_Options(t *testing.T) {
	s := extract(t, "anything", WithLedgerCount(15), WithCoachingSession(true))
	assert.Equal(t, 15, s.LedgerCount30d)
	assert.True(t, s.InCoachingSession)

	// Negative counts are ignored.
	s = extract(t, "anything", WithLedgerCount(-1))
	assert.Equal(t, 0, s.LedgerCount30d)
}

func TestExtract_BengaliEnglishParity(t *testing.T) {
	pairs := []struct {
		english string
		bengali string
		check   func(Signals) bool
	}{
		{"analysis please", "বিশ্লেষণ দাও", func(s Signals) bool { return s.HasExplicitAnalysis }},
		{"what can you do", "তুমি কী করতে পারো", func(s Signals) bool { return s.HasFAQTerms }},
		{"I spent 50 tk", "৫০ টাকা খরচ করেছি", func(s Signals) bool { return s.HasMoney && s.HasFirstPersonSpentVerb }},
		{"summary for yesterday", "গতকাল এর সারাংশ", func(s Signals) bool { return s.HasTimeWindow && s.HasAnalysisTerms }},
	}

	for _, p := range pairs {
		assert.True(t, p.check(extract(t, p.english)), "english: %q", p.english)
		assert.True(t, p.check(extract(t, p.bengali)), "bengali: %q", p.bengali)
	}
}
