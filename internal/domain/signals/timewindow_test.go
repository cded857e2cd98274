package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Saturday 2026-08-15 10:30 local time.
var anchor = time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)

func TestParseTimeWindow(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		text     string
		wantFrom time.Time
		wantTo   time.Time
		wantDesc string
	}{
		{"iso date", "expenses on 2026-08-01 please", day(2026, 8, 1), day(2026, 8, 2), "2026-08-01"},
		{"today english", "how much today", day(2026, 8, 15), day(2026, 8, 16), "today"},
		{"today bengali", "আজ কত খরচ", day(2026, 8, 15), day(2026, 8, 16), "today"},
		{"yesterday english", "summary for yesterday", day(2026, 8, 14), day(2026, 8, 15), "yesterday"},
		{"yesterday bengali", "গতকাল কত", day(2026, 8, 14), day(2026, 8, 15), "yesterday"},
		{"this week starts monday", "spending this week", day(2026, 8, 10), day(2026, 8, 17), "this week"},
		{"last week", "report for last week", day(2026, 8, 3), day(2026, 8, 10), "last week"},
		{"this month", "এই মাস এর হিসাব", day(2026, 8, 1), day(2026, 9, 1), "this month"},
		{"last month", "last month report", day(2026, 7, 1), day(2026, 8, 1), "last month"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := parseTimeWindowAt(anchor, tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.wantFrom, w.From)
			assert.Equal(t, tt.wantTo, w.To)
			assert.Equal(t, tt.wantDesc, w.Description)
			assert.True(t, w.From.Before(w.To))
		})
	}
}

func TestParseTimeWindow_FirstMatchWins(t *testing.T) {
	// ISO date outranks relative phrases; relative phrases never combine.
	w, ok := parseTimeWindowAt(anchor, "today and 2026-01-05")
	require.True(t, ok)
	assert.Equal(t, "2026-01-05", w.Description)

	w, ok = parseTimeWindowAt(anchor, "today or maybe last week")
	require.True(t, ok)
	assert.Equal(t, "today", w.Description)
}

func TestParseTimeWindow_NoMatch(t *testing.T) {
	_, ok := parseTimeWindowAt(anchor, "just some text with 42 in it")
	assert.False(t, ok)
}

func TestParseTimeWindow_NilLocationDefaultsUTC(t *testing.T) {
	w, ok := ParseTimeWindow(nil, "today")
	require.True(t, ok)
	assert.Equal(t, time.UTC, w.From.Location())
}
