package signals

import (
	"regexp"
	"strings"
	"time"
)

// TimeWindow is a half-open calendar range [From, To) in the user's timezone.
type TimeWindow struct {
	From        time.Time
	To          time.Time
	Description string
}

var isoDateRe = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

// windowPhrase pairs a bilingual phrase set with a range builder. Order is
// the resolution priority: the first phrase found wins and later ones are
// never combined with it.
type windowPhrase struct {
	description string
	phrases     []string
	build       func(today time.Time) (from, to time.Time)
}

var windowPhrases = []windowPhrase{
	{
		description: "today",
		phrases:     []string{"today", "আজ"},
		build: func(today time.Time) (time.Time, time.Time) {
			return today, today.AddDate(0, 0, 1)
		},
	},
	{
		description: "yesterday",
		phrases:     []string{"yesterday", "গতকাল"},
		build: func(today time.Time) (time.Time, time.Time) {
			return today.AddDate(0, 0, -1), today
		},
	},
	{
		description: "this week",
		phrases:     []string{"this week", "এই সপ্তাহ"},
		build: func(today time.Time) (time.Time, time.Time) {
			start := weekStart(today)
			return start, start.AddDate(0, 0, 7)
		},
	},
	{
		description: "last week",
		phrases:     []string{"last week", "গত সপ্তাহ"},
		build: func(today time.Time) (time.Time, time.Time) {
			start := weekStart(today).AddDate(0, 0, -7)
			return start, start.AddDate(0, 0, 7)
		},
	},
	{
		description: "this month",
		phrases:     []string{"this month", "এই মাস"},
		build: func(today time.Time) (time.Time, time.Time) {
			start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
			return start, start.AddDate(0, 1, 0)
		},
	},
	{
		description: "last month",
		phrases:     []string{"last month", "গত মাস"},
		build: func(today time.Time) (time.Time, time.Time) {
			thisStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
			return thisStart.AddDate(0, -1, 0), thisStart
		},
	},
}

// ParseTimeWindow finds the first time phrase in priority order and returns
// its calendar-correct range. Explicit ISO dates beat relative phrases.
// A nil location falls back to UTC.
func ParseTimeWindow(loc *time.Location, text string) (*TimeWindow, bool) {
	if loc == nil {
		loc = time.UTC
	}
	return parseTimeWindowAt(time.Now().In(loc), text)
}

func parseTimeWindowAt(now time.Time, text string) (*TimeWindow, bool) {
	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		day, err := time.ParseInLocation("2006-01-02", m[0], now.Location())
		if err == nil {
			return &TimeWindow{
				From:        day,
				To:          day.AddDate(0, 0, 1),
				Description: m[0],
			}, true
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, wp := range windowPhrases {
		for _, phrase := range wp.phrases {
			if strings.Contains(text, phrase) {
				from, to := wp.build(today)
				return &TimeWindow{From: from, To: to, Description: wp.description}, true
			}
		}
	}
	return nil, false
}

// weekStart returns the Monday of the week containing day.
func weekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
