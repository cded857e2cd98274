package textnorm

import (
	"regexp"
	"strconv"
	"strings"
)

// Currency markers recognized in either order around an amount. Bare numbers
// without a marker are deliberately not money, too many false positives on
// quantities and phone numbers.
const (
	currencySymbols = `৳|\$|£|€|₹`
	currencyWords   = `tk|bdt|taka`
	bengaliTaka     = `টাকা`

	// 1,234.56 style or plain 1234.56
	amountPattern = `\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?`
)

var (
	// Marker before amount: "৳50", "tk 100", "$12.50"
	markerAmountRe = regexp.MustCompile(
		`(?i)(?:` + currencySymbols + `|\b(?:` + currencyWords + `)\b|` + bengaliTaka + `)\s*(` + amountPattern + `)`)

	// Amount before marker: "50 টাকা", "100tk", "12.50$"
	amountMarkerRe = regexp.MustCompile(
		`(?i)(` + amountPattern + `)\s*(?:` + currencySymbols + `|(?:` + currencyWords + `)\b|` + bengaliTaka + `)`)

	moneyRe = regexp.MustCompile(markerAmountRe.String() + `|` + amountMarkerRe.String())

	numericRunRe = regexp.MustCompile(`[\d.,]+`)
)

// HasMoney reports whether text contains at least one currency mention.
// Input should be normalized first so Bengali digits are ASCII.
func HasMoney(text string) bool {
	return moneyRe.MatchString(text)
}

// ExtractMoneyMentions returns every matched currency mention left to right.
func ExtractMoneyMentions(text string) []string {
	matches := moneyRe.FindAllString(text, -1)
	mentions := make([]string, 0, len(matches))
	for _, m := range matches {
		mentions = append(mentions, strings.TrimSpace(m))
	}
	return mentions
}

// ExtractFirstAmount parses the amount of the first currency mention.
// Returns false when there is no mention or the numeric token is malformed
// ("1.2.3" is rejected, not truncated). Never panics on any input.
func ExtractFirstAmount(text string) (float64, bool) {
	loc := moneyRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return 0, false
	}

	// Whichever alternation branch matched carries the amount in its group.
	var start, end int
	switch {
	case loc[2] >= 0:
		start, end = loc[2], loc[3]
	case loc[4] >= 0:
		start, end = loc[4], loc[5]
	default:
		return 0, false
	}

	// Widen to the full contiguous numeric run so "৳1.2.3" fails to parse
	// instead of silently reading "1.2".
	token := widenNumericRun(text, start, end)
	return parseAmountToken(token)
}

// widenNumericRun expands [start,end) to cover the whole run of digits,
// commas and dots around the regex capture.
func widenNumericRun(text string, start, end int) string {
	for start > 0 && isNumericRunByte(text[start-1]) {
		start--
	}
	for end < len(text) && isNumericRunByte(text[end]) {
		end++
	}
	return text[start:end]
}

func isNumericRunByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.' || b == ','
}

// parseAmountToken strips thousands separators and parses the token.
func parseAmountToken(token string) (float64, bool) {
	token = strings.Trim(token, ".,")
	if token == "" {
		return 0, false
	}
	if strings.Count(token, ".") > 1 {
		return 0, false
	}
	token = strings.ReplaceAll(token, ",", "")

	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
