// Package textnorm normalizes bilingual (Bengali/English) chat input before
// pattern matching. All detectors downstream assume text has passed through
// Normalize exactly once.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// bengaliDigits maps the Bengali digit block (U+09E6–U+09EF) to ASCII.
var bengaliDigits = map[rune]rune{
	'০': '0', '১': '1', '২': '2', '৩': '3', '৪': '4',
	'৫': '5', '৬': '6', '৭': '7', '৮': '8', '৯': '9',
}

var foldCaser = cases.Fold()

// Normalize canonicalizes raw message text: NFKC normalization, Bengali
// digit translation, zero-width character stripping, Unicode case folding,
// and whitespace collapse. Idempotent and total; never panics.
func Normalize(text string) string {
	// NFKC first so compatibility forms (full-width digits, ligatures)
	// collapse before digit translation.
	text = norm.NFKC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if d, ok := bengaliDigits[r]; ok {
			b.WriteRune(d)
			continue
		}
		switch r {
		case '\u200b', '\u200c', '\u200d', '\ufeff':
			continue
		}
		b.WriteRune(r)
	}

	folded := foldCaser.String(b.String())
	return strings.Join(strings.Fields(folded), " ")
}

// TranslateDigits converts Bengali digits to ASCII without touching the rest
// of the text. Used where the original casing must survive (merchant names).
func TranslateDigits(text string) string {
	return strings.Map(func(r rune) rune {
		if d, ok := bengaliDigits[r]; ok {
			return d
		}
		return r
	}, text)
}

// ContainsBengali reports whether text carries any Bengali-block runes.
// Reply templates use this to answer in the user's script.
func ContainsBengali(text string) bool {
	for _, r := range text {
		if r >= 0x0980 && r <= 0x09FF {
			return true
		}
	}
	return false
}
