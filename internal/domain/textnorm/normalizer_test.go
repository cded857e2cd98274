package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bengali digits", "চা ৫০ টাকা", "চা 50 টাকা"},
		{"zero width stripped", "coffee\u200b 100\ufeff tk", "coffee 100 tk"},
		{"case folded", "Spent TK 100 On COFFEE", "spent tk 100 on coffee"},
		{"whitespace collapsed", "  lunch   200\ttk \n", "lunch 200 tk"},
		{"nfkc fullwidth digits", "５০ taka", "50 taka"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"চা ৫০ টাকা খরচ করেছি",
		"Coffee 100 TK",
		"  mixed ৳১২৩.৪৫ and $50  ",
		"\u200bzero\u200c width\u200d everywhere\ufeff",
		"বিশ্লেষণ দাও",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestTranslateDigits(t *testing.T) {
	assert.Equal(t, "50 Taka", TranslateDigits("৫০ Taka"))
	assert.Equal(t, "no digits", TranslateDigits("no digits"))
}

func TestContainsBengali(t *testing.T) {
	assert.True(t, ContainsBengali("চা ৫০"))
	assert.True(t, ContainsBengali("mixed টাকা text"))
	assert.False(t, ContainsBengali("english only 50 tk"))
}
