package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasMoney(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"taka symbol prefix", "৳50 for tea", true},
		{"bengali taka suffix", "চা 50 টাকা", true},
		{"tk suffix", "coffee 100tk", true},
		{"tk prefix", "tk 100 coffee", true},
		{"bdt word", "paid 250 bdt", true},
		{"dollar", "$12.50 lunch", true},
		{"euro suffix", "12.50€", true},
		{"rupee", "₹99 snacks", true},
		{"comma groups", "spent 1,200 taka on groceries", true},
		{"bare number is not money", "coffee 100", false},
		{"no numbers", "had a nice coffee", false},
		{"tk inside word", "matka 100", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasMoney(Normalize(tt.text)))
		})
	}
}

func TestExtractMoneyMentions(t *testing.T) {
	mentions := ExtractMoneyMentions(Normalize("চা ৫০ টাকা আর lunch 200tk"))
	require.Len(t, mentions, 2)
	assert.Contains(t, mentions[0], "50")
	assert.Contains(t, mentions[1], "200")

	assert.Empty(t, ExtractMoneyMentions("nothing to see"))
}

func TestExtractFirstAmount(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   float64
		wantOK bool
	}{
		{"symbol prefix", "৳50", 50, true},
		{"bengali digits", Normalize("চা ৫০ টাকা"), 50, true},
		{"decimal", "$12.50 lunch", 12.50, true},
		{"thousands separators stripped", "paid 1,234.56 taka", 1234.56, true},
		{"first of several", "৳50 then 200 tk later", 50, true},
		{"no marker", "coffee 100", 0, false},
		{"malformed separators", "৳1.2.3", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFirstAmount(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}
