package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		minor    int64
		currency string
		want     int64
	}{
		{"positive", 1234, BDT, 1234},
		{"zero", 0, BDT, 0},
		{"negative", -5000, BDT, -5000},
		{"usd", 1000, USD, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.minor, tt.currency)
			assert.Equal(t, tt.want, m.Amount())
			assert.Equal(t, tt.currency, m.Currency())
		})
	}
}

func TestNewFromFloat(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   int64
	}{
		{"simple decimal", 12.34, 1234},
		{"whole number", 500, 50000},
		{"zero", 0, 0},
		{"small amount", 0.01, 1},
		{"rounds to nearest minor unit", 12.345, 1235},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFromFloat(tt.amount, BDT)
			assert.Equal(t, tt.want, m.Amount())
			assert.Equal(t, BDT, m.Currency())
		})
	}
}

func TestNewFromFloat_UnknownCurrencyFallsBackToBDT(t *testing.T) {
	m := NewFromFloat(50, "XXX-NOPE")
	assert.Equal(t, BDT, m.Currency())
	assert.Equal(t, int64(5000), m.Amount())
}

func TestNewFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"plain", "500", 50000, false},
		{"decimal", "123.45", 12345, false},
		{"thousands separators", "1,234.56", 123456, false},
		{"negative", "-25.50", -2550, false},
		{"garbage", "1.2.3", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewFromString(tt.input, BDT)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Amount())
		})
	}
}

func TestAddSubtract(t *testing.T) {
	a := New(5000, BDT)
	b := New(1500, BDT)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(6500), sum.Amount())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), diff.Amount())

	// correction delta: new amount minus old can go negative
	delta, err := b.Subtract(a)
	require.NoError(t, err)
	assert.Equal(t, int64(-3500), delta.Amount())
	assert.True(t, delta.IsNegative())
}

func TestAdd_MixedCurrencyFails(t *testing.T) {
	_, err := New(100, BDT).Add(New(100, USD))
	assert.Error(t, err)
}

func TestToDecimal(t *testing.T) {
	m := New(123450, BDT)
	assert.Equal(t, "1234.50", m.ToDecimal().StringFixed(2))
	assert.Equal(t, "1234.50", m.String())
}

func TestJSONRoundTrip(t *testing.T) {
	m := New(7550, BDT)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"amount":7550`)
	assert.Contains(t, string(data), `"currency":"BDT"`)

	var got Money
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, int64(7550), got.Amount())
	assert.Equal(t, BDT, got.Currency())
}

func TestScanValue(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan(int64(2500)))
	assert.Equal(t, int64(2500), m.Amount())

	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, int64(2500), v)

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())
}

func TestNormalizeCurrencyMarker(t *testing.T) {
	tests := []struct {
		marker string
		want   string
	}{
		{"৳", BDT},
		{"tk", BDT},
		{"TK", BDT},
		{"bdt", BDT},
		{"taka", BDT},
		{"টাকা", BDT},
		{"$", USD},
		{"£", GBP},
		{"€", EUR},
		{"₹", INR},
		{"", BDT},
		{"???", BDT},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCurrencyMarker(tt.marker), "marker %q", tt.marker)
	}
}

func TestTestDataGenerator(t *testing.T) {
	g := NewTestDataGeneratorWithSeed(42)
	set := g.MonthlyExpenseSet(BDT)
	require.NotEmpty(t, set)
	for _, e := range set {
		assert.Equal(t, BDT, e.Amount.Currency())
		assert.False(t, e.Amount.IsNegative())
		assert.NotEmpty(t, e.Category)
	}
}
