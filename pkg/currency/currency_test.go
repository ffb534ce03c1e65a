package currency_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/remitflow/remitflow/pkg/currency"
)

func TestSetIsCaseInsensitive(t *testing.T) {
	s := currency.NewSet("usd", "Eur", "IDR")
	assert.True(t, s.Has("USD"))
	assert.True(t, s.Has("eur"))
	assert.True(t, s.Has(" idr "))
	assert.False(t, s.Has("GBP"))
	assert.Len(t, s.List(), 3)
}

func TestClassify(t *testing.T) {
	table := currency.NewTable(
		currency.NewSet("USD", "EUR", "IDR"),
		currency.NewSet("USDT", "BTC"),
		[]string{"IDR:USDT"},
	)

	tests := []struct {
		from, to string
		want     currency.PairKind
	}{
		{"USD", "usd", currency.PairIdentity},
		{"USD", "EUR", currency.PairFiat},
		{"USDT", "IDR", currency.PairToken},
		{"IDR", "USDT", currency.PairTokenInverse},
		{"IDR", "BTC", currency.PairDirect}, // not in the inverse table
		{"USD", "JPY", currency.PairDirect},
	}
	for _, tt := range tests {
		got := table.Classify(currency.Code(tt.from), currency.Code(tt.to))
		assert.Equal(t, tt.want, got, "%s/%s", tt.from, tt.to)
	}
}

func TestNewTableSkipsMalformedInversePairs(t *testing.T) {
	table := currency.NewTable(
		currency.NewSet("IDR"), currency.NewSet("USDT"),
		[]string{"IDRUSDT", "IDR:USDT"},
	)
	assert.Equal(t, currency.PairTokenInverse,
		table.Classify("IDR", "USDT"))
}
