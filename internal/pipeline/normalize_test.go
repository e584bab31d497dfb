package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func TestNormalizeSKU(t *testing.T) {
	cases := map[string]string{
		"abc-123":      "ABC123",
		"  ABC 123  ":  "ABC123",
		"abc_123":      "ABC123",
		"ABC123":       "ABC123",
		"":             "",
		"---":          "",
		"abc 123": "ABC123", // non-breaking space folds under NFKC
		"réf-42":       "RF42",   // non-ASCII letters dropped
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeSKU(in), "input %q", in)
	}
}

func TestNormalizeSKUIdempotent(t *testing.T) {
	once := NormalizeSKU("aBc-12 3")
	assert.Equal(t, once, NormalizeSKU(once))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 5, ParseQuantity("5"))
	assert.Equal(t, 5, ParseQuantity("5,0"))
	assert.Equal(t, -3, ParseQuantity("-3"))
	assert.Equal(t, 0, ParseQuantity(""))
	assert.Equal(t, 0, ParseQuantity("n/a"))
}

func TestParseAmount(t *testing.T) {
	v := ParseAmount("1 234,56")
	require.NotNil(t, v)
	assert.InDelta(t, 1234.56, *v, 1e-9)

	v = ParseAmount("-5.25")
	require.NotNil(t, v)
	assert.InDelta(t, -5.25, *v, 1e-9)

	v = ParseAmount("AED 99.90")
	require.NotNil(t, v)
	assert.InDelta(t, 99.90, *v, 1e-9)

	assert.Nil(t, ParseAmount(""))
	assert.Nil(t, ParseAmount("unknown"))
}

func TestBuildStockRecordsDropsEmptySKU(t *testing.T) {
	table := &Table{
		Headers: []string{"SKU", "Qté stock", "Valo PA"},
		Rows: [][]string{
			{"abc-1", "3", "10,5"},
			{"---", "9", "1"},
			{"def-2", "2"},
		},
	}
	recs := BuildStockRecords(table)

	require.Len(t, recs, 2)
	assert.Equal(t, "ABC1", recs[0].SKU)
	assert.Equal(t, 3, recs[0].StockQty)
	require.NotNil(t, recs[0].PurchaseValue)
	assert.InDelta(t, 10.5, *recs[0].PurchaseValue, 1e-9)

	assert.Equal(t, "DEF2", recs[1].SKU)
	assert.Nil(t, recs[1].PurchaseValue)
}
