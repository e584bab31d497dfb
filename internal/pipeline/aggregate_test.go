package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateStockSumsDuplicates(t *testing.T) {
	recs := []StockRecord{
		{SKU: "ABC123", StockQty: 3, PurchaseValue: fp(10), RetailValue: fp(20)},
		{SKU: "ABC123", StockQty: 7, PurchaseValue: fp(14), RetailValue: nil},
		{SKU: "XYZ9", StockQty: 1},
	}
	agg := AggregateStock(recs)

	require.Len(t, agg, 2)
	assert.Equal(t, "ABC123", agg[0].SKU)
	assert.Equal(t, 10, agg[0].StockQty)
	require.NotNil(t, agg[0].PurchaseValue)
	assert.InDelta(t, 12, *agg[0].PurchaseValue, 1e-9) // median of 10, 14
	require.NotNil(t, agg[0].RetailValue)
	assert.InDelta(t, 20, *agg[0].RetailValue, 1e-9)

	assert.Equal(t, "XYZ9", agg[1].SKU)
	assert.Nil(t, agg[1].PurchaseValue)
}

func TestAggregateSalesMedianNotMean(t *testing.T) {
	recs := []SalesRecord{
		{SKU: "ABC123", Quantity: 1, NetWoTax: fp(50)},
		{SKU: "ABC123", Quantity: 2, NetWoTax: fp(50)},
		{SKU: "ABC123", Quantity: 1, NetWoTax: fp(500)}, // bulk anomaly
	}
	agg := AggregateSales(recs)

	require.Len(t, agg, 1)
	assert.Equal(t, 4, agg[0].QtySold)
	assert.InDelta(t, 600, agg[0].RevenueHT, 1e-9)
	require.NotNil(t, agg[0].PriceHT)
	assert.InDelta(t, 50, *agg[0].PriceHT, 1e-9)
}

func TestAggregateSalesDerivesHTFromTTC(t *testing.T) {
	recs := []SalesRecord{
		{SKU: "ABC123", Quantity: 1, NetWTax: fp(120)},
	}
	agg := AggregateSales(recs)

	require.Len(t, agg, 1)
	require.NotNil(t, agg[0].PriceHT)
	assert.InDelta(t, 100, *agg[0].PriceHT, 1e-6)
}

func TestMedianOf(t *testing.T) {
	assert.Nil(t, medianOf(nil))

	m := medianOf([]float64{3, 1, 2})
	require.NotNil(t, m)
	assert.InDelta(t, 2, *m, 1e-9)

	m = medianOf([]float64{4, 1, 2, 3})
	require.NotNil(t, m)
	assert.InDelta(t, 2.5, *m, 1e-9)
}

func TestBuildStockSnapshotPriorityChain(t *testing.T) {
	stock := []StockAgg{
		{SKU: "RETAIL1", StockQty: 2, PurchaseValue: fp(5), RetailValue: fp(20)},
		{SKU: "SALES1", StockQty: 3, PurchaseValue: fp(5)},
		{SKU: "PURCH1", StockQty: 4, PurchaseValue: fp(5)},
		{SKU: "NONE1", StockQty: 5},
	}
	sales := []SalesAggregate{
		{SKU: "SALES1", PriceHT: fp(9)},
	}
	snap := BuildStockSnapshot(stock, sales)

	require.Len(t, snap, 4)
	assert.InDelta(t, 20, snap[0].PriceHTPriority, 1e-9)
	assert.InDelta(t, 40, snap[0].StockValueHT, 1e-9)

	assert.InDelta(t, 9, snap[1].PriceHTPriority, 1e-9)
	assert.InDelta(t, 27, snap[1].StockValueHT, 1e-9)

	assert.InDelta(t, 5, snap[2].PriceHTPriority, 1e-9)
	assert.InDelta(t, 20, snap[2].StockValueHT, 1e-9)

	assert.Zero(t, snap[3].PriceHTPriority)
	assert.Zero(t, snap[3].StockValueHT)
}
