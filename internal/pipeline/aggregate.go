package pipeline

import (
	"sort"

	"github.com/amira2200/pfe2025/internal/models"
)

// StockAgg is the deduplicated stock reference: one row per distinct SKU,
// quantity summed, price fields the median of the duplicates.
type StockAgg struct {
	SKU           string
	StockQty      int
	PurchaseValue *float64
	RetailValue   *float64
}

// SalesAggregate is the deduplicated sales reference: one row per distinct
// SKU with summed quantity and revenue and the median per-row HT price.
type SalesAggregate struct {
	SKU       string
	QtySold   int
	RevenueHT float64
	PriceHT   *float64
}

// AggregateStock collapses duplicate SKUs ahead of the join so a raw
// duplicate row can never multiply retry-order rows. Output preserves first
// appearance order.
func AggregateStock(records []StockRecord) []StockAgg {
	type acc struct {
		qty      int
		purchase []float64
		retail   []float64
	}
	order := make([]string, 0, len(records))
	bySKU := make(map[string]*acc, len(records))
	for _, r := range records {
		a, ok := bySKU[r.SKU]
		if !ok {
			a = &acc{}
			bySKU[r.SKU] = a
			order = append(order, r.SKU)
		}
		a.qty += r.StockQty
		if r.PurchaseValue != nil {
			a.purchase = append(a.purchase, *r.PurchaseValue)
		}
		if r.RetailValue != nil {
			a.retail = append(a.retail, *r.RetailValue)
		}
	}

	out := make([]StockAgg, 0, len(order))
	for _, sku := range order {
		a := bySKU[sku]
		out = append(out, StockAgg{
			SKU:           sku,
			StockQty:      a.qty,
			PurchaseValue: medianOf(a.purchase),
			RetailValue:   medianOf(a.retail),
		})
	}
	return out
}

// AggregateSales collapses sales rows per SKU. The per-SKU price is the
// median of per-row HT prices rather than the mean, so bulk or anomalous
// transactions do not skew it.
func AggregateSales(records []SalesRecord) []SalesAggregate {
	type acc struct {
		qty     int
		revenue float64
		prices  []float64
	}
	order := make([]string, 0, len(records))
	bySKU := make(map[string]*acc, len(records))
	for _, r := range records {
		a, ok := bySKU[r.SKU]
		if !ok {
			a = &acc{}
			bySKU[r.SKU] = a
			order = append(order, r.SKU)
		}
		a.qty += r.Quantity
		if p := rowPriceHT(r.NetWoTax, r.NetWTax); p != nil {
			a.revenue += *p
			a.prices = append(a.prices, *p)
		}
	}

	out := make([]SalesAggregate, 0, len(order))
	for _, sku := range order {
		a := bySKU[sku]
		out = append(out, SalesAggregate{
			SKU:       sku,
			QtySold:   a.qty,
			RevenueHT: a.revenue,
			PriceHT:   medianOf(a.prices),
		})
	}
	return out
}

// BuildStockSnapshot values the deduplicated stock using the priority chain
// retail -> sales median -> purchase -> 0. stock_value_ht is always
// price_ht_priority * stock_qty.
func BuildStockSnapshot(stock []StockAgg, sales []SalesAggregate) []models.StockSnapshot {
	salesPrice := make(map[string]*float64, len(sales))
	for _, s := range sales {
		salesPrice[s.SKU] = s.PriceHT
	}

	out := make([]models.StockSnapshot, 0, len(stock))
	for _, s := range stock {
		fromSales := salesPrice[s.SKU]
		priority, _ := firstPositive(
			priceCandidate{PriceSourceRetail, s.RetailValue},
			priceCandidate{PriceSourceSales, fromSales},
			priceCandidate{PriceSourcePurchase, s.PurchaseValue},
		)
		out = append(out, models.StockSnapshot{
			SKU:              s.SKU,
			StockQty:         float64(s.StockQty),
			PurchaseValue:    deref(s.PurchaseValue),
			RetailValue:      deref(s.RetailValue),
			PriceHTFromSales: deref(fromSales),
			PriceHTPriority:  priority,
			StockValueHT:     priority * float64(s.StockQty),
		})
	}
	return out
}

// medianOf returns the median, or nil for an empty set. Even-sized sets take
// the mean of the two middle values.
func medianOf(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	m := sorted[mid]
	if len(sorted)%2 == 0 {
		m = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &m
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
