package pipeline

// Business-rule error reasons, checked in this order.
const (
	ReasonInvalidSKU = "Invalid SKU"
	ReasonInvalidQty = "Invalid Quantity"
)

// UnifiedLine is one order line joined with the deduplicated stock and sales
// references, with resolved price, validity flags and computed totals.
type UnifiedLine struct {
	OrderLine

	MatchedStock bool
	MatchedSales bool

	StockQty      int
	PurchaseValue *float64
	RetailValue   *float64
	SalesPriceHT  *float64

	PriceHT     float64 // resolved tax-exclusive unit price, 0 when unknown
	PriceSource string
	Totals      Totals

	IsValidSKU  bool
	IsValidQty  bool
	IsValid     bool
	ErrorReason string
}

// Merge left-joins order lines against the aggregated stock and sales
// references on the normalized SKU. Both references are already one row per
// SKU, so the join is strictly many-to-one and never multiplies order rows.
//
// is_valid_sku reflects stock-table membership only: a SKU priced via the
// sales fallback but absent from stock stays invalid. Return lines carry a
// negated quantity and are therefore always flagged invalid here; that is
// the observed, preserved behavior of the reconciliation flow.
func Merge(lines []OrderLine, stock []StockAgg, sales []SalesAggregate) []UnifiedLine {
	stockBySKU := make(map[string]StockAgg, len(stock))
	for _, s := range stock {
		stockBySKU[s.SKU] = s
	}
	salesBySKU := make(map[string]SalesAggregate, len(sales))
	for _, s := range sales {
		salesBySKU[s.SKU] = s
	}

	out := make([]UnifiedLine, 0, len(lines))
	for _, ln := range lines {
		u := UnifiedLine{OrderLine: ln}

		if ln.SKU != "" {
			if sa, ok := stockBySKU[ln.SKU]; ok {
				u.MatchedStock = true
				u.StockQty = sa.StockQty
				u.PurchaseValue = sa.PurchaseValue
				u.RetailValue = sa.RetailValue
			}
			if sg, ok := salesBySKU[ln.SKU]; ok {
				u.MatchedSales = true
				u.SalesPriceHT = sg.PriceHT
			}
		}

		price, source := firstPositive(
			priceCandidate{PriceSourceRetail, u.RetailValue},
			priceCandidate{PriceSourceSales, u.SalesPriceHT},
			priceCandidate{PriceSourcePurchase, u.PurchaseValue},
		)
		switch {
		case price > 0:
			u.PriceHT = price
			u.PriceSource = source
			u.Totals = ComputeTotals(ln.Quantity, &price, nil)
		case ln.UnitTTC != nil:
			u.Totals = ComputeTotals(ln.Quantity, nil, ln.UnitTTC)
			u.PriceHT = *ln.UnitTTC / (1 + VATRate)
			u.PriceSource = PriceSourceOrder
		default:
			u.Totals = ComputeTotals(ln.Quantity, nil, nil)
		}

		u.IsValidSKU = u.MatchedStock
		u.IsValidQty = ln.Quantity > 0
		u.IsValid = u.IsValidSKU && u.IsValidQty
		switch {
		case !u.IsValidSKU:
			u.ErrorReason = ReasonInvalidSKU
		case !u.IsValidQty:
			u.ErrorReason = ReasonInvalidQty
		}

		out = append(out, u)
	}
	return out
}

// FilterErrors selects the unified lines destined for order_errors.
func FilterErrors(lines []UnifiedLine) []UnifiedLine {
	var out []UnifiedLine
	for _, u := range lines {
		if !u.IsValid || u.Quantity <= 0 {
			out = append(out, u)
		}
	}
	return out
}
