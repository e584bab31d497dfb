package pipeline

// Provenance labels for the resolved unit price.
const (
	PriceSourceRetail   = "stock_retail"
	PriceSourceSales    = "sales_median"
	PriceSourcePurchase = "stock_purchase"
	PriceSourceOrder    = "order_payload"
)

// priceCandidate is one entry of a priority-ordered fallback chain.
type priceCandidate struct {
	source string
	value  *float64
}

// firstPositive walks an ordered candidate list and returns the first value
// that is present and strictly positive, with its provenance. Zero and
// negative candidates count as missing, so a zero-priced stock row cannot
// mask a valid price later in the chain. Returns (0, "") when the chain is
// exhausted.
func firstPositive(candidates ...priceCandidate) (float64, string) {
	for _, c := range candidates {
		if c.value != nil && *c.value > 0 {
			return *c.value, c.source
		}
	}
	return 0, ""
}

// rowPriceHT derives the tax-exclusive price observed on one sales row: the
// tax-exclusive net when present, otherwise the tax-inclusive net divided by
// 1 + VAT.
func rowPriceHT(netWoTax, netWTax *float64) *float64 {
	if netWoTax != nil {
		v := *netWoTax
		return &v
	}
	if netWTax != nil {
		v := *netWTax / (1 + VATRate)
		return &v
	}
	return nil
}
