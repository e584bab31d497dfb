package pipeline

// VATRate is the exclusive-basis VAT applied by the reconciliation pipeline.
// The invoice renderer displays a 5% inclusive-basis rate for the UAE; that
// is a different tax on a different basis and the two must never be unified.
const VATRate = 0.20

// Derivation basis of a Totals value. Exactly one path is ever used per row.
const (
	BasisHT   = "ht"
	BasisTTC  = "ttc"
	BasisNone = "none"
)

// Totals carries the computed financials of one unified row.
type Totals struct {
	TotalHT  float64
	VAT      float64
	TotalTTC float64
	Basis    string
}

// ComputeTotals derives the row financials. With a tax-exclusive unit price
// the forward path applies: total_ht = qty*price, vat = 20% of it. With only
// a tax-inclusive unit price the inverse path applies: total_ttc = qty*price,
// vat = total_ttc * 20/120. With neither, everything is zero.
func ComputeTotals(qty int, priceHT, unitTTC *float64) Totals {
	q := float64(qty)
	if priceHT != nil && *priceHT > 0 {
		ht := q * *priceHT
		vat := ht * VATRate
		return Totals{TotalHT: ht, VAT: vat, TotalTTC: ht + vat, Basis: BasisHT}
	}
	if unitTTC != nil && *unitTTC > 0 {
		ttc := q * *unitTTC
		vat := ttc * VATRate / (1 + VATRate)
		return Totals{TotalHT: ttc - vat, VAT: vat, TotalTTC: ttc, Basis: BasisTTC}
	}
	return Totals{Basis: BasisNone}
}
