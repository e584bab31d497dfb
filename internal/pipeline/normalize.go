package pipeline

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeSKU canonicalizes a stock-keeping unit: NFKC normalization (which
// also folds non-breaking spaces), uppercase, then ASCII alphanumerics only.
// Two SKUs differing only by punctuation, spacing or case collapse to the
// same key. An empty result means "no SKU".
func NormalizeSKU(raw string) string {
	s := norm.NFKC.String(raw)
	s = strings.ToUpper(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeEmail trims and lowercases.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ParseQuantity coerces a cell to an integer quantity. Non-parseable input
// is 0, never an error.
func ParseQuantity(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0
	}
	return int(f)
}

// ParseAmount coerces a monetary cell to a float. Everything except digits,
// comma, period and a leading sign is stripped; comma is accepted as the
// decimal separator. Non-parseable input is nil, unknown rather than zero.
func ParseAmount(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			b.WriteRune(r)
		case (r == '-' || r == '+') && i == 0:
			b.WriteRune(r)
		}
	}
	cleaned := strings.ReplaceAll(b.String(), ",", ".")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}

// StockRecord is one normalized stock-sheet row.
type StockRecord struct {
	SKU           string
	StockQty      int
	PurchaseValue *float64
	RetailValue   *float64
}

// SalesRecord is one normalized sales-sheet row.
type SalesRecord struct {
	SKU      string
	Quantity int
	NetWoTax *float64
	NetWTax  *float64
}

// BuildStockRecords maps and normalizes a raw stock table. Rows whose SKU
// normalizes to empty cannot join anything and are dropped.
func BuildStockRecords(t *Table) []StockRecord {
	mapping := MapStockColumns(t.Headers)
	out := make([]StockRecord, 0, len(t.Rows))
	for _, rec := range t.Project(mapping) {
		sku := NormalizeSKU(rec[FieldSKU])
		if sku == "" {
			continue
		}
		out = append(out, StockRecord{
			SKU:           sku,
			StockQty:      ParseQuantity(rec[FieldStockQty]),
			PurchaseValue: ParseAmount(rec[FieldPurchaseValue]),
			RetailValue:   ParseAmount(rec[FieldRetailValue]),
		})
	}
	return out
}

// BuildSalesRecords maps and normalizes a raw sales table.
func BuildSalesRecords(t *Table) []SalesRecord {
	mapping := MapSalesColumns(t.Headers)
	out := make([]SalesRecord, 0, len(t.Rows))
	for _, rec := range t.Project(mapping) {
		sku := NormalizeSKU(rec[FieldSKU])
		if sku == "" {
			continue
		}
		out = append(out, SalesRecord{
			SKU:      sku,
			Quantity: ParseQuantity(rec[FieldQuantity]),
			NetWoTax: ParseAmount(rec[FieldNetWoTax]),
			NetWTax:  ParseAmount(rec[FieldNetWTax]),
		})
	}
	return out
}
