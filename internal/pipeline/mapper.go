package pipeline

import (
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"
)

// Canonical field names produced by the column mapper.
const (
	FieldSKU           = "sku"
	FieldStockQty      = "stock_qty"
	FieldPurchaseValue = "purchase_value"
	FieldRetailValue   = "retail_value"
	FieldQuantity      = "quantity"
	FieldNetWoTax      = "net_wo_tax"
	FieldNetWTax       = "net_w_tax"
)

// mappingRule matches one canonical target. Every group in allOf must
// contribute at least one token to the canonicalized header. Rules are
// evaluated in order and each target claims at most one column.
type mappingRule struct {
	target string
	allOf  [][]string
}

func (r mappingRule) matches(tokens map[string]bool) bool {
	for _, group := range r.allOf {
		hit := false
		for _, kw := range group {
			if tokens[kw] {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

var skuGroup = []string{"sku", "item", "article", "ref", "reference", "code"}
var qtyGroup = []string{"qte", "qty", "quantite", "quantity", "quantites"}
var valueGroup = []string{"valo", "valeur", "value", "val"}

// Stock sheets: quantity columns must carry a stock/image qualifier so a
// plain sales-style quantity header is not claimed by mistake.
var stockRules = []mappingRule{
	{target: FieldSKU, allOf: [][]string{skuGroup}},
	{target: FieldStockQty, allOf: [][]string{qtyGroup, {"image", "stock"}}},
	{target: FieldPurchaseValue, allOf: [][]string{valueGroup, {"pa", "achat", "purchase", "cost"}}},
	{target: FieldRetailValue, allOf: [][]string{valueGroup, {"pr", "vente", "retail", "sale"}}},
}

var salesRules = []mappingRule{
	{target: FieldSKU, allOf: [][]string{skuGroup}},
	{target: FieldQuantity, allOf: [][]string{qtyGroup}},
	{target: FieldNetWoTax, allOf: [][]string{{"ht", "hors"}}},
	{target: FieldNetWTax, allOf: [][]string{{"ttc"}}},
}

// MapStockColumns maps raw stock-sheet headers onto the canonical stock
// fields. Unmatched targets are simply absent from the result; downstream
// steps treat them as missing columns.
func MapStockColumns(headers []string) map[string]string {
	m := mapColumns(headers, stockRules)
	log.Info().Interface("mapping", m).Msg("stock header mapping")
	return m
}

// MapSalesColumns maps raw sales-sheet headers onto the canonical sales
// fields.
func MapSalesColumns(headers []string) map[string]string {
	m := mapColumns(headers, salesRules)
	log.Info().Interface("mapping", m).Msg("sales header mapping")
	return m
}

func mapColumns(headers []string, rules []mappingRule) map[string]string {
	tokens := make([]map[string]bool, len(headers))
	for i, h := range headers {
		tokens[i] = headerTokens(h)
	}

	claimed := make(map[int]bool, len(headers))
	mapping := make(map[string]string)
	for _, rule := range rules {
		for i := range headers {
			if claimed[i] {
				continue
			}
			if rule.matches(tokens[i]) {
				mapping[headers[i]] = rule.target
				claimed[i] = true
				break
			}
		}
	}
	return mapping
}

// headerTokens canonicalizes a header (diacritics stripped, lowercased,
// punctuation collapsed to spaces) and returns its token set.
// "Qté de l'image" becomes {qte, de, l, image}.
func headerTokens(header string) map[string]bool {
	canonical := canonicalizeHeader(header)
	set := make(map[string]bool)
	for _, tok := range strings.Fields(canonical) {
		set[tok] = true
	}
	return set
}

func canonicalizeHeader(header string) string {
	s := stripDiacritics(strings.ToLower(header))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// stripDiacritics decomposes to NFD and drops combining marks, so "Qté"
// and "qte" compare equal.
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
