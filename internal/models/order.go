package models

import "encoding/json"

// Order types accepted by the intake endpoint.
const (
	OrderTypeSale        = "sale"
	OrderTypeReturn      = "return"
	OrderTypeReplacement = "replacement"
)

// OrderDocument is the JSON payload staged in retry_table and forwarded to
// the ERP. Prices are tax-inclusive unit prices in AED.
type OrderDocument struct {
	OrderType   string      `json:"orderType"`
	OrderNumber string      `json:"orderNumber"`
	OrderDate   string      `json:"orderDate"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Email       string      `json:"email"`
	TotalAmount float64     `json:"totalAmount"`
	PaymentType *int        `json:"paymentType"`
	Items       []OrderItem `json:"items"`
}

// OrderItem is one line of an order document. Older clients wrote the
// quantity under "qty"; both spellings are accepted on read.
type OrderItem struct {
	SKU           string   `json:"sku"`
	Quantity      *float64 `json:"quantity"`
	LegacyQty     *float64 `json:"qty,omitempty"`
	OriginalPrice float64  `json:"originalPrice"`
	FinalPrice    float64  `json:"finalPrice"`
	PromotionID   *string  `json:"promotionId"`
}

// Count returns the line quantity, preferring the current field name.
func (i OrderItem) Count() float64 {
	if i.Quantity != nil {
		return *i.Quantity
	}
	if i.LegacyQty != nil {
		return *i.LegacyQty
	}
	return 0
}

// UnitPriceTTC returns the tax-inclusive unit price for the line: the final
// price when strictly positive, otherwise the original price. Returns nil
// when neither is usable.
func (i OrderItem) UnitPriceTTC() *float64 {
	if i.FinalPrice > 0 {
		p := i.FinalPrice
		return &p
	}
	if i.OriginalPrice > 0 {
		p := i.OriginalPrice
		return &p
	}
	return nil
}

// ParseOrderDocument decodes a staged payload.
func ParseOrderDocument(payload string) (*OrderDocument, error) {
	var doc OrderDocument
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
