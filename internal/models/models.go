package models

import (
	"time"
)

// Retry queue statuses. Orders are created Pending (or Invalid when the
// intake validation rejects them) and move to Sent/Success/Failed as the
// dispatch flow talks to the ERP. Rows are never deleted.
const (
	StatusPending = "Pending"
	StatusInvalid = "Invalid"
	StatusSent    = "Sent"
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

// RetryOrder is a staged e-commerce order awaiting forwarding to the ERP.
type RetryOrder struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ExternalID   string    `json:"external_id" gorm:"column:external_id;uniqueIndex;not null"`
	Payload      string    `json:"payload" gorm:"type:text"`
	Status       string    `json:"status" gorm:"index;default:'Pending'"`
	ErrorMessage string    `json:"error_message"`
	Retries      int       `json:"retries" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (RetryOrder) TableName() string { return "retry_table" }

// UnifiedRow is one retry-order line joined with stock and sales reference
// data, with the resolved price and computed totals. The table is fully
// rewritten by every pipeline run.
type UnifiedRow struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	ExternalID    string  `json:"external_id" gorm:"column:external_id"`
	Email         string  `json:"email"`
	SKU           string  `json:"sku" gorm:"column:sku;index"`
	Quantity      int     `json:"quantity"`
	Source        string  `json:"source"`
	OrderType     string  `json:"order_type"`
	StockQty      float64 `json:"stock_qty" gorm:"column:stock_qty"`
	PurchaseValue float64 `json:"purchase_value" gorm:"column:purchase_value"`
	RetailValue   float64 `json:"retail_value" gorm:"column:retail_value"`
	PriceHT       float64 `json:"price_ht" gorm:"column:price_ht"`
	PriceSource   string  `json:"price_source" gorm:"column:price_source"`
	TotalHT       float64 `json:"total_ht" gorm:"column:total_ht"`
	TVA           float64 `json:"tva" gorm:"column:tva"`
	TotalTTC      float64 `json:"total_ttc" gorm:"column:total_ttc"`
	IsValidSKU    bool    `json:"is_valid_sku" gorm:"column:is_valid_sku"`
	IsValidQty    bool    `json:"is_valid_qty" gorm:"column:is_valid_qty"`
	IsValid       bool    `json:"is_valid" gorm:"column:is_valid"`
	ErrorReason   string  `json:"error_reason" gorm:"column:error_reason"`
}

func (UnifiedRow) TableName() string { return "unified_data" }

// SalesAgg holds one row per distinct SKU seen in the sales workbook.
type SalesAgg struct {
	ID               uint    `json:"id" gorm:"primaryKey"`
	SKU              string  `json:"sku" gorm:"column:sku;uniqueIndex"`
	QtySold          float64 `json:"qty_sold" gorm:"column:qty_sold"`
	RevenueHT        float64 `json:"revenue_ht" gorm:"column:revenue_ht"`
	PriceHTFromSales float64 `json:"price_ht_from_sales" gorm:"column:price_ht_from_sales"`
}

func (SalesAgg) TableName() string { return "sales_agg" }

// StockSnapshot is the per-SKU stock valuation. stock_value_ht is always
// price_ht_priority * stock_qty.
type StockSnapshot struct {
	ID               uint    `json:"id" gorm:"primaryKey"`
	SKU              string  `json:"sku" gorm:"column:sku;uniqueIndex"`
	StockQty         float64 `json:"stock_qty" gorm:"column:stock_qty"`
	PurchaseValue    float64 `json:"purchase_value" gorm:"column:purchase_value"`
	RetailValue      float64 `json:"retail_value" gorm:"column:retail_value"`
	PriceHTFromSales float64 `json:"price_ht_from_sales" gorm:"column:price_ht_from_sales"`
	PriceHTPriority  float64 `json:"price_ht_priority" gorm:"column:price_ht_priority"`
	StockValueHT     float64 `json:"stock_value_ht" gorm:"column:stock_value_ht"`
}

func (StockSnapshot) TableName() string { return "stock_snapshot" }

// OrderError is the subset of unified rows that failed a business rule.
type OrderError struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	ExternalID  string `json:"external_id" gorm:"column:external_id"`
	Email       string `json:"email"`
	SKU         string `json:"sku" gorm:"column:sku;index"`
	Quantity    int    `json:"quantity"`
	Source      string `json:"source"`
	ErrorReason string `json:"error_reason" gorm:"column:error_reason"`
}

func (OrderError) TableName() string { return "order_errors" }
