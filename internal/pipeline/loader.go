package pipeline

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/amira2200/pfe2025/internal/models"
)

// Loader owns the four derived tables and fully rewrites each of them on
// every run.
type Loader struct {
	db *gorm.DB
}

func NewLoader(db *gorm.DB) *Loader {
	return &Loader{db: db}
}

// LoadSet is one run's worth of freshly computed rows.
type LoadSet struct {
	Unified []models.UnifiedRow
	Sales   []models.SalesAgg
	Stock   []models.StockSnapshot
	Errors  []models.OrderError
}

// LoadAll refreshes the derived tables in a fixed order, one transaction per
// table. A failure aborts the run: the failing table rolls back to its
// previous snapshot, tables loaded earlier in the sequence keep the new one.
// Cross-table atomicity is deliberately not provided.
func (l *Loader) LoadAll(ctx context.Context, set *LoadSet) error {
	if err := replaceTable(ctx, l.db, set.Unified); err != nil {
		return fmt.Errorf("load unified_data: %w", err)
	}
	if err := replaceTable(ctx, l.db, set.Sales); err != nil {
		return fmt.Errorf("load sales_agg: %w", err)
	}
	if err := replaceTable(ctx, l.db, set.Stock); err != nil {
		return fmt.Errorf("load stock_snapshot: %w", err)
	}
	if err := replaceTable(ctx, l.db, set.Errors); err != nil {
		return fmt.Errorf("load order_errors: %w", err)
	}
	return nil
}

// replaceTable refreshes one table inside a single transaction: ensure the
// schema exists (create-if-missing plus additive columns, never destructive),
// delete the previous snapshot, bulk-insert the new rows.
func replaceTable[T any](ctx context.Context, db *gorm.DB, rows []T) error {
	var model T
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&model); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model).Error; err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		return nil
	})
}

// BuildLoadSet converts pipeline output into store rows. Every numeric is
// coerced to zero and every boolean defaults to false, so the store never
// holds nulls in numeric or boolean columns.
func BuildLoadSet(unified []UnifiedLine, sales []SalesAggregate, snapshot []models.StockSnapshot) *LoadSet {
	set := &LoadSet{Stock: snapshot}

	set.Unified = make([]models.UnifiedRow, 0, len(unified))
	for _, u := range unified {
		set.Unified = append(set.Unified, models.UnifiedRow{
			ExternalID:    u.ExternalID,
			Email:         u.Email,
			SKU:           u.SKU,
			Quantity:      u.Quantity,
			Source:        SourceMiddleware,
			OrderType:     u.OrderType,
			StockQty:      float64(u.StockQty),
			PurchaseValue: deref(u.PurchaseValue),
			RetailValue:   deref(u.RetailValue),
			PriceHT:       u.PriceHT,
			PriceSource:   u.PriceSource,
			TotalHT:       u.Totals.TotalHT,
			TVA:           u.Totals.VAT,
			TotalTTC:      u.Totals.TotalTTC,
			IsValidSKU:    u.IsValidSKU,
			IsValidQty:    u.IsValidQty,
			IsValid:       u.IsValid,
			ErrorReason:   u.ErrorReason,
		})
	}

	set.Sales = make([]models.SalesAgg, 0, len(sales))
	for _, s := range sales {
		set.Sales = append(set.Sales, models.SalesAgg{
			SKU:              s.SKU,
			QtySold:          float64(s.QtySold),
			RevenueHT:        s.RevenueHT,
			PriceHTFromSales: deref(s.PriceHT),
		})
	}

	for _, u := range FilterErrors(unified) {
		set.Errors = append(set.Errors, models.OrderError{
			ExternalID:  u.ExternalID,
			Email:       u.Email,
			SKU:         u.SKU,
			Quantity:    u.Quantity,
			Source:      SourceMiddleware,
			ErrorReason: u.ErrorReason,
		})
	}
	return set
}
