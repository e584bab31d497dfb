package pipeline

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/amira2200/pfe2025/internal/models"
)

// OrderLine is one retry-order payload item, normalized and ready for the
// merge. Return orders arrive here with their quantity already negated.
type OrderLine struct {
	RetryID    uint
	ExternalID string
	OrderType  string
	Email      string
	SKU        string // normalized; empty means unknown
	Quantity   int
	UnitTTC    *float64 // payload unit price, tax inclusive
}

type retryRecord struct {
	ID         uint
	ExternalID string
	Payload    string
	Status     string
	Retries    int
}

// ExtractOrderLines reads the retry queue, through the reconciled
// retry_enriched view when it exists and the base table otherwise, and expands
// every payload item into one line. Malformed payloads degrade to a single
// empty line (picked up as invalid downstream); they never abort the run.
func ExtractOrderLines(db *gorm.DB) ([]OrderLine, error) {
	var recs []retryRecord
	if err := db.Table("retry_enriched").Find(&recs).Error; err != nil {
		log.Debug().Err(err).Msg("retry_enriched view unavailable, reading retry_table")
		recs = nil
		if err := db.Table("retry_table").Find(&recs).Error; err != nil {
			return nil, fmt.Errorf("read retry queue: %w", err)
		}
	}

	lines := make([]OrderLine, 0, len(recs))
	for _, rec := range recs {
		doc, err := models.ParseOrderDocument(rec.Payload)
		if err != nil {
			log.Warn().Err(err).Str("external_id", rec.ExternalID).Msg("malformed order payload")
			lines = append(lines, OrderLine{RetryID: rec.ID, ExternalID: rec.ExternalID})
			continue
		}

		email := NormalizeEmail(doc.Email)
		if len(doc.Items) == 0 {
			lines = append(lines, OrderLine{
				RetryID:    rec.ID,
				ExternalID: rec.ExternalID,
				OrderType:  doc.OrderType,
				Email:      email,
			})
			continue
		}
		for _, item := range doc.Items {
			qty := int(item.Count())
			// Returns are modeled with negated quantity before the merge,
			// so the positivity rule applies uniformly downstream.
			if doc.OrderType == models.OrderTypeReturn && qty > 0 {
				qty = -qty
			}
			lines = append(lines, OrderLine{
				RetryID:    rec.ID,
				ExternalID: rec.ExternalID,
				OrderType:  doc.OrderType,
				Email:      email,
				SKU:        NormalizeSKU(item.SKU),
				Quantity:   qty,
				UnitTTC:    item.UnitPriceTTC(),
			})
		}
	}
	return lines, nil
}
