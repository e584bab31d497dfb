// Package reports renders management PDF reports from the derived pipeline
// tables.
package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/amira2200/pfe2025/internal/models"
)

// Builder reads the derived tables and renders the finance summary and the
// order error report. Missing tables produce empty report sections, not
// errors: a report request may legitimately arrive before the first
// pipeline run.
type Builder struct {
	db *gorm.DB
}

func NewBuilder(db *gorm.DB) *Builder {
	return &Builder{db: db}
}

// FinanceSummary renders totals from unified_data plus the stock valuation
// from stock_snapshot.
func (b *Builder) FinanceSummary(ctx context.Context) ([]byte, error) {
	var rows []models.UnifiedRow
	if err := b.db.WithContext(ctx).Find(&rows).Error; err != nil {
		log.Warn().Err(err).Msg("unified_data unavailable, rendering empty summary")
		rows = nil
	}
	var snapshot []models.StockSnapshot
	if err := b.db.WithContext(ctx).Find(&snapshot).Error; err != nil {
		log.Warn().Err(err).Msg("stock_snapshot unavailable, rendering empty valuation")
		snapshot = nil
	}
	var sales []models.SalesAgg
	if err := b.db.WithContext(ctx).Find(&sales).Error; err != nil {
		log.Warn().Err(err).Msg("sales_agg unavailable, rendering empty sales section")
		sales = nil
	}

	var totalHT, totalVAT, totalTTC float64
	var valid, invalid int
	for _, r := range rows {
		if r.IsValid {
			valid++
			totalHT += r.TotalHT
			totalVAT += r.TVA
			totalTTC += r.TotalTTC
		} else {
			invalid++
		}
	}
	var stockValue float64
	for _, s := range snapshot {
		stockValue += s.StockValueHT
	}
	var salesQty, salesRevenue float64
	for _, s := range sales {
		salesQty += s.QtySold
		salesRevenue += s.RevenueHT
	}

	pdf := newReport("Finance Summary")
	pdf.SetFont("Helvetica", "", 11)
	writeLine(pdf, fmt.Sprintf("Order lines: %d valid, %d invalid", valid, invalid))
	writeLine(pdf, fmt.Sprintf("Revenue HT: %.2f", totalHT))
	writeLine(pdf, fmt.Sprintf("VAT: %.2f", totalVAT))
	writeLine(pdf, fmt.Sprintf("Revenue TTC: %.2f", totalTTC))
	writeLine(pdf, fmt.Sprintf("Reference sales (%d SKUs): %.0f units, %.2f HT",
		len(sales), salesQty, salesRevenue))
	writeLine(pdf, fmt.Sprintf("Stock valuation HT (%d SKUs): %.2f", len(snapshot), stockValue))
	return output(pdf)
}

// OrderErrors renders the order_errors table as a tabular report.
func (b *Builder) OrderErrors(ctx context.Context) ([]byte, error) {
	var errs []models.OrderError
	if err := b.db.WithContext(ctx).Find(&errs).Error; err != nil {
		log.Warn().Err(err).Msg("order_errors unavailable, rendering empty report")
		errs = nil
	}

	pdf := newReport("Order Errors")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(45, 8, "Order", "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 8, "SKU", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(75, 8, "Reason", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if len(errs) == 0 {
		pdf.CellFormat(190, 7, "no errors recorded", "1", 1, "C", false, 0, "")
	}
	for _, e := range errs {
		pdf.CellFormat(45, 7, e.ExternalID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, e.SKU, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", e.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(75, 7, e.ErrorReason, "1", 1, "L", false, 0, "")
	}
	return output(pdf)
}

func newReport(heading string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(heading, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, heading, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+time.Now().UTC().Format("2006-01-02 15:04 UTC"), "", 1, "C", false, 0, "")
	pdf.Ln(6)
	return pdf
}

func writeLine(pdf *gofpdf.Fpdf, text string) {
	pdf.CellFormat(0, 7, text, "", 1, "L", false, 0, "")
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
