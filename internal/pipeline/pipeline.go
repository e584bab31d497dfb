// Package pipeline implements the order reconciliation and pricing pipeline:
// retry-queue orders and two reference workbooks are normalized, merged,
// priced and loaded into four derived reporting tables.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SourceMiddleware marks rows that originate from the retry queue.
const SourceMiddleware = "middleware"

// BlobSource fetches a named object from the workbook store.
type BlobSource interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Runner executes one full pipeline run. Runs are single-threaded and
// full-refresh; concurrent runs against the same store are not safe and must
// be serialized by the caller.
type Runner struct {
	db            *gorm.DB
	blobs         BlobSource
	salesWorkbook string
	stockWorkbook string
}

func NewRunner(db *gorm.DB, blobs BlobSource, salesWorkbook, stockWorkbook string) *Runner {
	return &Runner{
		db:            db,
		blobs:         blobs,
		salesWorkbook: salesWorkbook,
		stockWorkbook: stockWorkbook,
	}
}

// Summary describes a completed run, suitable as a human-readable response
// body.
type Summary struct {
	OrderLines  int
	UnifiedRows int
	ValidRows   int
	ErrorRows   int
	StockSKUs   int
	SalesSKUs   int
	SampleSKUs  []string
	Elapsed     time.Duration
}

func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pipeline completed in %s\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "unified_data: %d rows (%d valid, %d errors) from %d order lines\n",
		s.UnifiedRows, s.ValidRows, s.ErrorRows, s.OrderLines)
	fmt.Fprintf(&b, "stock_snapshot: %d SKUs, sales_agg: %d SKUs\n", s.StockSKUs, s.SalesSKUs)
	if len(s.SampleSKUs) > 0 {
		fmt.Fprintf(&b, "sample SKUs: %s\n", strings.Join(s.SampleSKUs, ", "))
	}
	return b.String()
}

// Run executes extract -> map -> normalize -> aggregate -> merge -> price ->
// compute -> load. Any failure aborts the run; the next invocation re-reads
// every source from scratch, so a failed run leaves nothing to clean up.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()
	log.Info().Msg("starting reconciliation pipeline")

	lines, err := ExtractOrderLines(r.db)
	if err != nil {
		return nil, err
	}
	log.Info().Int("lines", len(lines)).Msg("retry queue extracted")

	salesTable, err := r.fetchWorkbook(ctx, r.salesWorkbook)
	if err != nil {
		return nil, fmt.Errorf("sales workbook: %w", err)
	}
	stockTable, err := r.fetchWorkbook(ctx, r.stockWorkbook)
	if err != nil {
		return nil, fmt.Errorf("stock workbook: %w", err)
	}

	stockRecords := BuildStockRecords(stockTable)
	salesRecords := BuildSalesRecords(salesTable)
	log.Info().
		Int("stock_rows", len(stockRecords)).
		Int("sales_rows", len(salesRecords)).
		Msg("workbooks normalized")

	stockAgg := AggregateStock(stockRecords)
	salesAgg := AggregateSales(salesRecords)

	unified := Merge(lines, stockAgg, salesAgg)
	snapshot := BuildStockSnapshot(stockAgg, salesAgg)
	set := BuildLoadSet(unified, salesAgg, snapshot)

	if err := NewLoader(r.db).LoadAll(ctx, set); err != nil {
		return nil, err
	}

	summary := &Summary{
		OrderLines:  len(lines),
		UnifiedRows: len(set.Unified),
		ErrorRows:   len(set.Errors),
		StockSKUs:   len(set.Stock),
		SalesSKUs:   len(set.Sales),
		SampleSKUs:  sampleSKUs(unified, 5),
		Elapsed:     time.Since(started),
	}
	for _, u := range unified {
		if u.IsValid {
			summary.ValidRows++
		}
	}
	log.Info().
		Int("unified", summary.UnifiedRows).
		Int("valid", summary.ValidRows).
		Int("errors", summary.ErrorRows).
		Dur("elapsed", summary.Elapsed).
		Msg("pipeline completed")
	return summary, nil
}

func (r *Runner) fetchWorkbook(ctx context.Context, name string) (*Table, error) {
	data, err := r.blobs.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	t, err := ReadWorkbook(data)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", name, err)
	}
	return t, nil
}

func sampleSKUs(lines []UnifiedLine, max int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, u := range lines {
		if u.SKU == "" || seen[u.SKU] {
			continue
		}
		seen[u.SKU] = true
		out = append(out, u.SKU)
		if len(out) == max {
			break
		}
	}
	return out
}
