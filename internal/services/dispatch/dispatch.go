// Package dispatch drains the retry queue: each pending order is rendered
// as a PDF document, forwarded to the ERP and, on success, mailed to the
// customer.
package dispatch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/amira2200/pfe2025/internal/invoice"
	"github.com/amira2200/pfe2025/internal/models"
)

// ERPClient submits one order document to the ERP.
type ERPClient interface {
	CreateSaleDocument(ctx context.Context, order *models.OrderDocument, invoiceURL string) error
}

// DocumentStore persists rendered PDFs.
type DocumentStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// InvoiceMailer delivers the rendered PDF to the customer.
type InvoiceMailer interface {
	SendInvoice(to, orderNumber string, pdf []byte) error
}

// Processor moves retry_table rows from Pending to Success or Failed.
type Processor struct {
	db     *gorm.DB
	erp    ERPClient
	store  DocumentStore
	mailer InvoiceMailer
}

func NewProcessor(db *gorm.DB, erp ERPClient, store DocumentStore, mailer InvoiceMailer) *Processor {
	return &Processor{db: db, erp: erp, store: store, mailer: mailer}
}

// Result counts one drain pass.
type Result struct {
	Processed int
	Succeeded int
	Failed    int
}

// Run processes every pending order once. Each order is handled
// independently: one failing order does not block the rest of the queue.
func (p *Processor) Run(ctx context.Context) (*Result, error) {
	var orders []models.RetryOrder
	if err := p.db.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Order("id").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("read pending orders: %w", err)
	}

	res := &Result{}
	for _, order := range orders {
		res.Processed++
		if err := p.processOne(ctx, &order); err != nil {
			res.Failed++
			log.Error().Err(err).Str("order", order.ExternalID).Msg("dispatch failed")
		} else {
			res.Succeeded++
		}
	}
	if res.Processed > 0 {
		log.Info().
			Int("processed", res.Processed).
			Int("succeeded", res.Succeeded).
			Int("failed", res.Failed).
			Msg("dispatch pass completed")
	}
	return res, nil
}

// processOne handles a single order. The ERP call decides Success or Failed;
// document upload and mail delivery are best effort and only logged.
func (p *Processor) processOne(ctx context.Context, order *models.RetryOrder) error {
	doc, err := models.ParseOrderDocument(order.Payload)
	if err != nil {
		return p.markFailed(ctx, order, fmt.Errorf("malformed payload: %w", err))
	}

	if err := p.setStatus(ctx, order, models.StatusSent, ""); err != nil {
		return err
	}

	pdf, err := invoice.Render(doc)
	if err != nil {
		return p.markFailed(ctx, order, err)
	}

	key := invoice.Key(doc.OrderNumber)
	if err := p.store.Upload(ctx, key, pdf, "application/pdf"); err != nil {
		log.Warn().Err(err).Str("order", doc.OrderNumber).Msg("invoice upload failed")
		key = ""
	}

	if err := p.erp.CreateSaleDocument(ctx, doc, key); err != nil {
		return p.markFailed(ctx, order, err)
	}

	if err := p.mailer.SendInvoice(doc.Email, doc.OrderNumber, pdf); err != nil {
		log.Warn().Err(err).Str("order", doc.OrderNumber).Msg("invoice mail failed")
	}

	return p.setStatus(ctx, order, models.StatusSuccess, "")
}

func (p *Processor) markFailed(ctx context.Context, order *models.RetryOrder, cause error) error {
	if err := p.setStatus(ctx, order, models.StatusFailed, truncate(cause.Error(), 255)); err != nil {
		return err
	}
	return cause
}

// setStatus persists a status transition and bumps the retry counter on
// terminal states.
func (p *Processor) setStatus(ctx context.Context, order *models.RetryOrder, status, message string) error {
	updates := map[string]interface{}{
		"status":        status,
		"error_message": message,
	}
	if status == models.StatusSuccess || status == models.StatusFailed {
		updates["retries"] = gorm.Expr("retries + 1")
	}
	if err := p.db.WithContext(ctx).
		Model(&models.RetryOrder{}).
		Where("id = ?", order.ID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("update order %s: %w", order.ExternalID, err)
	}
	order.Status = status
	order.ErrorMessage = message
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
