// Package api exposes the HTTP surface: order intake, pipeline trigger,
// ERP dispatch, invoice rendering and report generation.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amira2200/pfe2025/internal/config"
	"github.com/amira2200/pfe2025/internal/database"
	"github.com/amira2200/pfe2025/internal/invoice"
	"github.com/amira2200/pfe2025/internal/models"
	"github.com/amira2200/pfe2025/internal/pipeline"
	"github.com/amira2200/pfe2025/internal/services/dispatch"
	"github.com/amira2200/pfe2025/internal/services/reports"
)

// BlobStore is the object storage surface the handlers need.
type BlobStore interface {
	pipeline.BlobSource
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

type APIHandler struct {
	db        *gorm.DB
	cfg       *config.Config
	blobs     BlobStore
	processor *dispatch.Processor
}

func NewAPIHandler(db *gorm.DB, cfg *config.Config, blobs BlobStore, processor *dispatch.Processor) *APIHandler {
	return &APIHandler{db: db, cfg: cfg, blobs: blobs, processor: processor}
}

func SetupRoutes(router *gin.Engine, h *APIHandler) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders", h.CreateOrder)
		v1.POST("/integrate", h.TriggerIntegration)
		v1.POST("/erp/dispatch", h.DispatchOrders)
		v1.POST("/invoices", h.RenderInvoice)
		v1.POST("/reports/generate", h.GenerateReports)
	}
}

// CreateOrder validates an incoming order document and stages it in the
// retry queue. Invalid documents are staged too, flagged Invalid, so every
// submission leaves a trace.
func (h *APIHandler) CreateOrder(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	var doc models.OrderDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed order document: " + err.Error()})
		return
	}

	order := models.RetryOrder{
		ExternalID: doc.OrderNumber,
		Payload:    string(raw),
		Status:     models.StatusPending,
	}

	validationErr := validateOrder(&doc)
	if validationErr != nil {
		order.Status = models.StatusInvalid
		order.ErrorMessage = validationErr.Error()
	}
	if order.ExternalID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderNumber is required"})
		return
	}

	result := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(&order)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage order: " + result.Error.Error()})
		return
	}

	if validationErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  validationErr.Error(),
			"status": models.StatusInvalid,
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message":     "order already staged",
			"orderNumber": doc.OrderNumber,
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "order staged",
		"orderNumber": doc.OrderNumber,
		"status":      models.StatusPending,
	})
}

// TriggerIntegration runs the reconciliation pipeline on a fresh database
// connection, so a long run never starves the shared pool.
func (h *APIHandler) TriggerIntegration(c *gin.Context) {
	db, err := database.Initialize(h.cfg.DatabaseURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database connection failed: " + err.Error()})
		return
	}
	defer database.Close(db)

	runner := pipeline.NewRunner(db, h.blobs, h.cfg.SalesWorkbook, h.cfg.StockWorkbook)
	summary, err := runner.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.String(http.StatusOK, summary.String())
}

// DispatchOrders drains pending orders to the ERP once.
func (h *APIHandler) DispatchOrders(c *gin.Context) {
	res, err := h.processor.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"processed": res.Processed,
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
	})
}

// RenderInvoice renders an order document to PDF without staging it.
func (h *APIHandler) RenderInvoice(c *gin.Context) {
	var doc models.OrderDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed order document: " + err.Error()})
		return
	}
	pdf, err := invoice.Render(&doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", "invoice_"+doc.OrderNumber+".pdf"))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GenerateReports renders the finance summary and the order error report
// from the derived tables and uploads both.
func (h *APIHandler) GenerateReports(c *gin.Context) {
	ctx := c.Request.Context()
	builder := reports.NewBuilder(h.db)

	finance, err := builder.FinanceSummary(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	orderErrors, err := builder.OrderErrors(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	stamp := time.Now().UTC().Format("2006-01-02")
	financeKey := "reports/finance_summary_" + stamp + ".pdf"
	errorsKey := "reports/order_errors_" + stamp + ".pdf"

	if err := h.blobs.Upload(ctx, financeKey, finance, "application/pdf"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.blobs.Upload(ctx, errorsKey, orderErrors, "application/pdf"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Info().Str("finance", financeKey).Str("errors", errorsKey).Msg("reports generated")
	c.JSON(http.StatusOK, gin.H{"reports": []string{financeKey, errorsKey}})
}
