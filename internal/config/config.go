package config

import (
	"fmt"
	"os"
)

type Config struct {
	DatabaseURL string
	Port        string
	Environment string

	// Object storage (S3 compatible) holding the workbooks and the
	// generated PDF documents.
	BlobEndpoint  string
	BlobAccessKey string
	BlobSecretKey string
	BlobBucket    string
	BlobRegion    string
	BlobUseSSL    bool

	// Workbook names inside the bucket.
	SalesWorkbook string
	StockWorkbook string

	// Cegid Retail SOAP endpoint.
	CegidURL        string
	CegidUsername   string
	CegidPassword   string
	CegidDatabaseID string

	// Invoice mail.
	SendGridAPIKey string
	InvoiceFrom    string
}

func Load() *Config {
	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=orders port=5432 sslmode=disable"),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		BlobEndpoint:  getEnv("BLOB_ENDPOINT", "http://localhost:9000"),
		BlobAccessKey: getEnv("BLOB_ACCESS_KEY", ""),
		BlobSecretKey: getEnv("BLOB_SECRET_KEY", ""),
		BlobBucket:    getEnv("BLOB_BUCKET", "order-data"),
		BlobRegion:    getEnv("BLOB_REGION", "us-east-1"),
		BlobUseSSL:    getEnv("BLOB_USE_SSL", "false") == "true",

		SalesWorkbook: getEnv("SALES_WORKBOOK", "Ventes_2025_UAE.xlsx"),
		StockWorkbook: getEnv("STOCK_WORKBOOK", "Image_de_stock_UAE.xlsx"),

		CegidURL:        getEnv("CEGID_WSDL_URL", ""),
		CegidUsername:   getEnv("CEGID_SOAP_USERNAME", ""),
		CegidPassword:   getEnv("CEGID_SOAP_PASSWORD", ""),
		CegidDatabaseID: getEnv("CEGID_DATABASE_ID", ""),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		InvoiceFrom:    getEnv("INVOICE_FROM_EMAIL", "no-reply@example.com"),
	}
}

// ValidateStorage fails fast when the blob settings the pipeline depends on
// are missing, so a misconfigured deployment dies with a clear message
// instead of a mid-run fetch error.
func (c *Config) ValidateStorage() error {
	if c.BlobAccessKey == "" || c.BlobSecretKey == "" {
		return fmt.Errorf("blob storage credentials missing: set BLOB_ACCESS_KEY and BLOB_SECRET_KEY")
	}
	if c.BlobBucket == "" {
		return fmt.Errorf("blob storage bucket missing: set BLOB_BUCKET")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
