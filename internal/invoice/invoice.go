// Package invoice renders customer-facing PDF documents for dispatched
// orders: tax invoices for sales, credit notes for returns and replacement
// notes for exchanges.
package invoice

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/amira2200/pfe2025/internal/models"
)

// displayVATRate is the UAE VAT rate shown on customer documents. Prices in
// order payloads are tax inclusive, so the VAT line is carved out of the
// total rather than added on top. This is unrelated to the 20% rate the
// reconciliation pipeline applies to tax-exclusive reference prices.
const displayVATRate = 0.05

// title returns the document heading for an order type.
func title(orderType string) string {
	switch orderType {
	case models.OrderTypeReturn:
		return "TAX CREDIT NOTE"
	case models.OrderTypeReplacement:
		return "REPLACEMENT NOTE"
	default:
		return "TAX INVOICE"
	}
}

// Render produces the PDF document for one order. Amounts are printed in AED
// with the inclusive VAT share broken out.
func Render(order *models.OrderDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title(order.OrderType)+" "+order.OrderNumber, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, title(order.OrderType), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Order: "+order.OrderNumber, "", 1, "L", false, 0, "")
	if order.OrderDate != "" {
		pdf.CellFormat(0, 6, "Date: "+order.OrderDate, "", 1, "L", false, 0, "")
	}
	name := strings.TrimSpace(order.FirstName + " " + order.LastName)
	if name != "" {
		pdf.CellFormat(0, 6, "Customer: "+name, "", 1, "L", false, 0, "")
	}
	if order.Email != "" {
		pdf.CellFormat(0, 6, "Email: "+order.Email, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(70, 8, "SKU", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(45, 8, "Unit Price (AED)", "1", 0, "R", true, 0, "")
	pdf.CellFormat(45, 8, "Line Total (AED)", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	var total float64
	for _, item := range order.Items {
		qty := item.Count()
		unit := item.FinalPrice
		if unit <= 0 {
			unit = item.OriginalPrice
		}
		line := unit * qty
		total += line
		pdf.CellFormat(70, 7, item.SKU, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.0f", qty), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, fmt.Sprintf("%.2f", unit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, fmt.Sprintf("%.2f", line), "1", 1, "R", false, 0, "")
	}
	if order.TotalAmount > 0 {
		total = order.TotalAmount
	}
	vat := total * displayVATRate / (1 + displayVATRate)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(140, 7, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(45, 7, fmt.Sprintf("VAT 5%% (incl.): %.2f", vat), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(140, 8, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(45, 8, fmt.Sprintf("Total: AED %.2f", total), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", order.OrderNumber, err)
	}
	return buf.Bytes(), nil
}

// Key returns the blob storage key for an order's document.
func Key(orderNumber string) string {
	return "invoices/invoice_" + orderNumber + ".pdf"
}
