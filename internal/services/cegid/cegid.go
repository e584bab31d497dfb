// Package cegid pushes validated orders to the Cegid Retail ERP through its
// SaleDocument SOAP endpoint.
package cegid

import (
	"context"
	"encoding/xml"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/amira2200/pfe2025/internal/config"
	"github.com/amira2200/pfe2025/internal/models"
)

const (
	soapEnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	retailNS       = "http://www.cegid.fr/Retail/1.0"
	createAction   = `"http://www.cegid.fr/Retail/1.0/ISaleDocumentService/Create"`

	// Fixed routing identifiers for the e-commerce sales channel.
	customerID  = "SC00004000"
	storeID     = "IQST01"
	warehouseID = "IQWH01"
	currencyAED = "AED"

	// Value for user-defined table 1: the marketplace sales channel.
	salesChannelValue = "SAL05"
)

// Client calls the SaleDocument service with basic auth over HTTPS.
type Client struct {
	http       *resty.Client
	endpoint   string
	databaseID string
}

func NewClient(cfg *config.Config) *Client {
	http := resty.New().
		SetTimeout(60 * time.Second).
		SetBasicAuth(cfg.CegidUsername, cfg.CegidPassword).
		SetHeader("Content-Type", "text/xml; charset=utf-8")
	return &Client{
		http:       http,
		endpoint:   cfg.CegidURL,
		databaseID: cfg.CegidDatabaseID,
	}
}

// CreateSaleDocument submits one order as a Cegid receipt. The returned
// error carries the upstream fault text when the ERP rejects the document.
func (c *Client) CreateSaleDocument(ctx context.Context, order *models.OrderDocument, invoiceURL string) error {
	envelope := buildCreateEnvelope(order, invoiceURL, c.databaseID)

	body, err := xml.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode sale document: %w", err)
	}
	payload := []byte(xml.Header + string(body))

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("SOAPAction", createAction).
		SetBody(payload).
		Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("call sale document service: %w", err)
	}

	text := string(resp.Body())
	if resp.StatusCode() != 200 || !strings.Contains(text, "Success") {
		log.Warn().
			Int("status", resp.StatusCode()).
			Str("order", order.OrderNumber).
			Msg("sale document rejected")
		return fmt.Errorf("sale document rejected (HTTP %d): %s", resp.StatusCode(), faultText(text))
	}

	log.Info().Str("order", order.OrderNumber).Msg("sale document created")
	return nil
}

// buildCreateEnvelope maps an order payload onto the Create contract. Line
// quantities and the payment amount are negated: the channel books receipts
// as customer-side movements.
func buildCreateEnvelope(order *models.OrderDocument, invoiceURL, databaseID string) *soapEnvelope {
	now := time.Now().UTC().Format("2006-01-02T15:04:05")

	lines := make([]createLine, 0, len(order.Items))
	var total float64
	for _, item := range order.Items {
		qty := item.Count()
		unit := item.FinalPrice
		if unit <= 0 {
			unit = item.OriginalPrice
		}
		total += unit * qty
		lines = append(lines, createLine{
			ExternalReference: order.OrderNumber,
			ItemIdentifier:    itemIdentifier{Reference: item.SKU},
			NetUnitPrice:      -unit,
			Origin:            "ECommerce",
			Quantity:          -qty,
			UnitPrice:         -unit,
		})
	}
	if order.TotalAmount > 0 {
		total = order.TotalAmount
	}

	return &soapEnvelope{
		XmlnsS: soapEnvelopeNS,
		Body: soapBody{
			Create: createElement{
				Xmlns:         retailNS,
				ClientContext: clientContext{DatabaseID: databaseID},
				CreateRequest: createRequest{
					DeliveryAddress: deliveryAddress{FirstName: order.FirstName},
					Header: documentHeader{
						Active:            true,
						Comment:           invoiceURL,
						CustomerID:        customerID,
						Date:              now,
						ExternalReference: order.OrderNumber,
						InternalReference: internalReference(order.OrderNumber),
						OmniChannel: omniChannel{
							BillingStatus:  "Totally",
							DeliveryType:   "ShipByCentral",
							FollowUpStatus: "Validated",
							PaymentStatus:  "Totally",
							ReturnStatus:   "NotReturned",
							ShippingStatus: "Totally",
						},
						Origin:  "ECommerce",
						StoreID: storeID,
						Type:    "Receipt",
						UserDefinedTables: userDefinedTables{
							Entries: []userDefinedTable{{ID: 1, Value: salesChannelValue}},
						},
						WarehouseID: warehouseID,
					},
					Lines: documentLines{Lines: lines},
					Payments: documentPays{Payments: []createPayment{{
						Amount:            -math.Abs(total),
						CurrencyID:        currencyAED,
						DueDate:           now,
						ID:                1,
						IsReceivedPayment: 1,
						MethodID:          1,
					}}},
				},
			},
		},
	}
}

// internalReference derives the ERP-side reference: the channel prefix is
// stripped and replaced with the receipt series.
func internalReference(orderNumber string) string {
	return "RET-04-" + strings.ReplaceAll(orderNumber, "S-", "")
}

// faultText extracts the faultstring from a SOAP fault body, falling back to
// a truncated raw body.
func faultText(body string) string {
	if start := strings.Index(body, "<faultstring"); start >= 0 {
		if open := strings.Index(body[start:], ">"); open >= 0 {
			rest := body[start+open+1:]
			if end := strings.Index(rest, "</faultstring>"); end >= 0 {
				return strings.TrimSpace(rest[:end])
			}
		}
	}
	if len(body) > 255 {
		return body[:255]
	}
	return body
}
