package cegid

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amira2200/pfe2025/internal/config"
	"github.com/amira2200/pfe2025/internal/models"
)

func fp(v float64) *float64 { return &v }

func sampleOrder() *models.OrderDocument {
	return &models.OrderDocument{
		OrderType:   models.OrderTypeSale,
		OrderNumber: "S-12345",
		FirstName:   "Amira",
		Email:       "amira@example.com",
		TotalAmount: 200,
		Items: []models.OrderItem{
			{SKU: "ABC-123", Quantity: fp(2), OriginalPrice: 100, FinalPrice: 100},
		},
	}
}

func TestBuildCreateEnvelope(t *testing.T) {
	env := buildCreateEnvelope(sampleOrder(), "invoices/invoice_S-12345.pdf", "DB01")
	create := env.Body.Create

	assert.Equal(t, "DB01", create.ClientContext.DatabaseID)

	header := create.CreateRequest.Header
	assert.Equal(t, customerID, header.CustomerID)
	assert.Equal(t, storeID, header.StoreID)
	assert.Equal(t, warehouseID, header.WarehouseID)
	assert.Equal(t, "Receipt", header.Type)
	assert.Equal(t, "ECommerce", header.Origin)
	assert.Equal(t, "S-12345", header.ExternalReference)
	assert.Equal(t, "RET-04-12345", header.InternalReference)
	assert.Equal(t, "invoices/invoice_S-12345.pdf", header.Comment)
	require.Len(t, header.UserDefinedTables.Entries, 1)
	assert.Equal(t, salesChannelValue, header.UserDefinedTables.Entries[0].Value)

	lines := create.CreateRequest.Lines.Lines
	require.Len(t, lines, 1)
	assert.Equal(t, "ABC-123", lines[0].ItemIdentifier.Reference)
	assert.InDelta(t, -2, lines[0].Quantity, 1e-9)
	assert.InDelta(t, -100, lines[0].UnitPrice, 1e-9)

	pays := create.CreateRequest.Payments.Payments
	require.Len(t, pays, 1)
	assert.InDelta(t, -200, pays[0].Amount, 1e-9)
	assert.Equal(t, currencyAED, pays[0].CurrencyID)
	assert.Equal(t, 1, pays[0].IsReceivedPayment)
}

func TestBuildCreateEnvelopeFallsBackToLineTotal(t *testing.T) {
	order := sampleOrder()
	order.TotalAmount = 0
	env := buildCreateEnvelope(order, "", "DB01")

	pays := env.Body.Create.CreateRequest.Payments.Payments
	require.Len(t, pays, 1)
	assert.InDelta(t, -200, pays[0].Amount, 1e-9)
}

func TestEnvelopeMarshalsAsSOAP(t *testing.T) {
	env := buildCreateEnvelope(sampleOrder(), "", "DB01")
	data, err := xml.Marshal(env)
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, "<s:Envelope")
	assert.Contains(t, s, soapEnvelopeNS)
	assert.Contains(t, s, `<Create xmlns="`+retailNS+`"`)
	assert.Contains(t, s, "<DatabaseId>DB01</DatabaseId>")
	assert.Contains(t, s, "<Quantity>-2</Quantity>")
}

func TestInternalReference(t *testing.T) {
	assert.Equal(t, "RET-04-12345", internalReference("S-12345"))
	assert.Equal(t, "RET-04-RET-9", internalReference("RET-9"))
}

func TestCreateSaleDocumentSuccess(t *testing.T) {
	var gotAction, gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAction = r.Header.Get("SOAPAction")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<CreateResponse><Result>Success</Result></CreateResponse>"))
	}))
	defer srv.Close()

	client := NewClient(&config.Config{
		CegidURL:        srv.URL,
		CegidUsername:   "svc",
		CegidPassword:   "secret",
		CegidDatabaseID: "DB01",
	})

	err := client.CreateSaleDocument(context.Background(), sampleOrder(), "")
	require.NoError(t, err)
	assert.Equal(t, createAction, gotAction)
	assert.True(t, strings.HasPrefix(gotAuth, "Basic "))
	assert.Contains(t, string(gotBody), "<s:Envelope")
}

func TestCreateSaleDocumentFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<s:Fault><faultstring>unknown customer</faultstring></s:Fault>`))
	}))
	defer srv.Close()

	client := NewClient(&config.Config{CegidURL: srv.URL, CegidDatabaseID: "DB01"})

	err := client.CreateSaleDocument(context.Background(), sampleOrder(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
	assert.Contains(t, err.Error(), "unknown customer")
}

func TestCreateSaleDocumentNonSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<CreateResponse><Result>Rejected</Result></CreateResponse>"))
	}))
	defer srv.Close()

	client := NewClient(&config.Config{CegidURL: srv.URL, CegidDatabaseID: "DB01"})

	err := client.CreateSaleDocument(context.Background(), sampleOrder(), "")
	require.Error(t, err)
}

func TestFaultText(t *testing.T) {
	assert.Equal(t, "boom", faultText(`<faultstring>boom</faultstring>`))
	long := strings.Repeat("x", 300)
	assert.Len(t, faultText(long), 255)
}
