package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/amira2200/pfe2025/internal/config"
	"github.com/amira2200/pfe2025/internal/models"
)

func fp(v float64) *float64 { return &v }
func sp(s string) *string   { return &s }

func validSale() *models.OrderDocument {
	return &models.OrderDocument{
		OrderType:   models.OrderTypeSale,
		OrderNumber: "S-1001",
		OrderDate:   "2025-03-14",
		FirstName:   "Amira",
		LastName:    "Ben Salah",
		Email:       "amira@example.com",
		TotalAmount: 200,
		Items: []models.OrderItem{
			{SKU: "ABC-123", Quantity: fp(2), OriginalPrice: 100, FinalPrice: 100},
		},
	}
}

func TestValidateOrderAccepts(t *testing.T) {
	assert.NoError(t, validateOrder(validSale()))
}

func TestValidateOrderType(t *testing.T) {
	doc := validSale()
	doc.OrderType = "exchange"
	err := validateOrder(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orderType")
}

func TestValidateOrderNumberPrefix(t *testing.T) {
	doc := validSale()
	doc.OrderNumber = "X-1001"
	require.Error(t, validateOrder(doc))

	ret := validSale()
	ret.OrderType = models.OrderTypeReturn
	ret.OrderNumber = "RET-55"
	ret.TotalAmount = 100
	ret.Items = []models.OrderItem{
		{SKU: "ABC-123", Quantity: fp(1), OriginalPrice: 100, FinalPrice: 100},
	}
	assert.NoError(t, validateOrder(ret))
}

func TestValidateOrderDate(t *testing.T) {
	doc := validSale()
	doc.OrderDate = "14/03/2025"
	err := validateOrder(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestValidateOrderTotalMismatch(t *testing.T) {
	doc := validSale()
	doc.TotalAmount = 199.99
	err := validateOrder(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "totalAmount")
}

func TestValidateOrderTotalRounding(t *testing.T) {
	doc := validSale()
	doc.Items = []models.OrderItem{
		{SKU: "A-1", Quantity: fp(3), OriginalPrice: 33.335, FinalPrice: 33.335},
	}
	doc.TotalAmount = 100.01 // 3 * 33.335 = 100.005, rounds to 100.01
	assert.NoError(t, validateOrder(doc))
}

func TestValidateOrderDiscountNeedsPromotion(t *testing.T) {
	doc := validSale()
	doc.Items[0].FinalPrice = 80
	doc.TotalAmount = 160
	err := validateOrder(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "promotionId")

	doc.Items[0].PromotionID = sp("SPRING25")
	assert.NoError(t, validateOrder(doc))
}

func TestValidateReturnQuantity(t *testing.T) {
	doc := validSale()
	doc.OrderType = models.OrderTypeReturn
	doc.OrderNumber = "RET-9"
	doc.Items[0].Quantity = fp(2)
	doc.TotalAmount = 200
	err := validateOrder(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity 1")
}

func TestValidateReplacementNeedsBothDirections(t *testing.T) {
	doc := validSale()
	doc.OrderType = models.OrderTypeReplacement
	doc.OrderNumber = "REP-3"
	doc.Items = []models.OrderItem{
		{SKU: "A-1", Quantity: fp(1), OriginalPrice: 100, FinalPrice: 100},
	}
	doc.TotalAmount = 100
	err := validateOrder(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned item")

	doc.Items = append(doc.Items, models.OrderItem{
		SKU: "A-2", Quantity: fp(-1), OriginalPrice: 100, FinalPrice: 100,
	})
	doc.TotalAmount = 0
	assert.NoError(t, validateOrder(doc))
}

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RetryOrder{}))

	router := gin.New()
	handler := NewAPIHandler(db, &config.Config{}, nil, nil)
	SetupRoutes(router, handler)
	return router, db
}

func postOrder(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const validOrderJSON = `{
	"orderType": "sale",
	"orderNumber": "S-1001",
	"orderDate": "2025-03-14",
	"firstName": "Amira",
	"lastName": "Ben Salah",
	"email": "amira@example.com",
	"totalAmount": 200,
	"items": [
		{"sku": "ABC-123", "quantity": 2, "originalPrice": 100, "finalPrice": 100}
	]
}`

func TestCreateOrderStagesPending(t *testing.T) {
	router, db := setupTestRouter(t)

	w := postOrder(router, validOrderJSON)
	assert.Equal(t, http.StatusCreated, w.Code)

	var order models.RetryOrder
	require.NoError(t, db.First(&order, "external_id = ?", "S-1001").Error)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Contains(t, order.Payload, "ABC-123")
}

func TestCreateOrderInvalidStillStaged(t *testing.T) {
	router, db := setupTestRouter(t)

	body := strings.Replace(validOrderJSON, `"totalAmount": 200`, `"totalAmount": 50`, 1)
	w := postOrder(router, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "totalAmount")

	var order models.RetryOrder
	require.NoError(t, db.First(&order, "external_id = ?", "S-1001").Error)
	assert.Equal(t, models.StatusInvalid, order.Status)
	assert.NotEmpty(t, order.ErrorMessage)
}

func TestCreateOrderDuplicateIsNoOp(t *testing.T) {
	router, db := setupTestRouter(t)

	require.Equal(t, http.StatusCreated, postOrder(router, validOrderJSON).Code)

	w := postOrder(router, validOrderJSON)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already staged")

	var n int64
	require.NoError(t, db.Model(&models.RetryOrder{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCreateOrderMalformedJSON(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := postOrder(router, "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenderInvoiceEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(validOrderJSON))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice_S-1001.pdf")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}
