package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vital/config"
	"vital/internal/domain"
	"vital/internal/models"
	"vital/internal/payments"
	"vital/internal/repository"
	"vital/internal/service"
	"vital/pkg/mailer"
)

const directSecret = "whsec_direct_test"

type webhookFixture struct {
	engine *gin.Engine
	db     *gorm.DB
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Order{},
		&models.Membership{},
		&models.LmnRecord{},
		&models.InvoiceRecord{},
	))

	cfg := config.Load()
	cfg.DirectGateway.WebhookSecret = directSecret

	orders := repository.NewOrderRepository(db)
	memberships := repository.NewMembershipRepository(db)
	docs := service.NewDocumentService(repository.NewDocumentRepository(db), orders)
	notifier := service.NewNotifier(mailer.Disabled{}, docs)
	confirmationRouter := service.NewConfirmationRouter(
		payments.NewNormalizer(nil),
		service.NewMaterializer(orders, memberships),
		docs,
		notifier,
		0,
	)

	engine := gin.New()
	engine.POST("/webhook/:provider", NewWebhookHandler(confirmationRouter, cfg).Handle)
	return &webhookFixture{engine: engine, db: db}
}

func (f *webhookFixture) deliver(t *testing.T, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/card_direct", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

const paymentBody = `{
	"event_type": "payment.succeeded",
	"reference": "pi_123",
	"mode": "one_time",
	"amount_cents": 50000,
	"currency": "usd",
	"customer": {"email": "pat@example.com", "name": "Pat"},
	"items": [{"sku": "GLP-1-2T-10MG-03ML", "name": "GLP-1 vial", "quantity": 1, "unit_price_cents": 50000, "category": "metabolic"}]
}`

func TestWebhookValidDeliveryMaterializesOrder(t *testing.T) {
	f := newWebhookFixture(t)
	sig := payments.SignDirectPayload([]byte(paymentBody), directSecret)

	w := f.deliver(t, paymentBody, sig)
	assert.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	require.NoError(t, f.db.Where("external_payment_reference = ?", "pi_123").First(&order).Error)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Equal(t, int64(50000), order.TotalAmountCents)

	var lmnCount int64
	f.db.Model(&models.LmnRecord{}).Count(&lmnCount)
	assert.Equal(t, int64(1), lmnCount)
}

func TestWebhookInvalidSignatureRejected(t *testing.T) {
	f := newWebhookFixture(t)

	w := f.deliver(t, paymentBody, "deadbeef")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count, "nothing materialized on rejection")
}

func TestWebhookMissingSignatureRejected(t *testing.T) {
	f := newWebhookFixture(t)
	w := f.deliver(t, paymentBody, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRedeliveryIsIdempotent(t *testing.T) {
	f := newWebhookFixture(t)
	sig := payments.SignDirectPayload([]byte(paymentBody), directSecret)

	assert.Equal(t, http.StatusOK, f.deliver(t, paymentBody, sig).Code)
	assert.Equal(t, http.StatusOK, f.deliver(t, paymentBody, sig).Code)

	var orderCount, lmnCount int64
	f.db.Model(&models.Order{}).Count(&orderCount)
	f.db.Model(&models.LmnRecord{}).Count(&lmnCount)
	assert.Equal(t, int64(1), orderCount)
	assert.Equal(t, int64(1), lmnCount)
}

func TestWebhookStorageFailureReturns5xx(t *testing.T) {
	f := newWebhookFixture(t)
	require.NoError(t, f.db.Migrator().DropTable(&models.Order{}))

	sig := payments.SignDirectPayload([]byte(paymentBody), directSecret)
	w := f.deliver(t, paymentBody, sig)
	assert.Equal(t, http.StatusInternalServerError, w.Code, "provider must redeliver")
}

func TestWebhookUnknownProvider(t *testing.T) {
	f := newWebhookFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/webhook/paypal", bytes.NewBufferString(paymentBody))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
