package service

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vital/internal/domain"
	"vital/internal/models"
	"vital/internal/payments"
	"vital/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
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
	return db
}

func storedOrder(t *testing.T, db *gorm.DB, items []payments.OrderLineItem) *models.Order {
	t.Helper()
	itemsJSON, err := json.Marshal(items)
	require.NoError(t, err)
	order := &models.Order{
		OrderNumber:              GenerateOrderNumber(),
		CustomerEmail:            "pat@example.com",
		CustomerName:             "Pat",
		Provider:                 domain.ProviderCardGateway,
		ExternalPaymentReference: "pi_" + randomSuffix(),
		Status:                   domain.OrderStatusPaid,
		TotalAmountCents:         payments.LineItemTotal(items),
		Currency:                 "USD",
		Items:                    string(itemsJSON),
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

type testDeps struct {
	db     *gorm.DB
	orders *repository.OrderRepository
	docs   *repository.DocumentRepository
}
