package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vital/internal/domain"
	"vital/internal/models"
)

func paidOrder(number, ref string) *models.Order {
	return &models.Order{
		OrderNumber:              number,
		CustomerEmail:            "pat@example.com",
		Provider:                 domain.ProviderCardGateway,
		ExternalPaymentReference: ref,
		Status:                   domain.OrderStatusPaid,
		TotalAmountCents:         50000,
		Currency:                 "USD",
	}
}

func TestCreateIfAbsentInsertsOnce(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	created, err := repo.CreateIfAbsent(context.Background(), paidOrder("ORD-1-AAAAA", "pi_123"))
	require.NoError(t, err)
	assert.True(t, created)
}

func TestCreateIfAbsentConvergesOnRedelivery(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)

	first := paidOrder("ORD-1-AAAAA", "pi_123")
	created, err := repo.CreateIfAbsent(context.Background(), first)
	require.NoError(t, err)
	require.True(t, created)

	// Second delivery mints a different order number but carries the same
	// payment reference; it must converge on the first row.
	second := paidOrder("ORD-2-BBBBB", "pi_123")
	created, err = repo.CreateIfAbsent(context.Background(), second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.OrderNumber, second.OrderNumber)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.Order{}).Where("external_payment_reference = ?", "pi_123").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateIfAbsentNumberCollisionSurfacesDuplicate(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	_, err := repo.CreateIfAbsent(context.Background(), paidOrder("ORD-1-AAAAA", "pi_1"))
	require.NoError(t, err)

	// Same order number, different reference: not an idempotency conflict,
	// the caller must regenerate the number and retry.
	created, err := repo.CreateIfAbsent(context.Background(), paidOrder("ORD-1-AAAAA", "pi_2"))
	assert.False(t, created)
	assert.Error(t, err)
}

func TestUpdateStatusKeepsIdentityFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)

	o := paidOrder("ORD-1-AAAAA", "pi_123")
	_, err := repo.CreateIfAbsent(context.Background(), o)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(context.Background(), "pi_123", domain.OrderStatusRefunded))

	got, err := repo.GetByReference(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusRefunded, got.Status)
	assert.Equal(t, int64(50000), got.TotalAmountCents)
	assert.Equal(t, "ORD-1-AAAAA", got.OrderNumber)
}
