package repository

import (
	"context"
	"errors"
	"time"

	"vital/internal/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateIfAbsent inserts the order, relying on the unique constraint over
// external_payment_reference for mutual exclusion. When a concurrent or
// redelivered confirmation already inserted the row, the existing order is
// loaded into o and created is false. A duplicate that is NOT explained by
// the reference means the generated order number collided; the caller
// regenerates and retries.
func (r *OrderRepository) CreateIfAbsent(ctx context.Context, o *models.Order) (created bool, err error) {
	err = r.db.WithContext(ctx).Create(o).Error
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, err
	}
	var existing models.Order
	lookupErr := r.db.WithContext(ctx).Where("external_payment_reference = ?", o.ExternalPaymentReference).First(&existing).Error
	if lookupErr == nil {
		*o = existing
		return false, nil
	}
	if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		// Order-number collision, not an idempotency conflict.
		return false, err
	}
	return false, lookupErr
}

func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).Where("order_number = ?", number).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetByReference(ctx context.Context, ref string) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).Where("external_payment_reference = ?", ref).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus transitions the order named by its payment reference. Only
// mutable fields change; identity fields are never overwritten.
func (r *OrderRepository) UpdateStatus(ctx context.Context, ref, status string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("external_payment_reference = ?", ref).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

func (r *OrderRepository) List(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&orders).Error
	return orders, err
}
