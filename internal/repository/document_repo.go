package repository

import (
	"context"
	"errors"

	"vital/internal/models"

	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) CreateLmn(ctx context.Context, rec *models.LmnRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// GetLmnByOrder returns the order's letter, or nil when none was issued.
func (r *DocumentRepository) GetLmnByOrder(ctx context.Context, orderNumber string) (*models.LmnRecord, error) {
	var rec models.LmnRecord
	err := r.db.WithContext(ctx).Where("order_number = ?", orderNumber).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *DocumentRepository) GetLmnByNumber(ctx context.Context, number string) (*models.LmnRecord, error) {
	var rec models.LmnRecord
	if err := r.db.WithContext(ctx).Where("lmn_number = ?", number).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *DocumentRepository) CreateInvoice(ctx context.Context, rec *models.InvoiceRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *DocumentRepository) GetInvoiceByOrder(ctx context.Context, orderNumber string) (*models.InvoiceRecord, error) {
	var rec models.InvoiceRecord
	err := r.db.WithContext(ctx).Where("order_number = ?", orderNumber).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *DocumentRepository) GetInvoiceByNumber(ctx context.Context, number string) (*models.InvoiceRecord, error) {
	var rec models.InvoiceRecord
	if err := r.db.WithContext(ctx).Where("invoice_number = ?", number).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}
