package repository

import (
	"context"
	"errors"
	"time"

	"vital/internal/models"

	"gorm.io/gorm"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Upsert inserts the membership or, when the subscription id already exists,
// updates the mutable lifecycle fields so status reflects the latest event.
func (r *MembershipRepository) Upsert(ctx context.Context, m *models.Membership) (created bool, err error) {
	err = r.db.WithContext(ctx).Create(m).Error
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, err
	}
	updates := map[string]interface{}{
		"subscription_status": m.SubscriptionStatus,
		"updated_at":          time.Now(),
	}
	if m.PlanTier != "" {
		updates["plan_tier"] = m.PlanTier
	}
	if m.CustomerEmail != "" {
		updates["customer_email"] = m.CustomerEmail
	}
	if m.CancelledAt != nil {
		updates["cancelled_at"] = m.CancelledAt
	}
	err = r.db.WithContext(ctx).Model(&models.Membership{}).
		Where("subscription_id = ?", m.SubscriptionID).
		Updates(updates).Error
	if err != nil {
		return false, err
	}
	var existing models.Membership
	if err := r.db.WithContext(ctx).Where("subscription_id = ?", m.SubscriptionID).First(&existing).Error; err != nil {
		return false, err
	}
	*m = existing
	return false, nil
}

func (r *MembershipRepository) GetBySubscriptionID(ctx context.Context, id string) (*models.Membership, error) {
	var m models.Membership
	if err := r.db.WithContext(ctx).Where("subscription_id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}
