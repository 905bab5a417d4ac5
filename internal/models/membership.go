package models

import (
	"time"
)

// Membership tracks a recurring plan, keyed by the provider's subscription
// id. Unlike orders, later lifecycle events mutate status in place.
type Membership struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	SubscriptionID     string     `gorm:"size:255;uniqueIndex" json:"subscription_id"`
	CustomerEmail      string     `gorm:"size:255;index" json:"customer_email"`
	CustomerName       string     `gorm:"size:255" json:"customer_name"`
	Provider           string     `gorm:"size:20;not null" json:"provider"`
	PlanTier           string     `gorm:"size:30;not null" json:"plan_tier"`
	SubscriptionStatus string     `gorm:"size:20;not null;index" json:"subscription_status"` // active, past_due, cancelled
	CancelledAt        *time.Time `json:"cancelled_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (Membership) TableName() string {
	return "memberships"
}
