package models

import (
	"time"
)

// Order is the durable record of a one-time purchase. One row exists per
// real-world payment: ExternalPaymentReference is the idempotency key, so
// redelivered confirmations converge on the same row.
type Order struct {
	ID                       uint      `gorm:"primaryKey" json:"id"`
	OrderNumber              string    `gorm:"size:40;uniqueIndex" json:"order_number"`
	CustomerEmail            string    `gorm:"size:255;index" json:"customer_email"`
	CustomerName             string    `gorm:"size:255" json:"customer_name"`
	Provider                 string    `gorm:"size:20;not null" json:"provider"`
	ExternalPaymentReference string    `gorm:"size:255;uniqueIndex" json:"external_payment_reference"`
	Status                   string    `gorm:"size:20;not null;index" json:"status"` // paid, cancelled, refunded
	TotalAmountCents         int64     `gorm:"not null" json:"total_amount_cents"`
	Currency                 string    `gorm:"size:3;default:'USD'" json:"currency"`
	Items                    string    `gorm:"type:text" json:"items"` // JSON line items
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
