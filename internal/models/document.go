package models

import (
	"time"
)

// LmnRecord is the structured source of a Letter of Medical Necessity.
// The PDF itself is regenerated on demand; only this record persists.
type LmnRecord struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	LmnNumber          string    `gorm:"size:40;uniqueIndex" json:"lmn_number"`
	OrderNumber        string    `gorm:"size:40;index;not null" json:"order_number"`
	Items              string    `gorm:"type:text" json:"items"` // eligible subset, JSON
	EligibleTotalCents int64     `gorm:"not null" json:"eligible_total_cents"`
	Currency           string    `gorm:"size:3;default:'USD'" json:"currency"`
	IssueDate          time.Time `json:"issue_date"`
	AttestationText    string    `gorm:"type:text" json:"attestation_text"`
	ProviderReference  string    `gorm:"size:255" json:"provider_reference"`
	CreatedAt          time.Time `json:"created_at"`
}

func (LmnRecord) TableName() string {
	return "lmn_records"
}

// InvoiceRecord is the receipt counterpart: covers the full order total with
// no category filtering.
type InvoiceRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	InvoiceNumber string    `gorm:"size:40;uniqueIndex" json:"invoice_number"`
	OrderNumber   string    `gorm:"size:40;index;not null" json:"order_number"`
	Items         string    `gorm:"type:text" json:"items"`
	TotalCents    int64     `gorm:"not null" json:"total_cents"`
	Currency      string    `gorm:"size:3;default:'USD'" json:"currency"`
	IssueDate     time.Time `json:"issue_date"`
	CreatedAt     time.Time `json:"created_at"`
}

func (InvoiceRecord) TableName() string {
	return "invoice_records"
}
