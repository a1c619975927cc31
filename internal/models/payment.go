package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment is a donation to a creator, optionally ranked on that creator's
// event leaderboard. Amount is in whole currency units.
type Payment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FromID    *uint  `gorm:"index" json:"from_id"` // nil for anonymous donors
	CreatorID uint   `gorm:"not null;index" json:"creator_id"`
	DonorName string `gorm:"size:128" json:"donor_name"`
	Amount    int64  `gorm:"not null" json:"amount"`
	Message   string `gorm:"size:512" json:"message"`

	// Ranked payments belong to the creator's event window at capture time.
	Ranked bool `gorm:"default:true;index" json:"ranked"`

	Provider       string     `gorm:"size:20;not null" json:"provider"` // paypal | razorpay | stub
	OrderID        string     `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	ProviderRef    string     `gorm:"size:128;index" json:"provider_ref"`
	IdempotencyKey string     `gorm:"size:64;uniqueIndex" json:"-"`
	Status         string     `gorm:"size:12;not null;index" json:"status"` // PENDING | COMPLETED | FAILED
	CompletedAt    *time.Time `json:"completed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}

func (Payment) TableName() string { return "payments" }
