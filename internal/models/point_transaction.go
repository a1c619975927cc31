package models

import (
	"time"

	"gorm.io/gorm"
)

// PointTransaction is an append-only ledger entry. Amount is always the
// positive magnitude; the sign convention is carried by Type (Earned, Bonus
// and Refund credit, Spent and Expired debit). Balance columns on User and
// CreatorPointBalance are authoritative for checks; this table is the audit
// trail behind them.
type PointTransaction struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	CreatorID   *uint          `gorm:"index" json:"creator_id"` // nil for creator-agnostic grants
	Type        string         `gorm:"size:10;not null;index" json:"type"`
	Amount      int64          `gorm:"not null" json:"amount"`
	Description string         `gorm:"size:255" json:"description"`
	Reference   string         `gorm:"size:128;index" json:"reference"` // payment order id / redemption id
	ExpiresAt   *time.Time     `gorm:"index" json:"expires_at"`         // set on Earned/Bonus
	Expired     bool           `gorm:"default:false;index" json:"expired"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (PointTransaction) TableName() string { return "point_transactions" }
