package models

import (
	"time"

	"sygil/internal/domain"

	"gorm.io/gorm"
)

// Redemption is a fan's claim against a VaultItem.
// Status machine: Pending -> Fulfilled | Rejected | Cancelled (all terminal).
type Redemption struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	VaultItemID uint   `gorm:"not null;index" json:"vault_item_id"`
	FanID       uint   `gorm:"not null;index" json:"fan_id"`
	CreatorID   uint   `gorm:"not null;index" json:"creator_id"`
	PointsSpent int64  `gorm:"not null" json:"points_spent"`
	Status      string `gorm:"size:10;not null;index" json:"status"`

	FanInput        string `gorm:"size:1024" json:"fan_input"`        // question / delivery details
	CreatorResponse string `gorm:"type:text" json:"creator_response"` // qna answer
	RejectionReason string `gorm:"size:512" json:"rejection_reason"`

	RedeemedAt  time.Time  `json:"redeemed_at"`
	FulfilledAt *time.Time `json:"fulfilled_at"`
	ExpiredAt   *time.Time `json:"expired_at"` // set when the sweep cancels

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	VaultItem VaultItem `gorm:"foreignKey:VaultItemID" json:"vault_item,omitempty"`
	Fan       User      `gorm:"foreignKey:FanID" json:"-"`
}

func (Redemption) TableName() string { return "redemptions" }

// Terminal reports whether the redemption has left Pending.
func (r *Redemption) Terminal() bool {
	return r.Status != domain.RedemptionPending
}
