package models

import (
	"time"

	"gorm.io/gorm"
)

// VaultItem is a creator-defined reward redeemable for FamPoints.
type VaultItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CreatorID   uint   `gorm:"not null;index" json:"creator_id"`
	Title       string `gorm:"size:128;not null" json:"title"`
	Description string `gorm:"size:1024" json:"description"`
	Type        string `gorm:"size:10;not null" json:"type"` // file | text | qna | promise
	PointCost   int64  `gorm:"not null;default:0" json:"point_cost"`

	// Limit is the total supply (0 = unlimited); UserLimit caps successful
	// redemptions per fan (0 = unlimited). UnlockCount tracks consumed supply.
	Limit       int `gorm:"not null;default:0" json:"limit"`
	UserLimit   int `gorm:"not null;default:0" json:"user_limit"`
	UnlockCount int `gorm:"not null;default:0" json:"unlock_count"`

	// Payload by type: FileURL for file, SecretText for text, Instructions
	// for qna/promise. Revealed to the fan only on fulfilment.
	FileURL      string `gorm:"size:512" json:"-"`
	SecretText   string `gorm:"type:text" json:"-"`
	Instructions string `gorm:"size:1024" json:"instructions"`

	RequiresFanInput bool `gorm:"default:false" json:"requires_fan_input"`
	Active           bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}

func (VaultItem) TableName() string { return "vault_items" }

// SoldOut reports whether total supply is exhausted.
func (v *VaultItem) SoldOut() bool {
	return v.Limit > 0 && v.UnlockCount >= v.Limit
}
