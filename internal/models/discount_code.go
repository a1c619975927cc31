package models

import (
	"time"

	"gorm.io/gorm"
)

// DiscountCode is a promotional code applied at most once per user.
type DiscountCode struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Code  string `gorm:"uniqueIndex;size:32;not null" json:"code"`
	Type  string `gorm:"size:10;not null" json:"type"` // percent | flat
	Value int64  `gorm:"not null" json:"value"`

	UsageLimit int  `gorm:"not null;default:0" json:"usage_limit"` // 0 = unlimited
	UsageCount int  `gorm:"not null;default:0" json:"usage_count"`
	Active     bool `gorm:"default:true" json:"active"`

	ExpiresAt *time.Time `json:"expires_at"`

	// Eligibility gates. AccountType restricts to one account type when set;
	// RequiresOnboarding demands the full five-step checklist.
	AccountType        string `gorm:"size:20" json:"account_type"`
	RequiresOnboarding bool   `gorm:"default:false" json:"requires_onboarding"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (DiscountCode) TableName() string { return "discount_codes" }

// DiscountRedemption tracks which users applied which code (one row per
// user/code pair, enforced by the unique index).
type DiscountRedemption struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	DiscountCodeID uint      `gorm:"not null;index:idx_code_user,unique" json:"discount_code_id"`
	UserID         uint      `gorm:"not null;index:idx_code_user,unique" json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`

	DiscountCode DiscountCode `gorm:"foreignKey:DiscountCodeID" json:"-"`
	User         User         `gorm:"foreignKey:UserID" json:"-"`
}

func (DiscountRedemption) TableName() string { return "discount_redemptions" }
