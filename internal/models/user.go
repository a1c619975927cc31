package models

import (
	"time"

	"sygil/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Email        string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username     *string `gorm:"uniqueIndex;size:64" json:"username"` // nil until chosen, so the unique index skips unset accounts
	Name         string  `gorm:"size:128" json:"name"`
	PasswordHash string  `gorm:"size:255" json:"-"`
	AccountType  string  `gorm:"size:20;not null;index;default:'User'" json:"account_type"` // User | Creator | VCreator
	GoogleID     *string `gorm:"uniqueIndex;size:255" json:"-"`                             // nil for email signups (avoids duplicate '' on unique index)
	AvatarURL    string  `gorm:"size:512" json:"avatar_url"`

	// Instagram OTP verification
	InstagramHandle string     `gorm:"size:64" json:"instagram_handle"`
	VerifyOTP       string     `gorm:"size:12" json:"-"`
	VerifyOTPExpiry *time.Time `json:"-"`
	Verified        bool       `gorm:"default:false" json:"verified"`

	// Aggregate FamPoints across all creators. Per-creator buckets live in
	// creator_point_balances and are what redemptions spend from.
	Points int64 `gorm:"not null;default:0" json:"points"`

	// Payout details for creators
	PayoutPhone string `gorm:"size:20" json:"payout_phone"`
	PayoutUPI   string `gorm:"size:128" json:"payout_upi"`

	// Event window: donations inside [EventStart, EventEnd] rank on the leaderboard.
	EventStart *time.Time `json:"event_start"`
	EventEnd   *time.Time `json:"event_end"`
	Perk       string     `gorm:"size:512" json:"perk"`

	// Onboarding checklist
	ProfileComplete bool `gorm:"default:false" json:"profile_complete"`
	EventStarted    bool `gorm:"default:false" json:"event_started"`
	VaultItemAdded  bool `gorm:"default:false" json:"vault_item_added"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Handle returns the chosen username, or "" when none is set yet.
func (u *User) Handle() string {
	if u.Username == nil {
		return ""
	}
	return *u.Username
}

func (u *User) IsCreator() bool {
	return u.AccountType == domain.AccountTypeCreator || u.AccountType == domain.AccountTypeVCreator
}

// HasPayoutInfo reports whether a payout destination is on file.
func (u *User) HasPayoutInfo() bool {
	return u.PayoutPhone != "" || u.PayoutUPI != ""
}

// EventRunning reports whether the creator's event window contains t.
func (u *User) EventRunning(t time.Time) bool {
	return u.EventStart != nil && u.EventEnd != nil &&
		!t.Before(*u.EventStart) && t.Before(*u.EventEnd)
}

// OnboardingSteps returns the names of incomplete onboarding steps, in
// checklist order. Empty means onboarding is complete.
func (u *User) OnboardingSteps() []string {
	var steps []string
	if !u.Verified {
		steps = append(steps, "instagram_verification")
	}
	if !u.HasPayoutInfo() {
		steps = append(steps, "payment_info")
	}
	if !u.ProfileComplete {
		steps = append(steps, "profile_completion")
	}
	if !u.EventStarted {
		steps = append(steps, "first_event")
	}
	if !u.VaultItemAdded {
		steps = append(steps, "first_vault_item")
	}
	return steps
}

// CreatorPointBalance is a fan's spendable FamPoints bucket with one creator.
type CreatorPointBalance struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_user_creator,unique" json:"user_id"`
	CreatorID uint      `gorm:"not null;index:idx_user_creator,unique" json:"creator_id"`
	Points    int64     `gorm:"not null;default:0" json:"points"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    User `gorm:"foreignKey:UserID" json:"-"`
	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}

func (CreatorPointBalance) TableName() string { return "creator_point_balances" }
