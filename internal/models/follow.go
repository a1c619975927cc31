package models

import (
	"time"

	"gorm.io/gorm"
)

// Follow links a fan to a creator they follow.
type Follow struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	FanID     uint           `gorm:"not null;index:idx_fan_creator,unique" json:"fan_id"`
	CreatorID uint           `gorm:"not null;index:idx_fan_creator,unique" json:"creator_id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Fan     User `gorm:"foreignKey:FanID" json:"-"`
	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}

func (Follow) TableName() string { return "follows" }
