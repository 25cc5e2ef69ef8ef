package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ad is a catalog entry for a rewarded ad unit. The catalog is seeded at
// startup and editable by admins; watch recording only pays for ads present
// and active here.
type Ad struct {
	ID              string          `gorm:"primaryKey;size:64" json:"id"`
	Type            string          `gorm:"size:20;not null;default:'display'" json:"type"`
	Reward          decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"reward"`
	DurationSeconds int             `gorm:"not null" json:"duration"`
	Description     string          `gorm:"size:255" json:"description"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Ad) TableName() string { return "ads" }
