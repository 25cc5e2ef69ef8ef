package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Video struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Title           string          `gorm:"size:200;not null" json:"title"`
	Description     string          `gorm:"size:1000" json:"description"`
	URL             string          `gorm:"size:512;not null" json:"url"`
	Thumbnail       string          `gorm:"size:512" json:"thumbnail"`
	DurationSeconds int             `gorm:"not null" json:"duration"`
	Category        string          `gorm:"size:30;not null;index" json:"category"`
	Reward          decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"reward"`
	MinWatchPercent int             `gorm:"not null;default:80" json:"min_watch_percent"` // share of the video required for full reward
	IsActive        bool            `gorm:"default:true;index" json:"is_active"`
	IsFeatured      bool            `gorm:"default:false" json:"is_featured"`
	Views           int64           `gorm:"not null;default:0" json:"views"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Video) TableName() string { return "videos" }
