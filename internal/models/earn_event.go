package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EarnEvent is one row in the append-only earnings log. Events reference the
// user by id instead of living inside the user record so the log can grow
// without bloating the account row.
type EarnEvent struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index:idx_earn_events_user_occurred" json:"user_id"`
	Type            string          `gorm:"size:20;not null;index" json:"type"` // AD, VIDEO, REFERRAL
	Amount          decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"amount"`
	AdID            string          `gorm:"size:64;index" json:"ad_id,omitempty"`
	VideoID         *uint           `gorm:"index" json:"video_id,omitempty"`
	ReferredUserID  *uint           `json:"referred_user_id,omitempty"`
	DurationSeconds int             `gorm:"not null;default:0" json:"duration_seconds"`
	OccurredAt      time.Time       `gorm:"not null;index:idx_earn_events_user_occurred" json:"occurred_at"`
	CreatedAt       time.Time       `json:"created_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (EarnEvent) TableName() string { return "earn_events" }
