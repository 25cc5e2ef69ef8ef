package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Username         string          `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email            string          `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash     string          `gorm:"size:255" json:"-"`
	FirstName        string          `gorm:"size:50" json:"first_name"`
	LastName         string          `gorm:"size:50" json:"last_name"`
	Role             string          `gorm:"size:20;not null;default:'USER';index" json:"role"`
	GoogleID         *string         `gorm:"uniqueIndex;size:255" json:"-"` // nil for email signups (avoids duplicate '' on unique index)
	AvatarURL        string          `gorm:"size:512" json:"avatar_url"`
	EmailVerified    bool            `gorm:"default:false" json:"email_verified"`
	Balance          decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0" json:"balance"`
	TotalEarned      decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0" json:"total_earned"`
	AdsWatched       int             `gorm:"not null;default:0" json:"ads_watched"`
	VideosWatched    int             `gorm:"not null;default:0" json:"videos_watched"`
	WatchTimeSeconds int64           `gorm:"not null;default:0" json:"watch_time_seconds"`
	ReferralCode     string          `gorm:"uniqueIndex;size:20" json:"referral_code"`
	ReferredByID     *uint           `gorm:"index" json:"referred_by_id"`
	ReferralCount    int             `gorm:"not null;default:0" json:"referral_count"`
	ReferralEarnings decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0" json:"referral_earnings"`
	IsActive         bool            `gorm:"default:true" json:"is_active"`
	LastLoginAt      *time.Time      `json:"last_login_at"`
	CreatedAt        time.Time       `json:"created_at"` // anchors the withdrawal waiting period
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`

	ReferredBy *User `gorm:"foreignKey:ReferredByID" json:"referred_by,omitempty"`
}

func (User) TableName() string { return "users" }

// FullName joins first and last name for display.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
