package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Withdrawal struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	OrderID     string          `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"amount"`
	Method      string          `gorm:"size:20;not null" json:"method"` // paypal, bank_transfer, crypto
	Status      string          `gorm:"size:20;not null;index" json:"status"`
	// Destination details; only the fields for the chosen method are set.
	PayPalEmail   string `gorm:"size:255" json:"paypal_email,omitempty"`
	AccountNumber string `gorm:"size:64" json:"account_number,omitempty"`
	RoutingNumber string `gorm:"size:64" json:"routing_number,omitempty"`
	BankName      string `gorm:"size:128" json:"bank_name,omitempty"`
	WalletAddress string `gorm:"size:128" json:"wallet_address,omitempty"`

	Notes       string         `gorm:"size:255" json:"notes"`
	RequestedAt time.Time      `gorm:"not null" json:"requested_at"`
	ProcessedAt *time.Time     `json:"processed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Withdrawal) TableName() string { return "withdrawals" }
