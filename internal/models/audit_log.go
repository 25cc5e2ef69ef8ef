package models

import (
	"time"

	"gorm.io/gorm"
)

// AuditLog records auth and admin actions for traceability.
type AuditLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    *uint          `gorm:"index" json:"user_id"`
	Action    string         `gorm:"size:128;not null" json:"action"`
	Resource  string         `gorm:"size:64" json:"resource"`
	IP        string         `gorm:"size:45" json:"ip"`
	UserAgent string         `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AuditLog) TableName() string { return "audit_logs" }
