package database

import (
	"log"
	"os"

	"earnly/config"
	"earnly/internal/domain"
	"earnly/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.EarnEvent{},
		&models.Withdrawal{},
		&models.Ad{},
		&models.Video{},
		&models.SystemSetting{},
		&models.AuditLog{},
	)
}

// SeedAds inserts the default ad units if the catalog is empty.
func SeedAds(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Ad{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	ads := []models.Ad{
		{
			ID:              "adsense-test-1",
			Type:            "display",
			Reward:          decimal.RequireFromString("0.10"),
			DurationSeconds: 30,
			Description:     "Watch this ad to earn rewards",
			IsActive:        true,
		},
		{
			ID:              "adsense-test-2",
			Type:            "display",
			Reward:          decimal.RequireFromString("0.15"),
			DurationSeconds: 45,
			Description:     "Complete this ad to earn rewards",
			IsActive:        true,
		},
	}
	return db.Create(&ads).Error
}

// SeedAdmin creates the back-office admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD if no admin exists yet. Skipped silently when the env
// vars are unset.
func SeedAdmin(db *gorm.DB) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count).Error; err != nil || count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[seed] admin password hash: %v", err)
		return
	}
	admin := models.User{
		Username:      "admin",
		Email:         email,
		PasswordHash:  string(hash),
		Role:          domain.RoleAdmin,
		EmailVerified: true,
		IsActive:      true,
		ReferralCode:  "admin",
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("[seed] admin account: %v", err)
		return
	}
	log.Printf("[seed] admin account created: %s", email)
}
