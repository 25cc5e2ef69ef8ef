package repository

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"earnly/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// generateReferralCode returns an 8-character lowercase hex code.
func generateReferralCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Create inserts the user, assigning a unique referral code.
func (r *UserRepository) Create(u *models.User) error {
	for i := 0; i < 10; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return err
		}
		u.ReferralCode = code
		if err := r.db.Create(u).Error; err == nil {
			return nil
		} else if i == 9 {
			return err
		}
		// Collision on the unique code index: retry with a new code
	}
	return fmt.Errorf("failed to generate a unique referral code after retries")
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var u models.User
	err := r.db.Where("username = ?", username).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByGoogleID(googleID string) (*models.User, error) {
	var u models.User
	err := r.db.Where("google_id = ?", googleID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByReferralCode(code string) (*models.User, error) {
	var u models.User
	err := r.db.Where("referral_code = ?", code).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}

func (r *UserRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

func (r *UserRepository) TouchLastLogin(id uint) error {
	now := time.Now()
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", now).Error
}

// ListReferredBy returns the users referred by the given referrer, newest first.
func (r *UserRepository) ListReferredBy(referrerID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("referred_by_id = ?", referrerID).Order("created_at DESC").Find(&users).Error
	return users, err
}

// Credit adds amount to both balance and total_earned in a single UPDATE so
// earnings stay irreversible and balance never exceeds total_earned.
func (r *UserRepository) Credit(tx *gorm.DB, userID uint, amount decimal.Decimal) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"balance":      gorm.Expr("balance + ?", amount),
		"total_earned": gorm.Expr("total_earned + ?", amount),
	}).Error
}

// Reserve conditionally deducts amount from balance. The balance check is part
// of the UPDATE itself, so two concurrent withdrawals cannot both pass it.
// Returns false when the balance was insufficient at commit time.
func (r *UserRepository) Reserve(tx *gorm.DB, userID uint, amount decimal.Decimal) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	res := tx.Model(&models.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Refund returns a reserved amount to balance without touching total_earned.
func (r *UserRepository) Refund(tx *gorm.DB, userID uint, amount decimal.Decimal) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&models.User{}).Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
}
