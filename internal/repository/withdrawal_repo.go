package repository

import (
	"earnly/internal/domain"
	"earnly/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(tx *gorm.DB, w *models.Withdrawal) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(w).Error
}

func (r *WithdrawalRepository) GetByID(id uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.db.First(&w, id).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) GetByOrderID(orderID string) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.db.Where("order_id = ?", orderID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) Update(tx *gorm.DB, w *models.Withdrawal) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Save(w).Error
}

// CountPending returns the number of the user's in-flight withdrawals.
func (r *WithdrawalRepository) CountPending(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Withdrawal{}).
		Where("user_id = ? AND status = ?", userID, domain.WithdrawalStatusPending).
		Count(&count).Error
	return count, err
}

// SumPending returns the total amount reserved by the user's pending withdrawals.
func (r *WithdrawalRepository) SumPending(userID uint) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	err := r.db.Model(&models.Withdrawal{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("user_id = ? AND status = ?", userID, domain.WithdrawalStatusPending).
		Scan(&row).Error
	return row.Total, err
}

// ListByUser returns the user's withdrawals newest first, optionally filtered
// by status, with the total count for pagination.
func (r *WithdrawalRepository) ListByUser(userID uint, status string, limit, offset int) ([]models.Withdrawal, int64, error) {
	q := r.db.Model(&models.Withdrawal{}).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Withdrawal
	err := q.Order("requested_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

// ListByStatus returns withdrawals across all users, for back-office review.
func (r *WithdrawalRepository) ListByStatus(status string, limit, offset int) ([]models.Withdrawal, int64, error) {
	q := r.db.Model(&models.Withdrawal{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Withdrawal
	err := q.Order("requested_at ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}
