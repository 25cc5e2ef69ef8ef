package repository

import (
	"time"

	"earnly/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EarnEventRepository struct {
	db *gorm.DB
}

func NewEarnEventRepository(db *gorm.DB) *EarnEventRepository {
	return &EarnEventRepository{db: db}
}

func (r *EarnEventRepository) Create(tx *gorm.DB, e *models.EarnEvent) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(e).Error
}

// HasAdWatchSince reports whether the user already has a recorded watch of the
// given ad at or after the cutoff. Drives the 24h cooldown.
func (r *EarnEventRepository) HasAdWatchSince(userID uint, adID string, cutoff time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.EarnEvent{}).
		Where("user_id = ? AND ad_id = ? AND occurred_at >= ?", userID, adID, cutoff).
		Count(&count).Error
	return count > 0, err
}

// SumSince returns the total earned by the user from the cutoff onward.
func (r *EarnEventRepository) SumSince(userID uint, cutoff time.Time) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	err := r.db.Model(&models.EarnEvent{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("user_id = ? AND occurred_at >= ?", userID, cutoff).
		Scan(&row).Error
	return row.Total, err
}

// SumAndCountBetween returns the earned total and event count in [from, to).
func (r *EarnEventRepository) SumAndCountBetween(userID uint, from, to time.Time) (decimal.Decimal, int64, error) {
	var row struct {
		Total decimal.Decimal
		N     int64
	}
	err := r.db.Model(&models.EarnEvent{}).
		Select("COALESCE(SUM(amount), 0) as total, COUNT(*) as n").
		Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", userID, from, to).
		Scan(&row).Error
	return row.Total, row.N, err
}

// ListByUser returns the user's earn events newest first, optionally filtered
// by type, with the total count for pagination.
func (r *EarnEventRepository) ListByUser(userID uint, eventType string, limit, offset int) ([]models.EarnEvent, int64, error) {
	q := r.db.Model(&models.EarnEvent{}).Where("user_id = ?", userID)
	if eventType != "" {
		q = q.Where("type = ?", eventType)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var events []models.EarnEvent
	err := q.Order("occurred_at DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// CountSince returns how many earn events the user recorded from the cutoff onward.
func (r *EarnEventRepository) CountSince(userID uint, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.EarnEvent{}).
		Where("user_id = ? AND occurred_at >= ?", userID, cutoff).
		Count(&count).Error
	return count, err
}
