package repository

import (
	"earnly/internal/domain"
	"earnly/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalUsers         int64           `json:"total_users"`
	ActiveUsers        int64           `json:"active_users"`
	TotalEarnEvents    int64           `json:"total_earn_events"`
	TotalPaidOut       decimal.Decimal `json:"total_paid_out"`
	TotalPendingPayout decimal.Decimal `json:"total_pending_payout"`
	PendingWithdrawals int64           `json:"pending_withdrawals"`
	TotalWithdrawals   int64           `json:"total_withdrawals"`
	TotalReferrals     int64           `json:"total_referrals"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	var s DashboardStats
	r.db.Model(&models.User{}).Count(&s.TotalUsers)
	r.db.Model(&models.User{}).Where("is_active = ?", true).Count(&s.ActiveUsers)
	r.db.Model(&models.EarnEvent{}).Count(&s.TotalEarnEvents)

	var paid struct{ Total decimal.Decimal }
	r.db.Model(&models.Withdrawal{}).Select("COALESCE(SUM(amount), 0) as total").
		Where("status = ?", domain.WithdrawalStatusCompleted).Scan(&paid)
	s.TotalPaidOut = paid.Total

	var pending struct{ Total decimal.Decimal }
	r.db.Model(&models.Withdrawal{}).Select("COALESCE(SUM(amount), 0) as total").
		Where("status = ?", domain.WithdrawalStatusPending).Scan(&pending)
	s.TotalPendingPayout = pending.Total

	r.db.Model(&models.Withdrawal{}).Where("status = ?", domain.WithdrawalStatusPending).Count(&s.PendingWithdrawals)
	r.db.Model(&models.Withdrawal{}).Count(&s.TotalWithdrawals)
	r.db.Model(&models.User{}).Where("referred_by_id IS NOT NULL").Count(&s.TotalReferrals)

	return &s, nil
}

// ListUsers returns users with search and pagination.
func (r *AdminRepository) ListUsers(search string, page, limit int) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{})
	if search != "" {
		q = q.Where("username LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	var total int64
	q.Count(&total)
	var users []models.User
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&users).Error
	return users, total, err
}

func (r *AdminRepository) GetUserByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.Preload("ReferredBy").First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}
