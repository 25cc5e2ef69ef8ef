package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"earnly/config"
	"earnly/internal/domain"
	"earnly/internal/models"
	"earnly/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrAdNotFound              = errors.New("ad not found")
	ErrVideoNotFound           = errors.New("video not found")
	ErrAdCooldownActive        = errors.New("ad already watched recently, wait 24 hours before watching again")
	ErrInvalidAmount           = errors.New("invalid withdrawal amount")
	ErrBelowMinimum            = errors.New("amount below minimum withdrawal")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrInvalidMethod           = errors.New("invalid withdrawal method")
	ErrMissingDestination      = errors.New("missing destination details for withdrawal method")
	ErrPendingWithdrawalExists = errors.New("a pending withdrawal already exists")
	ErrWithdrawalNotPending    = errors.New("withdrawal is not pending")
)

// WaitingPeriodError rejects withdrawals from accounts younger than the
// waiting period and reports how long is left.
type WaitingPeriodError struct {
	DaysRemaining int
}

func (e *WaitingPeriodError) Error() string {
	return fmt.Sprintf("new accounts must wait before first withdrawal, %d days remaining", e.DaysRemaining)
}

// WatchResult is returned by the watch-recording operations.
type WatchResult struct {
	Reward      decimal.Decimal `json:"reward_earned"`
	NewBalance  decimal.Decimal `json:"new_balance"`
	TotalEarned decimal.Decimal `json:"total_earned"`
}

// Destination carries method-specific payout details. Only presence is
// validated, not format.
type Destination struct {
	Email         string `json:"email"`
	AccountNumber string `json:"account_number"`
	RoutingNumber string `json:"routing_number"`
	BankName      string `json:"bank_name"`
	WalletAddress string `json:"wallet_address"`
}

// Eligibility is the read-only withdrawal pre-check used by the UI.
type Eligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// LedgerService owns the reward ledger: it records earn events against a
// user's balance and gates withdrawal requests. All balance mutations go
// through here.
type LedgerService struct {
	db             *gorm.DB
	rewards        config.RewardsConfig
	userRepo       *repository.UserRepository
	eventRepo      *repository.EarnEventRepository
	withdrawalRepo *repository.WithdrawalRepository
	adRepo         *repository.AdRepository
	videoRepo      *repository.VideoRepository
	settingRepo    *repository.SettingRepository
}

func NewLedgerService(
	db *gorm.DB,
	rewards config.RewardsConfig,
	userRepo *repository.UserRepository,
	eventRepo *repository.EarnEventRepository,
	withdrawalRepo *repository.WithdrawalRepository,
	adRepo *repository.AdRepository,
	videoRepo *repository.VideoRepository,
	settingRepo *repository.SettingRepository,
) *LedgerService {
	return &LedgerService{
		db:             db,
		rewards:        rewards,
		userRepo:       userRepo,
		eventRepo:      eventRepo,
		withdrawalRepo: withdrawalRepo,
		adRepo:         adRepo,
		videoRepo:      videoRepo,
		settingRepo:    settingRepo,
	}
}

// RecordAdWatch validates the ad and the cooldown, computes the reward tier
// and credits the user. A zero reward (too short a watch) records nothing.
func (s *LedgerService) RecordAdWatch(userID uint, adID string, watchDuration int, completed bool, now time.Time) (*WatchResult, error) {
	ad, err := s.adRepo.GetByID(adID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdNotFound
		}
		return nil, err
	}
	if !ad.IsActive {
		return nil, ErrAdNotFound
	}

	watched, err := s.eventRepo.HasAdWatchSince(userID, adID, now.Add(-s.rewards.AdCooldown))
	if err != nil {
		return nil, err
	}
	if watched {
		return nil, ErrAdCooldownActive
	}

	reward := decimal.Zero
	if completed && watchDuration >= s.rewards.FullWatchSeconds {
		reward = ad.Reward
	} else if watchDuration >= s.rewards.PartialWatchSeconds {
		reward = ad.Reward.Div(decimal.NewFromInt(2))
	}
	if reward.IsZero() {
		u, err := s.userRepo.GetByID(userID)
		if err != nil {
			return nil, err
		}
		return &WatchResult{Reward: decimal.Zero, NewBalance: u.Balance, TotalEarned: u.TotalEarned}, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Credit(tx, userID, reward); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"ads_watched":        gorm.Expr("ads_watched + 1"),
			"watch_time_seconds": gorm.Expr("watch_time_seconds + ?", watchDuration),
		}).Error; err != nil {
			return err
		}
		return s.eventRepo.Create(tx, &models.EarnEvent{
			UserID:          userID,
			Type:            domain.EarnTypeAd,
			Amount:          reward,
			AdID:            adID,
			DurationSeconds: watchDuration,
			OccurredAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return &WatchResult{Reward: reward, NewBalance: u.Balance, TotalEarned: u.TotalEarned}, nil
}

// RecordVideoWatch credits the video's reward. Full reward requires completion
// plus the video's minimum watch share; otherwise the partial tier applies.
func (s *LedgerService) RecordVideoWatch(userID uint, videoID uint, watchDuration int, completed bool, now time.Time) (*WatchResult, error) {
	video, err := s.videoRepo.GetByID(videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	if !video.IsActive {
		return nil, ErrVideoNotFound
	}

	required := video.DurationSeconds * video.MinWatchPercent / 100
	reward := decimal.Zero
	if completed && watchDuration >= required {
		reward = video.Reward
	} else if watchDuration >= s.rewards.PartialWatchSeconds {
		reward = video.Reward.Div(decimal.NewFromInt(2))
	}

	_ = s.videoRepo.IncrementViews(videoID)

	if reward.IsZero() {
		u, err := s.userRepo.GetByID(userID)
		if err != nil {
			return nil, err
		}
		return &WatchResult{Reward: decimal.Zero, NewBalance: u.Balance, TotalEarned: u.TotalEarned}, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Credit(tx, userID, reward); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"videos_watched":     gorm.Expr("videos_watched + 1"),
			"watch_time_seconds": gorm.Expr("watch_time_seconds + ?", watchDuration),
		}).Error; err != nil {
			return err
		}
		return s.eventRepo.Create(tx, &models.EarnEvent{
			UserID:          userID,
			Type:            domain.EarnTypeVideo,
			Amount:          reward,
			VideoID:         &videoID,
			DurationSeconds: watchDuration,
			OccurredAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return &WatchResult{Reward: reward, NewBalance: u.Balance, TotalEarned: u.TotalEarned}, nil
}

// RecordReferralBonus credits a referral earn event to the referrer.
func (s *LedgerService) RecordReferralBonus(userID, referredUserID uint, amount decimal.Decimal, now time.Time) error {
	if amount.Sign() <= 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Credit(tx, userID, amount); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"referral_count":    gorm.Expr("referral_count + 1"),
			"referral_earnings": gorm.Expr("referral_earnings + ?", amount),
		}).Error; err != nil {
			return err
		}
		return s.eventRepo.Create(tx, &models.EarnEvent{
			UserID:         userID,
			Type:           domain.EarnTypeReferral,
			Amount:         amount,
			ReferredUserID: &referredUserID,
			OccurredAt:     now,
		})
	})
}

// RequestWithdrawal gates and creates a withdrawal request. Checks run in a
// fixed order, first failure wins. On success the amount is reserved
// immediately: balance is decremented when the request is created, not when
// the back office completes it.
func (s *LedgerService) RequestWithdrawal(userID uint, amount decimal.Decimal, method string, dest Destination, now time.Time) (*models.Withdrawal, decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return nil, decimal.Zero, ErrInvalidAmount
	}
	if amount.LessThan(s.minWithdrawal()) {
		return nil, decimal.Zero, ErrBelowMinimum
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if amount.GreaterThan(u.Balance) {
		return nil, decimal.Zero, ErrInsufficientBalance
	}
	switch method {
	case domain.WithdrawalMethodPayPal, domain.WithdrawalMethodBankTransfer, domain.WithdrawalMethodCrypto:
	default:
		return nil, decimal.Zero, ErrInvalidMethod
	}
	if err := validateDestination(method, dest); err != nil {
		return nil, decimal.Zero, err
	}
	pending, err := s.withdrawalRepo.CountPending(userID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if pending > 0 {
		return nil, decimal.Zero, ErrPendingWithdrawalExists
	}
	if remaining := s.waitingDaysRemaining(u.CreatedAt, now); remaining > 0 {
		return nil, decimal.Zero, &WaitingPeriodError{DaysRemaining: remaining}
	}

	w := &models.Withdrawal{
		UserID:      userID,
		OrderID:     fmt.Sprintf("wd-%s", uuid.New().String()),
		Amount:      amount,
		Method:      method,
		Status:      domain.WithdrawalStatusPending,
		RequestedAt: now,
	}
	switch method {
	case domain.WithdrawalMethodPayPal:
		w.PayPalEmail = dest.Email
	case domain.WithdrawalMethodBankTransfer:
		w.AccountNumber = dest.AccountNumber
		w.RoutingNumber = dest.RoutingNumber
		w.BankName = dest.BankName
	case domain.WithdrawalMethodCrypto:
		w.WalletAddress = dest.WalletAddress
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// The reserve re-checks balance inside the UPDATE, so a concurrent
		// request for the same funds loses here rather than double-spending.
		ok, err := s.userRepo.Reserve(tx, userID, amount)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientBalance
		}
		return s.withdrawalRepo.Create(tx, w)
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	u, err = s.userRepo.GetByID(userID)
	if err != nil {
		return w, decimal.Zero, err
	}
	return w, u.Balance, nil
}

func validateDestination(method string, dest Destination) error {
	switch method {
	case domain.WithdrawalMethodPayPal:
		if dest.Email == "" {
			return ErrMissingDestination
		}
	case domain.WithdrawalMethodBankTransfer:
		if dest.AccountNumber == "" || dest.RoutingNumber == "" || dest.BankName == "" {
			return ErrMissingDestination
		}
	case domain.WithdrawalMethodCrypto:
		if dest.WalletAddress == "" {
			return ErrMissingDestination
		}
	}
	return nil
}

// CheckEligibility is the read-only pre-check over the balance floor and the
// waiting period, used to disable withdrawal actions up front.
func (s *LedgerService) CheckEligibility(userID uint, now time.Time) (*Eligibility, error) {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	min := s.minWithdrawal()
	if u.Balance.LessThan(min) {
		return &Eligibility{
			Eligible: false,
			Reason:   fmt.Sprintf("Minimum withdrawal amount is $%s. Current balance: $%s", min.StringFixed(2), u.Balance.StringFixed(2)),
		}, nil
	}
	if remaining := s.waitingDaysRemaining(u.CreatedAt, now); remaining > 0 {
		return &Eligibility{
			Eligible: false,
			Reason:   fmt.Sprintf("New accounts must wait %d days before first withdrawal. %d days remaining.", s.waitingPeriodDays(), remaining),
		}, nil
	}
	return &Eligibility{Eligible: true}, nil
}

// ProcessWithdrawal moves a pending withdrawal to COMPLETED or FAILED. A
// failed withdrawal refunds the reserved amount to the user's balance without
// touching total earnings.
func (s *LedgerService) ProcessWithdrawal(withdrawalID uint, completed bool, notes string, now time.Time) (*models.Withdrawal, error) {
	w, err := s.withdrawalRepo.GetByID(withdrawalID)
	if err != nil {
		return nil, err
	}
	if w.Status != domain.WithdrawalStatusPending {
		return nil, ErrWithdrawalNotPending
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if completed {
			w.Status = domain.WithdrawalStatusCompleted
		} else {
			w.Status = domain.WithdrawalStatusFailed
			if err := s.userRepo.Refund(tx, w.UserID, w.Amount); err != nil {
				return err
			}
		}
		w.ProcessedAt = &now
		w.Notes = notes
		return s.withdrawalRepo.Update(tx, w)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// waitingDaysRemaining returns 0 once the full waiting period has elapsed.
func (s *LedgerService) waitingDaysRemaining(createdAt, now time.Time) int {
	waiting := time.Duration(s.waitingPeriodDays()) * 24 * time.Hour
	elapsed := now.Sub(createdAt)
	if elapsed >= waiting {
		return 0
	}
	// Partial days count as a full remaining day, so "1 second short" reports 1.
	remaining := waiting - elapsed
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}

func (s *LedgerService) minWithdrawal() decimal.Decimal {
	if s.settingRepo != nil {
		if v, err := s.settingRepo.Get(domain.SettingMinWithdrawal); err == nil && v != "" {
			if d, err := decimal.NewFromString(v); err == nil {
				return d
			}
		}
	}
	return s.rewards.MinWithdrawal
}

func (s *LedgerService) waitingPeriodDays() int {
	if s.settingRepo != nil {
		if v, err := s.settingRepo.Get(domain.SettingWaitingPeriodDays); err == nil && v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return s.rewards.WaitingPeriodDays
}
