package service

import (
	"log"
	"time"

	"earnly/config"
	"earnly/internal/domain"
	"earnly/internal/models"
	"earnly/internal/repository"

	"github.com/shopspring/decimal"
)

// ReferralService links new signups to their referrer and pays the signup
// bonus through the ledger so the balance invariants hold.
type ReferralService struct {
	rewards     config.RewardsConfig
	userRepo    *repository.UserRepository
	ledger      *LedgerService
	settingRepo *repository.SettingRepository
}

func NewReferralService(
	rewards config.RewardsConfig,
	userRepo *repository.UserRepository,
	ledger *LedgerService,
	settingRepo *repository.SettingRepository,
) *ReferralService {
	return &ReferralService{
		rewards:     rewards,
		userRepo:    userRepo,
		ledger:      ledger,
		settingRepo: settingRepo,
	}
}

// ProcessReferralCode records the referral relationship and credits the
// referrer's bonus. Intended for brand-new accounts only; self-referrals and
// unknown codes are silently ignored.
func (s *ReferralService) ProcessReferralCode(referralCode string, newUser *models.User) {
	if referralCode == "" || newUser == nil {
		return
	}
	referrer, err := s.userRepo.GetByReferralCode(referralCode)
	if err != nil || referrer == nil || referrer.ID == newUser.ID {
		return
	}
	if newUser.ReferredByID != nil {
		return
	}

	newUser.ReferredByID = &referrer.ID
	if err := s.userRepo.Update(newUser); err != nil {
		log.Printf("[referral] failed to link referred user %d: %v", newUser.ID, err)
		return
	}

	bonus := s.referralBonus()
	if bonus.Sign() <= 0 {
		return
	}
	if err := s.ledger.RecordReferralBonus(referrer.ID, newUser.ID, bonus, time.Now()); err != nil {
		log.Printf("[referral] failed to credit referrer %d: %v", referrer.ID, err)
	}
}

// ReferralSummary is the referral dashboard view.
type ReferralSummary struct {
	ReferralCode     string          `json:"referral_code"`
	TotalReferrals   int             `json:"total_referrals"`
	ActiveReferrals  int             `json:"active_referrals"`
	ReferralEarnings decimal.Decimal `json:"referral_earnings"`
	ReferredUsers    []ReferredUser  `json:"referred_users"`
}

type ReferredUser struct {
	Username    string          `json:"username"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	TotalEarned decimal.Decimal `json:"total_earned"`
	IsActive    bool            `json:"is_active"`
	JoinedAt    time.Time       `json:"joined_at"`
}

// Summary lists the user's referral code and everyone they brought in.
func (s *ReferralService) Summary(userID uint) (*ReferralSummary, error) {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	referred, err := s.userRepo.ListReferredBy(userID)
	if err != nil {
		return nil, err
	}
	out := &ReferralSummary{
		ReferralCode:     u.ReferralCode,
		TotalReferrals:   len(referred),
		ReferralEarnings: u.ReferralEarnings,
		ReferredUsers:    make([]ReferredUser, 0, len(referred)),
	}
	for _, r := range referred {
		if r.IsActive {
			out.ActiveReferrals++
		}
		out.ReferredUsers = append(out.ReferredUsers, ReferredUser{
			Username:    r.Username,
			FirstName:   r.FirstName,
			LastName:    r.LastName,
			TotalEarned: r.TotalEarned,
			IsActive:    r.IsActive,
			JoinedAt:    r.CreatedAt,
		})
	}
	return out, nil
}

func (s *ReferralService) referralBonus() decimal.Decimal {
	if s.settingRepo != nil {
		if v, err := s.settingRepo.Get(domain.SettingReferralBonus); err == nil && v != "" {
			if d, err := decimal.NewFromString(v); err == nil {
				return d
			}
		}
	}
	return s.rewards.ReferralBonus
}
