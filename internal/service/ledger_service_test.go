package service

import (
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"earnly/config"
	"earnly/internal/domain"
	"earnly/internal/models"
	"earnly/internal/repository"
	"earnly/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testRewardsConfig() config.RewardsConfig {
	return config.RewardsConfig{
		MinWithdrawal:       decimal.NewFromInt(50),
		WaitingPeriodDays:   30,
		AdCooldown:          24 * time.Hour,
		FullWatchSeconds:    25,
		PartialWatchSeconds: 15,
		ReferralBonus:       decimal.NewFromInt(1),
	}
}

func newTestLedger(t *testing.T) (*LedgerService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t,
		&models.User{}, &models.EarnEvent{}, &models.Withdrawal{},
		&models.Ad{}, &models.Video{}, &models.SystemSetting{},
	)
	svc := NewLedgerService(
		db,
		testRewardsConfig(),
		repository.NewUserRepository(db),
		repository.NewEarnEventRepository(db),
		repository.NewWithdrawalRepository(db),
		repository.NewAdRepository(db),
		repository.NewVideoRepository(db),
		nil,
	)
	return svc, db
}

var testUserSeq atomic.Int64

func createTestUser(t *testing.T, db *gorm.DB, balance, totalEarned string, createdAt time.Time) *models.User {
	t.Helper()
	n := strconv.FormatInt(testUserSeq.Add(1), 10)
	u := &models.User{
		Username:     "user-" + n,
		Email:        "user-" + n + "@example.com",
		Role:         domain.RoleUser,
		Balance:      dec(balance),
		TotalEarned:  dec(totalEarned),
		IsActive:     true,
		ReferralCode: "ref-" + n,
		CreatedAt:    createdAt,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createTestAd(t *testing.T, db *gorm.DB, id, reward string) *models.Ad {
	t.Helper()
	a := &models.Ad{
		ID:              id,
		Type:            "display",
		Reward:          dec(reward),
		DurationSeconds: 30,
		IsActive:        true,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func paypalDest() Destination { return Destination{Email: "payout@example.com"} }

func TestRecordAdWatchFullReward(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	u := createTestUser(t, db, "0", "0", now.Add(-60*24*time.Hour))
	createTestAd(t, db, "ad-1", "0.10")

	res, err := svc.RecordAdWatch(u.ID, "ad-1", 30, true, now)
	require.NoError(t, err)
	assert.True(t, res.Reward.Equal(dec("0.10")), "reward %s", res.Reward)
	assert.True(t, res.NewBalance.Equal(dec("0.10")), "balance %s", res.NewBalance)
	assert.True(t, res.TotalEarned.Equal(dec("0.10")), "total %s", res.TotalEarned)

	var fresh models.User
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.Equal(t, 1, fresh.AdsWatched)
	assert.Equal(t, int64(30), fresh.WatchTimeSeconds)

	var count int64
	db.Model(&models.EarnEvent{}).Where("user_id = ?", u.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRecordAdWatchPartialReward(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	u := createTestUser(t, db, "0", "0", now.Add(-60*24*time.Hour))
	createTestAd(t, db, "ad-1", "0.10")

	// 18 seconds, not completed: half the reward.
	res, err := svc.RecordAdWatch(u.ID, "ad-1", 18, false, now)
	require.NoError(t, err)
	assert.True(t, res.Reward.Equal(dec("0.05")), "reward %s", res.Reward)
	assert.True(t, res.NewBalance.Equal(dec("0.05")), "balance %s", res.NewBalance)
}

func TestRecordAdWatchCompletedButShortIsPartial(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	u := createTestUser(t, db, "0", "0", now.Add(-60*24*time.Hour))
	createTestAd(t, db, "ad-1", "0.15")

	// Completed below the full-watch threshold still drops to the half tier.
	res, err := svc.RecordAdWatch(u.ID, "ad-1", 20, true, now)
	require.NoError(t, err)
	assert.True(t, res.Reward.Equal(dec("0.075")), "reward %s", res.Reward)
}

func TestRecordAdWatchTooShortEarnsNothing(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	u := createTestUser(t, db, "0", "0", now.Add(-60*24*time.Hour))
	createTestAd(t, db, "ad-1", "0.10")

	res, err := svc.RecordAdWatch(u.ID, "ad-1", 10, false, now)
	require.NoError(t, err)
	assert.True(t, res.Reward.IsZero())
	assert.True(t, res.NewBalance.IsZero())

	// Nothing recorded, so the user can try again immediately.
	var count int64
	db.Model(&models.EarnEvent{}).Where("user_id = ?", u.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	_, err = svc.RecordAdWatch(u.ID, "ad-1", 30, true, now.Add(time.Minute))
	require.NoError(t, err)
}

func TestRecordAdWatchCooldown(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	u := createTestUser(t, db, "0", "0", now.Add(-60*24*time.Hour))
	createTestAd(t, db, "ad-1", "0.10")
	createTestAd(t, db, "ad-2", "0.15")

	_, err := svc.RecordAdWatch(u.ID, "ad-1", 30, true, now)
	require.NoError(t, err)

	// Same ad inside the window is rejected and does not credit again.
	_, err = svc.RecordAdWatch(u.ID, "ad-1", 30, true, now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrAdCooldownActive)

	var fresh models.User
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.True(t, fresh.Balance.Equal(dec("0.10")), "balance %s", fresh.Balance)

	// A different ad is unaffected.
	_, err = svc.RecordAdWatch(u.ID, "ad-2", 30, true, now.Add(time.Hour))
	require.NoError(t, err)

	// Same ad after the window passes again.
	_, err = svc.RecordAdWatch(u.ID, "ad-1", 30, true, now.Add(25*time.Hour))
	require.NoError(t, err)
}

func TestRecordAdWatchUnknownOrInactiveAd(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	u := createTestUser(t, db, "0", "0", now.Add(-60*24*time.Hour))

	_, err := svc.RecordAdWatch(u.ID, "nope", 30, true, now)
	assert.ErrorIs(t, err, ErrAdNotFound)

	ad := createTestAd(t, db, "ad-1", "0.10")
	ad.IsActive = false
	require.NoError(t, db.Save(ad).Error)
	_, err = svc.RecordAdWatch(u.ID, "ad-1", 30, true, now)
	assert.ErrorIs(t, err, ErrAdNotFound)
}

func TestRecordVideoWatch(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	u := createTestUser(t, db, "0", "0", now.Add(-60*24*time.Hour))
	v := &models.Video{
		Title:           "Test video",
		URL:             "https://example.com/v.mp4",
		DurationSeconds: 100,
		Category:        "entertainment",
		Reward:          dec("0.20"),
		MinWatchPercent: 80,
		IsActive:        true,
	}
	require.NoError(t, db.Create(v).Error)

	// 80 of 100 seconds and completed: full reward.
	res, err := svc.RecordVideoWatch(u.ID, v.ID, 80, true, now)
	require.NoError(t, err)
	assert.True(t, res.Reward.Equal(dec("0.20")), "reward %s", res.Reward)

	// Short of the threshold: half.
	res, err = svc.RecordVideoWatch(u.ID, v.ID, 50, false, now)
	require.NoError(t, err)
	assert.True(t, res.Reward.Equal(dec("0.10")), "reward %s", res.Reward)

	var fresh models.Video
	require.NoError(t, db.First(&fresh, v.ID).Error)
	assert.Equal(t, int64(2), fresh.Views)
}

func TestRequestWithdrawalSuccess(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	u := createTestUser(t, db, "100", "100", now.Add(-60*24*time.Hour))

	w, newBalance, err := svc.RequestWithdrawal(u.ID, dec("60"), domain.WithdrawalMethodPayPal, paypalDest(), now)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusPending, w.Status)
	assert.True(t, strings.HasPrefix(w.OrderID, "wd-"))
	assert.Equal(t, "payout@example.com", w.PayPalEmail)
	assert.True(t, newBalance.Equal(dec("40")), "balance %s", newBalance)

	// Reserved at request time, total earnings untouched.
	var fresh models.User
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.True(t, fresh.Balance.Equal(dec("40")), "balance %s", fresh.Balance)
	assert.True(t, fresh.TotalEarned.Equal(dec("100")), "total %s", fresh.TotalEarned)
}

func TestRequestWithdrawalExactBalance(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	u := createTestUser(t, db, "75.50", "75.50", now.Add(-60*24*time.Hour))

	_, newBalance, err := svc.RequestWithdrawal(u.ID, dec("75.50"), domain.WithdrawalMethodPayPal, paypalDest(), now)
	require.NoError(t, err)
	assert.True(t, newBalance.IsZero(), "balance %s", newBalance)

	u2 := createTestUser(t, db, "75.50", "75.50", now.Add(-60*24*time.Hour))
	_, _, err = svc.RequestWithdrawal(u2.ID, dec("75.51"), domain.WithdrawalMethodPayPal, paypalDest(), now)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestRequestWithdrawalCheckOrder(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	u := createTestUser(t, db, "50", "50", now.Add(-60*24*time.Hour))

	_, _, err := svc.RequestWithdrawal(u.ID, dec("0"), domain.WithdrawalMethodPayPal, paypalDest(), now)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = svc.RequestWithdrawal(u.ID, dec("49.99"), domain.WithdrawalMethodPayPal, paypalDest(), now)
	assert.ErrorIs(t, err, ErrBelowMinimum)

	// Balance check comes before method validation: over-balance with a bad
	// method reports the balance failure.
	_, _, err = svc.RequestWithdrawal(u.ID, dec("60"), "venmo", paypalDest(), now)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, _, err = svc.RequestWithdrawal(u.ID, dec("50"), "venmo", paypalDest(), now)
	assert.ErrorIs(t, err, ErrInvalidMethod)

	_, _, err = svc.RequestWithdrawal(u.ID, dec("50"), domain.WithdrawalMethodPayPal, Destination{}, now)
	assert.ErrorIs(t, err, ErrMissingDestination)

	_, _, err = svc.RequestWithdrawal(u.ID, dec("50"), domain.WithdrawalMethodBankTransfer, Destination{AccountNumber: "123"}, now)
	assert.ErrorIs(t, err, ErrMissingDestination)
}

func TestRequestWithdrawalPendingExclusivity(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	u := createTestUser(t, db, "200", "200", now.Add(-60*24*time.Hour))

	w, _, err := svc.RequestWithdrawal(u.ID, dec("50"), domain.WithdrawalMethodPayPal, paypalDest(), now)
	require.NoError(t, err)

	_, _, err = svc.RequestWithdrawal(u.ID, dec("50"), domain.WithdrawalMethodPayPal, paypalDest(), now)
	assert.ErrorIs(t, err, ErrPendingWithdrawalExists)

	// Once processed, a new request goes through.
	_, err = svc.ProcessWithdrawal(w.ID, true, "", now.Add(time.Hour))
	require.NoError(t, err)
	_, _, err = svc.RequestWithdrawal(u.ID, dec("50"), domain.WithdrawalMethodPayPal, paypalDest(), now.Add(2*time.Hour))
	require.NoError(t, err)
}

func TestRequestWithdrawalWaitingPeriod(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()

	// Exactly 30 days old: allowed.
	u := createTestUser(t, db, "100", "100", now.Add(-30*24*time.Hour))
	_, _, err := svc.RequestWithdrawal(u.ID, dec("50"), domain.WithdrawalMethodPayPal, paypalDest(), now)
	require.NoError(t, err)

	// One second short of 30 days: rejected with one day remaining.
	u2 := createTestUser(t, db, "100", "100", now.Add(-30*24*time.Hour+time.Second))
	_, _, err = svc.RequestWithdrawal(u2.ID, dec("50"), domain.WithdrawalMethodPayPal, paypalDest(), now)
	var wpe *WaitingPeriodError
	require.ErrorAs(t, err, &wpe)
	assert.Equal(t, 1, wpe.DaysRemaining)

	// Five day old account: 25 days remaining.
	u3 := createTestUser(t, db, "100", "100", now.Add(-5*24*time.Hour))
	_, _, err = svc.RequestWithdrawal(u3.ID, dec("50"), domain.WithdrawalMethodPayPal, paypalDest(), now)
	require.ErrorAs(t, err, &wpe)
	assert.Equal(t, 25, wpe.DaysRemaining)
}

func TestCheckEligibility(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()

	low := createTestUser(t, db, "10", "10", now.Add(-60*24*time.Hour))
	el, err := svc.CheckEligibility(low.ID, now)
	require.NoError(t, err)
	assert.False(t, el.Eligible)
	assert.Equal(t, "Minimum withdrawal amount is $50.00. Current balance: $10.00", el.Reason)

	young := createTestUser(t, db, "100", "100", now.Add(-5*24*time.Hour))
	el, err = svc.CheckEligibility(young.ID, now)
	require.NoError(t, err)
	assert.False(t, el.Eligible)
	assert.Equal(t, "New accounts must wait 30 days before first withdrawal. 25 days remaining.", el.Reason)

	ok := createTestUser(t, db, "100", "100", now.Add(-60*24*time.Hour))
	el, err = svc.CheckEligibility(ok.ID, now)
	require.NoError(t, err)
	assert.True(t, el.Eligible)
	assert.Empty(t, el.Reason)
}

func TestProcessWithdrawalCompleted(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	u := createTestUser(t, db, "100", "100", now.Add(-60*24*time.Hour))

	w, _, err := svc.RequestWithdrawal(u.ID, dec("60"), domain.WithdrawalMethodPayPal, paypalDest(), now)
	require.NoError(t, err)

	processed, err := svc.ProcessWithdrawal(w.ID, true, "paid via batch 42", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusCompleted, processed.Status)
	assert.NotNil(t, processed.ProcessedAt)
	assert.Equal(t, "paid via batch 42", processed.Notes)

	// Completion does not touch the balance; it was reserved at request time.
	var fresh models.User
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.True(t, fresh.Balance.Equal(dec("40")), "balance %s", fresh.Balance)
}

func TestProcessWithdrawalFailedRefunds(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	u := createTestUser(t, db, "100", "100", now.Add(-60*24*time.Hour))

	w, _, err := svc.RequestWithdrawal(u.ID, dec("60"), domain.WithdrawalMethodPayPal, paypalDest(), now)
	require.NoError(t, err)

	processed, err := svc.ProcessWithdrawal(w.ID, false, "paypal rejected", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusFailed, processed.Status)

	var fresh models.User
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.True(t, fresh.Balance.Equal(dec("100")), "balance %s", fresh.Balance)
	assert.True(t, fresh.TotalEarned.Equal(dec("100")), "total %s", fresh.TotalEarned)
}

func TestProcessWithdrawalNotPending(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	u := createTestUser(t, db, "100", "100", now.Add(-60*24*time.Hour))

	w, _, err := svc.RequestWithdrawal(u.ID, dec("60"), domain.WithdrawalMethodPayPal, paypalDest(), now)
	require.NoError(t, err)
	_, err = svc.ProcessWithdrawal(w.ID, true, "", now)
	require.NoError(t, err)

	_, err = svc.ProcessWithdrawal(w.ID, true, "", now)
	assert.ErrorIs(t, err, ErrWithdrawalNotPending)
}

func TestBalanceNeverExceedsTotalEarned(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	u := createTestUser(t, db, "0", "0", now.Add(-60*24*time.Hour))
	createTestAd(t, db, "ad-1", "30.00")
	createTestAd(t, db, "ad-2", "40.00")

	_, err := svc.RecordAdWatch(u.ID, "ad-1", 30, true, now)
	require.NoError(t, err)
	_, err = svc.RecordAdWatch(u.ID, "ad-2", 30, true, now)
	require.NoError(t, err)

	w, _, err := svc.RequestWithdrawal(u.ID, dec("50"), domain.WithdrawalMethodPayPal, paypalDest(), now)
	require.NoError(t, err)
	_, err = svc.ProcessWithdrawal(w.ID, false, "", now.Add(time.Hour))
	require.NoError(t, err)

	var fresh models.User
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.True(t, fresh.Balance.Equal(dec("70")), "balance %s", fresh.Balance)
	assert.True(t, fresh.TotalEarned.Equal(dec("70")), "total %s", fresh.TotalEarned)
	assert.False(t, fresh.Balance.GreaterThan(fresh.TotalEarned))
}

func TestRecordReferralBonus(t *testing.T) {
	svc, db := newTestLedger(t)
	now := time.Now()
	referrer := createTestUser(t, db, "0", "0", now.Add(-60*24*time.Hour))
	referred := createTestUser(t, db, "0", "0", now)

	require.NoError(t, svc.RecordReferralBonus(referrer.ID, referred.ID, dec("1"), now))

	var fresh models.User
	require.NoError(t, db.First(&fresh, referrer.ID).Error)
	assert.True(t, fresh.Balance.Equal(dec("1")), "balance %s", fresh.Balance)
	assert.True(t, fresh.ReferralEarnings.Equal(dec("1")))
	assert.Equal(t, 1, fresh.ReferralCount)

	var e models.EarnEvent
	require.NoError(t, db.Where("user_id = ?", referrer.ID).First(&e).Error)
	assert.Equal(t, domain.EarnTypeReferral, e.Type)
	require.NotNil(t, e.ReferredUserID)
	assert.Equal(t, referred.ID, *e.ReferredUserID)

	// Zero and negative amounts are a no-op.
	require.NoError(t, svc.RecordReferralBonus(referrer.ID, referred.ID, decimal.Zero, now))
	require.NoError(t, db.First(&fresh, referrer.ID).Error)
	assert.Equal(t, 1, fresh.ReferralCount)
}
