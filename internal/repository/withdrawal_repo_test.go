package repository

import (
	"strconv"
	"testing"
	"time"

	"earnly/internal/domain"
	"earnly/internal/models"
	"earnly/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createWithdrawal(t *testing.T, db *gorm.DB, userID uint, amount, status string, requestedAt time.Time) *models.Withdrawal {
	t.Helper()
	w := &models.Withdrawal{
		UserID:      userID,
		OrderID:     "wd-test-" + strconv.FormatUint(uint64(userID), 10) + "-" + strconv.FormatInt(requestedAt.UnixNano(), 10),
		Amount:      decimal.RequireFromString(amount),
		Method:      domain.WithdrawalMethodPayPal,
		Status:      status,
		RequestedAt: requestedAt,
	}
	require.NoError(t, db.Create(w).Error)
	return w
}

func TestCountAndSumPending(t *testing.T) {
	db := testutil.NewTestDB(t, &models.Withdrawal{})
	repo := NewWithdrawalRepository(db)
	now := time.Now()

	createWithdrawal(t, db, 1, "60", domain.WithdrawalStatusPending, now)
	createWithdrawal(t, db, 1, "50", domain.WithdrawalStatusCompleted, now.Add(time.Second))
	createWithdrawal(t, db, 2, "75", domain.WithdrawalStatusPending, now.Add(2*time.Second))

	count, err := repo.CountPending(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	sum, err := repo.SumPending(1)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(60)), "sum %s", sum)

	sum, err = repo.SumPending(3)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestListByUserAndStatus(t *testing.T) {
	db := testutil.NewTestDB(t, &models.Withdrawal{})
	repo := NewWithdrawalRepository(db)
	now := time.Now()

	createWithdrawal(t, db, 1, "60", domain.WithdrawalStatusCompleted, now.Add(-2*time.Hour))
	createWithdrawal(t, db, 1, "50", domain.WithdrawalStatusFailed, now.Add(-time.Hour))
	createWithdrawal(t, db, 1, "70", domain.WithdrawalStatusPending, now)
	createWithdrawal(t, db, 2, "80", domain.WithdrawalStatusPending, now)

	list, total, err := repo.ListByUser(1, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 3)
	// Newest first for the user-facing list.
	assert.Equal(t, domain.WithdrawalStatusPending, list[0].Status)

	failed, total, err := repo.ListByUser(1, domain.WithdrawalStatusFailed, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, failed, 1)

	// Back-office queue is oldest first across users.
	queue, total, err := repo.ListByStatus(domain.WithdrawalStatusPending, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, queue, 2)
}
