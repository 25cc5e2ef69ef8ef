package repository

import (
	"testing"

	"earnly/internal/models"
	"earnly/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserRepo(t *testing.T) (*UserRepository, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t, &models.User{})
	return NewUserRepository(db), db
}

func TestCreateAssignsReferralCode(t *testing.T) {
	repo, _ := newUserRepo(t)

	u := &models.User{Username: "jane", Email: "jane@example.com", IsActive: true}
	require.NoError(t, repo.Create(u))
	assert.Len(t, u.ReferralCode, 8)

	found, err := repo.GetByReferralCode(u.ReferralCode)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
}

func TestCreditUpdatesBothColumns(t *testing.T) {
	repo, db := newUserRepo(t)
	u := &models.User{Username: "jane", Email: "jane@example.com", IsActive: true}
	require.NoError(t, repo.Create(u))

	require.NoError(t, repo.Credit(nil, u.ID, decimal.RequireFromString("0.10")))
	require.NoError(t, repo.Credit(nil, u.ID, decimal.RequireFromString("0.05")))

	var fresh models.User
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.True(t, fresh.Balance.Equal(decimal.RequireFromString("0.15")), "balance %s", fresh.Balance)
	assert.True(t, fresh.TotalEarned.Equal(decimal.RequireFromString("0.15")), "total %s", fresh.TotalEarned)
}

func TestReserveIsConditional(t *testing.T) {
	repo, db := newUserRepo(t)
	u := &models.User{Username: "jane", Email: "jane@example.com", IsActive: true}
	require.NoError(t, repo.Create(u))
	require.NoError(t, repo.Credit(nil, u.ID, decimal.NewFromInt(100)))

	ok, err := repo.Reserve(nil, u.ID, decimal.NewFromInt(60))
	require.NoError(t, err)
	assert.True(t, ok)

	// Second reserve exceeds what is left; the row is not touched.
	ok, err = repo.Reserve(nil, u.ID, decimal.NewFromInt(60))
	require.NoError(t, err)
	assert.False(t, ok)

	var fresh models.User
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.True(t, fresh.Balance.Equal(decimal.NewFromInt(40)), "balance %s", fresh.Balance)

	// Exactly the remaining balance is allowed.
	ok, err = repo.Reserve(nil, u.ID, decimal.NewFromInt(40))
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.True(t, fresh.Balance.IsZero())
}

func TestRefundRestoresBalanceOnly(t *testing.T) {
	repo, db := newUserRepo(t)
	u := &models.User{Username: "jane", Email: "jane@example.com", IsActive: true}
	require.NoError(t, repo.Create(u))
	require.NoError(t, repo.Credit(nil, u.ID, decimal.NewFromInt(100)))

	ok, err := repo.Reserve(nil, u.ID, decimal.NewFromInt(60))
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, repo.Refund(nil, u.ID, decimal.NewFromInt(60)))

	var fresh models.User
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.True(t, fresh.Balance.Equal(decimal.NewFromInt(100)), "balance %s", fresh.Balance)
	assert.True(t, fresh.TotalEarned.Equal(decimal.NewFromInt(100)), "total %s", fresh.TotalEarned)
}
