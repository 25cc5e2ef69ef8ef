package service

import (
	"testing"
	"time"

	"earnly/config"
	"earnly/internal/models"
	"earnly/internal/repository"
	"earnly/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) (*AuthService, *repository.UserRepository) {
	t.Helper()
	db := testutil.NewTestDB(t, &models.User{})
	cfg := &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:  "test-access",
			RefreshSecret: "test-refresh",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "earnly-test",
		},
		Rewards: testRewardsConfig(),
	}
	userRepo := repository.NewUserRepository(db)
	return NewAuthService(cfg, userRepo), userRepo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuth(t)

	u, access, refresh, err := svc.Register("jane@example.com", "jane", "secret123", "Jane", "Doe")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEmpty(t, u.ReferralCode)
	assert.True(t, u.Balance.IsZero())

	logged, access2, _, err := svc.Login("jane@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	assert.NotEmpty(t, access2)

	_, _, _, err = svc.Login("jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCreds)

	_, _, _, err = svc.Login("nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, _, _, err := svc.Register("jane@example.com", "jane", "secret123", "Jane", "Doe")
	require.NoError(t, err)

	_, _, _, err = svc.Register("jane@example.com", "other", "secret123", "Jane", "Doe")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, _, _, err = svc.Register("other@example.com", "jane", "secret123", "Jane", "Doe")
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	svc, userRepo := newTestAuth(t)

	u, _, _, err := svc.Register("jane@example.com", "jane", "secret123", "Jane", "Doe")
	require.NoError(t, err)

	u.IsActive = false
	require.NoError(t, userRepo.Update(u))

	_, _, _, err = svc.Login("jane@example.com", "secret123")
	assert.ErrorIs(t, err, ErrAccountClosed)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestAuth(t)

	u, _, _, err := svc.Register("jane@example.com", "jane", "secret123", "Jane", "Doe")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(u.ID, "wrong", "newsecret"), ErrInvalidCreds)
	require.NoError(t, svc.ChangePassword(u.ID, "secret123", "newsecret"))

	_, _, _, err = svc.Login("jane@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, _, _, err = svc.Login("jane@example.com", "newsecret")
	require.NoError(t, err)
}

func TestLoginWithGoogle(t *testing.T) {
	svc, _ := newTestAuth(t)

	u, _, _, isNew, err := svc.LoginWithGoogle("google-123", "jane@example.com", "Jane Doe", "")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "Jane", u.FirstName)
	assert.Equal(t, "Doe", u.LastName)
	assert.True(t, u.EmailVerified)

	again, _, _, isNew, err := svc.LoginWithGoogle("google-123", "jane@example.com", "Jane Doe", "")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, u.ID, again.ID)
}

func TestLoginWithGoogleLinksExistingEmail(t *testing.T) {
	svc, userRepo := newTestAuth(t)

	u, _, _, err := svc.Register("jane@example.com", "jane", "secret123", "Jane", "Doe")
	require.NoError(t, err)

	linked, _, _, isNew, err := svc.LoginWithGoogle("google-456", "jane@example.com", "Jane Doe", "https://example.com/a.png")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, u.ID, linked.ID)

	fresh, err := userRepo.GetByID(u.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.GoogleID)
	assert.Equal(t, "google-456", *fresh.GoogleID)
	assert.True(t, fresh.EmailVerified)
}

func TestRefreshToken(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, _, refresh, err := svc.Register("jane@example.com", "jane", "secret123", "Jane", "Doe")
	require.NoError(t, err)

	access2, refresh2, err := svc.RefreshToken(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access2)
	assert.NotEmpty(t, refresh2)

	_, _, err = svc.RefreshToken("not-a-token")
	assert.Error(t, err)
}
