package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	OAuth    OAuthConfig
	Rewards  RewardsConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// RewardsConfig holds the reward and withdrawal policy. Some values can be
// overridden at runtime through system settings.
type RewardsConfig struct {
	MinWithdrawal       decimal.Decimal // policy floor for a single withdrawal
	WaitingPeriodDays   int             // days after registration before first withdrawal
	AdCooldown          time.Duration   // one reward per (user, ad) inside this window
	FullWatchSeconds    int             // full reward requires completed + this many seconds
	PartialWatchSeconds int             // half reward from this many seconds
	ReferralBonus       decimal.Decimal // credited to the referrer per signup
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         env("PORT", "8080"),
			Env:          env("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             env("DATABASE_DSN", "earnly:earnly@tcp(localhost:3306)/earnly?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  env("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: env("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "earnly",
		},
		OAuth: OAuthConfig{
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  env("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback"),
		},
		Rewards: RewardsConfig{
			MinWithdrawal:       decimal.NewFromInt(int64(envInt("MIN_WITHDRAWAL", 50))),
			WaitingPeriodDays:   envInt("WAITING_PERIOD_DAYS", 30),
			AdCooldown:          24 * time.Hour,
			FullWatchSeconds:    25,
			PartialWatchSeconds: 15,
			ReferralBonus:       decimal.NewFromInt(int64(envInt("REFERRAL_BONUS", 1))),
		},
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
