package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	EarnTypeAd       = "AD"
	EarnTypeVideo    = "VIDEO"
	EarnTypeReferral = "REFERRAL"
)

const (
	WithdrawalStatusPending   = "PENDING"
	WithdrawalStatusCompleted = "COMPLETED"
	WithdrawalStatusFailed    = "FAILED"
)

const (
	WithdrawalMethodPayPal       = "paypal"
	WithdrawalMethodBankTransfer = "bank_transfer"
	WithdrawalMethodCrypto       = "crypto"
)

// System setting keys. Values override the config defaults when present.
const (
	SettingMinWithdrawal     = "min_withdrawal"
	SettingWaitingPeriodDays = "waiting_period_days"
	SettingReferralBonus     = "referral_bonus"
)
