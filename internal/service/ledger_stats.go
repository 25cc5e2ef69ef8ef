package service

import (
	"sort"
	"time"

	"earnly/internal/domain"
	"earnly/internal/models"

	"github.com/shopspring/decimal"
)

// RewardStats is the aggregate view shown on the rewards dashboard. Monetary
// values are rounded to 2 decimal places for display.
type RewardStats struct {
	CurrentBalance          decimal.Decimal `json:"current_balance"`
	TotalEarned             decimal.Decimal `json:"total_earned"`
	TotalAdsWatched         int             `json:"total_ads_watched"`
	TotalVideosWatched      int             `json:"total_videos_watched"`
	TotalWatchTimeSeconds   int64           `json:"total_watch_time_seconds"`
	DailyEarnings           decimal.Decimal `json:"daily_earnings"`
	MonthlyEarnings         decimal.Decimal `json:"monthly_earnings"`
	AverageDailyEarnings    decimal.Decimal `json:"average_daily_earnings"`
	ReferralEarnings        decimal.Decimal `json:"referral_earnings"`
	ReferralCount           int             `json:"referral_count"`
	TotalPendingWithdrawals decimal.Decimal `json:"total_pending_withdrawals"`
}

// Stats computes the trailing-window aggregates: daily over the last 7 days,
// monthly over the last 30.
func (s *LedgerService) Stats(userID uint, now time.Time) (*RewardStats, error) {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	daily, err := s.eventRepo.SumSince(userID, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}
	monthly, err := s.eventRepo.SumSince(userID, now.Add(-30*24*time.Hour))
	if err != nil {
		return nil, err
	}
	pending, err := s.withdrawalRepo.SumPending(userID)
	if err != nil {
		return nil, err
	}
	return &RewardStats{
		CurrentBalance:          u.Balance,
		TotalEarned:             u.TotalEarned,
		TotalAdsWatched:         u.AdsWatched,
		TotalVideosWatched:      u.VideosWatched,
		TotalWatchTimeSeconds:   u.WatchTimeSeconds,
		DailyEarnings:           daily.Round(2),
		MonthlyEarnings:         monthly.Round(2),
		AverageDailyEarnings:    daily.Div(decimal.NewFromInt(7)).Round(2),
		ReferralEarnings:        u.ReferralEarnings,
		ReferralCount:           u.ReferralCount,
		TotalPendingWithdrawals: pending.Round(2),
	}, nil
}

// HistoryEntry is one row of the merged earning history. Withdrawals appear
// with a negative amount.
type HistoryEntry struct {
	Type        string          `json:"type"` // ad, video, referral, withdrawal
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Status      string          `json:"status,omitempty"`
	AdID        string          `json:"ad_id,omitempty"`
	VideoID     *uint           `json:"video_id,omitempty"`
}

// EarningHistory merges earn events and withdrawals into one feed, newest
// first. typeFilter narrows to "earning" or "withdrawal"; empty means both.
func (s *LedgerService) EarningHistory(userID uint, typeFilter string, page, limit int) ([]HistoryEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	fetch := page * limit

	var entries []HistoryEntry
	var total int64

	if typeFilter == "" || typeFilter == "earning" {
		events, n, err := s.eventRepo.ListByUser(userID, "", fetch, 0)
		if err != nil {
			return nil, 0, err
		}
		total += n
		for _, e := range events {
			entries = append(entries, earnEntry(e))
		}
	}
	if typeFilter == "" || typeFilter == "withdrawal" {
		withdrawals, n, err := s.withdrawalRepo.ListByUser(userID, "", fetch, 0)
		if err != nil {
			return nil, 0, err
		}
		total += n
		for _, w := range withdrawals {
			entries = append(entries, HistoryEntry{
				Type:        "withdrawal",
				Amount:      w.Amount.Neg(),
				Date:        w.RequestedAt,
				Description: "Withdrawal via " + w.Method,
				Status:      w.Status,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })

	start := (page - 1) * limit
	if start >= len(entries) {
		return []HistoryEntry{}, total, nil
	}
	end := start + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end], total, nil
}

func earnEntry(e models.EarnEvent) HistoryEntry {
	entry := HistoryEntry{
		Amount:  e.Amount,
		Date:    e.OccurredAt,
		AdID:    e.AdID,
		VideoID: e.VideoID,
	}
	switch e.Type {
	case domain.EarnTypeAd:
		entry.Type = "ad"
		entry.Description = "Earned from watching ad"
	case domain.EarnTypeVideo:
		entry.Type = "video"
		entry.Description = "Earned from watching video"
	case domain.EarnTypeReferral:
		entry.Type = "referral"
		entry.Description = "Referral bonus"
	default:
		entry.Type = "earning"
	}
	return entry
}

// ChartPoint is one calendar day of the daily earnings series.
type ChartPoint struct {
	Date     string          `json:"date"`
	Earnings decimal.Decimal `json:"earnings"`
	Watched  int64           `json:"watched"`
}

// DailyChart returns per-day earnings for the trailing days window, bucketed
// by calendar day in the server's local time zone.
func (s *LedgerService) DailyChart(userID uint, days int, now time.Time) ([]ChartPoint, error) {
	if days < 1 {
		days = 7
	}
	points := make([]ChartPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		end := start.AddDate(0, 0, 1)
		sum, count, err := s.eventRepo.SumAndCountBetween(userID, start, end)
		if err != nil {
			return nil, err
		}
		points = append(points, ChartPoint{
			Date:     start.Format("2006-01-02"),
			Earnings: sum.Round(2),
			Watched:  count,
		})
	}
	return points, nil
}

// UserStats is the profile-page statistics view.
type UserStats struct {
	TotalEarned        decimal.Decimal `json:"total_earned"`
	CurrentBalance     decimal.Decimal `json:"current_balance"`
	AdsWatched         int             `json:"ads_watched"`
	VideosWatched      int             `json:"videos_watched"`
	WatchTimeHours     decimal.Decimal `json:"watch_time_hours"`
	AvgEarningsPerView decimal.Decimal `json:"avg_earnings_per_view"`
	EarningsPerHour    decimal.Decimal `json:"earnings_per_hour"`
	ReferralCount      int             `json:"referral_count"`
	ReferralEarnings   decimal.Decimal `json:"referral_earnings"`
	RecentWatched      int64           `json:"recent_watched"`
	RecentEarnings     decimal.Decimal `json:"recent_earnings"`
}

// ComputeUserStats derives per-hour and per-view earnings, guarded to zero
// when there is no watch time or no views.
func (s *LedgerService) ComputeUserStats(userID uint, now time.Time) (*UserStats, error) {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	hours := decimal.NewFromInt(u.WatchTimeSeconds).Div(decimal.NewFromInt(3600))

	perHour := decimal.Zero
	if u.WatchTimeSeconds > 0 {
		perHour = u.TotalEarned.Div(hours)
	}
	views := u.AdsWatched + u.VideosWatched
	perView := decimal.Zero
	if views > 0 {
		perView = u.TotalEarned.Div(decimal.NewFromInt(int64(views)))
	}

	cutoff := now.Add(-7 * 24 * time.Hour)
	recentSum, err := s.eventRepo.SumSince(userID, cutoff)
	if err != nil {
		return nil, err
	}
	recentCount, err := s.eventRepo.CountSince(userID, cutoff)
	if err != nil {
		return nil, err
	}

	return &UserStats{
		TotalEarned:        u.TotalEarned,
		CurrentBalance:     u.Balance,
		AdsWatched:         u.AdsWatched,
		VideosWatched:      u.VideosWatched,
		WatchTimeHours:     hours.Round(2),
		AvgEarningsPerView: perView.Round(2),
		EarningsPerHour:    perHour.Round(2),
		ReferralCount:      u.ReferralCount,
		ReferralEarnings:   u.ReferralEarnings,
		RecentWatched:      recentCount,
		RecentEarnings:     recentSum.Round(2),
	}, nil
}
