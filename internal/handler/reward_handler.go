package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"earnly/internal/middleware"
	"earnly/internal/repository"
	"earnly/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type RewardHandler struct {
	ledger         *service.LedgerService
	referralSvc    *service.ReferralService
	withdrawalRepo *repository.WithdrawalRepository
}

func NewRewardHandler(ledger *service.LedgerService, referralSvc *service.ReferralService, withdrawalRepo *repository.WithdrawalRepository) *RewardHandler {
	return &RewardHandler{ledger: ledger, referralSvc: referralSvc, withdrawalRepo: withdrawalRepo}
}

// Stats returns the reward dashboard aggregates.
// GET /rewards/stats
func (h *RewardHandler) Stats(c *gin.Context) {
	userID := middleware.GetUserID(c)
	stats, err := h.ledger.Stats(userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch reward statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// History returns the merged earning/withdrawal feed.
// GET /rewards/history?type=earning|withdrawal&page=&limit=
func (h *RewardHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	typeFilter := c.Query("type")
	if typeFilter == "all" {
		typeFilter = ""
	}
	entries, total, err := h.ledger.EarningHistory(userID, typeFilter, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch earning history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"history":      entries,
		"total_items":  total,
		"current_page": page,
	})
}

type WithdrawRequest struct {
	Amount      decimal.Decimal     `json:"amount"`
	Method      string              `json:"method" binding:"required"`
	Destination service.Destination `json:"destination"`
}

// Withdraw submits a withdrawal request.
// POST /rewards/withdraw
func (h *RewardHandler) Withdraw(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, newBalance, err := h.ledger.RequestWithdrawal(userID, req.Amount, req.Method, req.Destination, time.Now())
	if err != nil {
		var wpe *service.WaitingPeriodError
		switch {
		case errors.Is(err, service.ErrInvalidAmount),
			errors.Is(err, service.ErrBelowMinimum),
			errors.Is(err, service.ErrInsufficientBalance),
			errors.Is(err, service.ErrInvalidMethod),
			errors.Is(err, service.ErrMissingDestination),
			errors.Is(err, service.ErrPendingWithdrawalExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &wpe):
			c.JSON(http.StatusBadRequest, gin.H{"error": wpe.Error(), "days_remaining": wpe.DaysRemaining})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit withdrawal request"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Withdrawal request submitted successfully",
		"withdrawal":  w,
		"new_balance": newBalance,
	})
}

// Withdrawals lists the user's withdrawal history with optional status filter.
// GET /rewards/withdrawals?status=&page=&limit=
func (h *RewardHandler) Withdrawals(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	list, total, err := h.withdrawalRepo.ListByUser(userID, c.Query("status"), limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch withdrawal history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"withdrawals":       list,
		"total_pages":       (total + int64(limit) - 1) / int64(limit),
		"current_page":      page,
		"total_withdrawals": total,
	})
}

// Eligibility returns the withdrawal pre-check used to disable the UI action.
// GET /rewards/eligibility
func (h *RewardHandler) Eligibility(c *gin.Context) {
	userID := middleware.GetUserID(c)
	e, err := h.ledger.CheckEligibility(userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check eligibility"})
		return
	}
	c.JSON(http.StatusOK, e)
}

// Methods returns the supported payout methods.
// GET /rewards/withdrawal-methods
func (h *RewardHandler) Methods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": []gin.H{
		{
			"id":              "paypal",
			"name":            "PayPal",
			"min_amount":      50,
			"max_amount":      1000,
			"fee":             0,
			"processing_time": "1-3 business days",
			"description":     "Withdraw to your PayPal account",
		},
		{
			"id":              "bank_transfer",
			"name":            "Bank Transfer",
			"min_amount":      50,
			"max_amount":      5000,
			"fee":             2,
			"processing_time": "3-5 business days",
			"description":     "Direct deposit to your bank account",
		},
		{
			"id":              "crypto",
			"name":            "Cryptocurrency",
			"min_amount":      50,
			"max_amount":      10000,
			"fee":             0,
			"processing_time": "1-2 business days",
			"description":     "Withdraw in Bitcoin, Ethereum, or USDT",
		},
	}})
}

// Referrals returns the referral dashboard.
// GET /rewards/referrals
func (h *RewardHandler) Referrals(c *gin.Context) {
	userID := middleware.GetUserID(c)
	summary, err := h.referralSvc.Summary(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch referral statistics"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DailyChart returns the per-day earnings series.
// GET /rewards/chart/daily?days=7
func (h *RewardHandler) DailyChart(c *gin.Context) {
	userID := middleware.GetUserID(c)
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	points, err := h.ledger.DailyChart(userID, days, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch daily chart data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chart_data": points})
}
