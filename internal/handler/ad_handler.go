package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"earnly/internal/domain"
	"earnly/internal/middleware"
	"earnly/internal/repository"
	"earnly/internal/service"

	"github.com/gin-gonic/gin"
)

type AdHandler struct {
	adRepo    *repository.AdRepository
	eventRepo *repository.EarnEventRepository
	ledger    *service.LedgerService
}

func NewAdHandler(adRepo *repository.AdRepository, eventRepo *repository.EarnEventRepository, ledger *service.LedgerService) *AdHandler {
	return &AdHandler{adRepo: adRepo, eventRepo: eventRepo, ledger: ledger}
}

// List returns the active ad catalog for the player to choose from.
func (h *AdHandler) List(c *gin.Context) {
	ads, err := h.adRepo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch ads"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ads": ads})
}

// Watch records an ad view and awards the reward.
// POST /ads/:id/watch
func (h *AdHandler) Watch(c *gin.Context) {
	userID := middleware.GetUserID(c)
	adID := c.Param("id")
	var req struct {
		WatchDuration int  `json:"watch_duration" binding:"min=0"`
		Completed     bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.ledger.RecordAdWatch(userID, adID, req.WatchDuration, req.Completed, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAdCooldownActive):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record ad watch"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Ad watch recorded successfully",
		"reward_earned": result.Reward,
		"new_balance":   result.NewBalance,
		"total_earned":  result.TotalEarned,
	})
}

// History returns the user's ad watch history, newest first.
// GET /ads/history/watched
func (h *AdHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	events, total, err := h.eventRepo.ListByUser(userID, domain.EarnTypeAd, limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch watch history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"watch_history": events,
		"total_pages":   (total + int64(limit) - 1) / int64(limit),
		"current_page":  page,
		"total_watched": total,
	})
}
