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
)

type VideoHandler struct {
	videoRepo *repository.VideoRepository
	ledger    *service.LedgerService
}

func NewVideoHandler(videoRepo *repository.VideoRepository, ledger *service.LedgerService) *VideoHandler {
	return &VideoHandler{videoRepo: videoRepo, ledger: ledger}
}

// List returns active videos, optionally filtered by category.
func (h *VideoHandler) List(c *gin.Context) {
	category := c.Query("category")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	videos, total, err := h.videoRepo.ListActive(category, limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch videos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"videos":       videos,
		"total_pages":  (total + int64(limit) - 1) / int64(limit),
		"current_page": page,
		"total":        total,
	})
}

// Watch records a video view and awards the reward.
// POST /videos/:id/watch
func (h *VideoHandler) Watch(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id"})
		return
	}
	var req struct {
		WatchDuration int  `json:"watch_duration" binding:"min=0"`
		Completed     bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.ledger.RecordVideoWatch(userID, uint(id), req.WatchDuration, req.Completed, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record video watch"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Video watch recorded successfully",
		"reward_earned": result.Reward,
		"new_balance":   result.NewBalance,
		"total_earned":  result.TotalEarned,
	})
}
