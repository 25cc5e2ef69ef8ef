package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"earnly/internal/middleware"
	"earnly/internal/models"
	"earnly/internal/repository"
	"earnly/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userRepo       *repository.UserRepository
	eventRepo      *repository.EarnEventRepository
	withdrawalRepo *repository.WithdrawalRepository
	ledger         *service.LedgerService
	authSvc        *service.AuthService
	auditRepo      *repository.AuditLogRepository
}

func NewUserHandler(
	userRepo *repository.UserRepository,
	eventRepo *repository.EarnEventRepository,
	withdrawalRepo *repository.WithdrawalRepository,
	ledger *service.LedgerService,
	authSvc *service.AuthService,
	auditRepo *repository.AuditLogRepository,
) *UserHandler {
	return &UserHandler{
		userRepo:       userRepo,
		eventRepo:      eventRepo,
		withdrawalRepo: withdrawalRepo,
		ledger:         ledger,
		authSvc:        authSvc,
		auditRepo:      auditRepo,
	}
}

// GetProfile returns the current user.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// UpdateProfile updates display fields only.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		FirstName string `json:"first_name" binding:"max=50"`
		LastName  string `json:"last_name" binding:"max=50"`
		AvatarURL string `json:"avatar_url" binding:"max=512"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if req.FirstName != "" {
		u.FirstName = req.FirstName
	}
	if req.LastName != "" {
		u.LastName = req.LastName
	}
	if req.AvatarURL != "" {
		u.AvatarURL = req.AvatarURL
	}
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": u})
}

// Stats returns derived per-user statistics.
func (h *UserHandler) Stats(c *gin.Context) {
	userID := middleware.GetUserID(c)
	stats, err := h.ledger.ComputeUserStats(userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch user statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// WatchHistory returns the combined ad/video watch history.
func (h *UserHandler) WatchHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	events, total, err := h.eventRepo.ListByUser(userID, "", limit, (page-1)*limit)
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

type passwordRequest struct {
	Password string `json:"password" binding:"required"`
}

// Deactivate disables the account after verifying the password. Blocked while
// a withdrawal is pending.
func (h *UserHandler) Deactivate(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.authSvc.VerifyPassword(userID, req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "incorrect password"})
		return
	}
	pending, err := h.withdrawalRepo.CountPending(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check withdrawals"})
		return
	}
	if pending > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot deactivate account with pending withdrawals"})
		return
	}
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	u.IsActive = false
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate account"})
		return
	}
	h.auditLog(userID, "deactivate_account", c)
	c.JSON(http.StatusOK, gin.H{"message": "Account deactivated successfully"})
}

// Delete removes the account after verifying the password. Blocked while a
// withdrawal is pending.
func (h *UserHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.authSvc.VerifyPassword(userID, req.Password); err != nil {
		if errors.Is(err, service.ErrInvalidCreds) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "incorrect password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}
	pending, err := h.withdrawalRepo.CountPending(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check withdrawals"})
		return
	}
	if pending > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete account with pending withdrawals"})
		return
	}
	if err := h.userRepo.Delete(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete account"})
		return
	}
	h.auditLog(userID, "delete_account", c)
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

type achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
}

// Achievements derives threshold badges from the user's counters.
func (h *UserHandler) Achievements(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	var out []achievement
	watched := u.AdsWatched + u.VideosWatched
	for _, a := range []struct {
		threshold int
		id, name  string
		desc      string
	}{
		{1, "first_watch", "First Watch", "Watched your first ad or video"},
		{10, "watch_enthusiast", "Watch Enthusiast", "Watched 10 ads or videos"},
		{50, "watch_master", "Watch Master", "Watched 50 ads or videos"},
		{100, "watch_expert", "Watch Expert", "Watched 100 ads or videos"},
	} {
		if watched >= a.threshold {
			out = append(out, achievement{ID: a.id, Name: a.name, Description: a.desc, Earned: true})
		}
	}
	for _, a := range []struct {
		threshold int64
		id, name  string
		desc      string
	}{
		{10, "first_earnings", "First Earnings", "Earned your first $10"},
		{50, "earnings_milestone", "Earnings Milestone", "Earned $50 total"},
		{100, "earnings_expert", "Earnings Expert", "Earned $100 total"},
	} {
		if u.TotalEarned.IntPart() >= a.threshold {
			out = append(out, achievement{ID: a.id, Name: a.name, Description: a.desc, Earned: true})
		}
	}
	for _, a := range []struct {
		threshold int
		id, name  string
		desc      string
	}{
		{1, "first_referral", "First Referral", "Referred your first friend"},
		{5, "referral_network", "Referral Network", "Referred 5 friends"},
		{10, "referral_master", "Referral Master", "Referred 10 friends"},
	} {
		if u.ReferralCount >= a.threshold {
			out = append(out, achievement{ID: a.id, Name: a.name, Description: a.desc, Earned: true})
		}
	}
	hours := u.WatchTimeSeconds / 3600
	if hours >= 1 {
		out = append(out, achievement{ID: "hour_watcher", Name: "Hour Watcher", Description: "Watched 1 hour of content", Earned: true})
	}
	if hours >= 10 {
		out = append(out, achievement{ID: "dedicated_watcher", Name: "Dedicated Watcher", Description: "Watched 10 hours of content", Earned: true})
	}

	c.JSON(http.StatusOK, gin.H{"achievements": out})
}

func (h *UserHandler) auditLog(userID uint, action string, c *gin.Context) {
	if h.auditRepo == nil {
		return
	}
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:    &userID,
		Action:    action,
		Resource:  "user",
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}
