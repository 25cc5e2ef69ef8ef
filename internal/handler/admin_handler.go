package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"earnly/internal/domain"
	"earnly/internal/middleware"
	"earnly/internal/models"
	"earnly/internal/repository"
	"earnly/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AdminHandler struct {
	adminRepo      *repository.AdminRepository
	settingRepo    *repository.SettingRepository
	withdrawalRepo *repository.WithdrawalRepository
	adRepo         *repository.AdRepository
	videoRepo      *repository.VideoRepository
	auditRepo      *repository.AuditLogRepository
	authSvc        *service.AuthService
	ledger         *service.LedgerService
}

func NewAdminHandler(
	adminRepo *repository.AdminRepository,
	settingRepo *repository.SettingRepository,
	withdrawalRepo *repository.WithdrawalRepository,
	adRepo *repository.AdRepository,
	videoRepo *repository.VideoRepository,
	auditRepo *repository.AuditLogRepository,
	authSvc *service.AuthService,
	ledger *service.LedgerService,
) *AdminHandler {
	return &AdminHandler{
		adminRepo:      adminRepo,
		settingRepo:    settingRepo,
		withdrawalRepo: withdrawalRepo,
		adRepo:         adRepo,
		videoRepo:      videoRepo,
		auditRepo:      auditRepo,
		authSvc:        authSvc,
		ledger:         ledger,
	}
}

// Login handles POST /admin/login — admin-only login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.authSvc.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if u.Role != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Dashboard handles GET /admin/dashboard — overview stats.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminRepo.GetDashboardStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	search := c.Query("search")
	page, limit := parsePagination(c)
	users, total, err := h.adminRepo.ListUsers(search, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users, "total": total, "page": page, "limit": limit})
}

// GetUser handles GET /admin/users/:id.
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	u, err := h.adminRepo.GetUserByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// ListWithdrawals handles GET /admin/withdrawals — back-office review queue.
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	status := c.DefaultQuery("status", domain.WithdrawalStatusPending)
	if status == "all" {
		status = ""
	}
	page, limit := parsePagination(c)
	list, total, err := h.withdrawalRepo.ListByStatus(status, limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}

// ProcessWithdrawal handles POST /admin/withdrawals/:id/process — transitions
// a pending withdrawal to COMPLETED or FAILED. Failures refund the user.
func (h *AdminHandler) ProcessWithdrawal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,oneof=COMPLETED FAILED"`
		Notes  string `json:"notes" binding:"max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.ledger.ProcessWithdrawal(uint(id), req.Status == domain.WithdrawalStatusCompleted, req.Notes, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrWithdrawalNotPending) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process withdrawal"})
		return
	}
	adminID := middleware.GetUserID(c)
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:    &adminID,
		Action:    "process_withdrawal " + w.Status,
		Resource:  "withdrawal",
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

// GetSettings handles GET /admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSetting handles PUT /admin/settings.
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	var req struct {
		Key   string `json:"key" binding:"required"`
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settingRepo.Set(req.Key, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type adRequest struct {
	ID              string          `json:"id" binding:"required,max=64"`
	Type            string          `json:"type"`
	Reward          decimal.Decimal `json:"reward"`
	DurationSeconds int             `json:"duration" binding:"min=1"`
	Description     string          `json:"description" binding:"max=255"`
	IsActive        *bool           `json:"is_active"`
}

// CreateAd handles POST /admin/ads.
func (h *AdminHandler) CreateAd(c *gin.Context) {
	var req adRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Reward.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reward must be positive"})
		return
	}
	a := &models.Ad{
		ID:              req.ID,
		Type:            req.Type,
		Reward:          req.Reward,
		DurationSeconds: req.DurationSeconds,
		Description:     req.Description,
		IsActive:        true,
	}
	if a.Type == "" {
		a.Type = "display"
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if err := h.adRepo.Create(a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create ad"})
		return
	}
	c.JSON(http.StatusCreated, a)
}

// UpdateAd handles PATCH /admin/ads/:id.
func (h *AdminHandler) UpdateAd(c *gin.Context) {
	a, err := h.adRepo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ad not found"})
		return
	}
	var req struct {
		Reward      *decimal.Decimal `json:"reward"`
		Description *string          `json:"description"`
		IsActive    *bool            `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Reward != nil && req.Reward.Sign() > 0 {
		a.Reward = *req.Reward
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if err := h.adRepo.Update(a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update ad"})
		return
	}
	c.JSON(http.StatusOK, a)
}

// CreateVideo handles POST /admin/videos.
func (h *AdminHandler) CreateVideo(c *gin.Context) {
	var req struct {
		Title           string          `json:"title" binding:"required,max=200"`
		Description     string          `json:"description" binding:"max=1000"`
		URL             string          `json:"url" binding:"required,max=512"`
		Thumbnail       string          `json:"thumbnail" binding:"max=512"`
		DurationSeconds int             `json:"duration" binding:"required,min=1"`
		Category        string          `json:"category" binding:"required,oneof=entertainment education news sports music gaming lifestyle other"`
		Reward          decimal.Decimal `json:"reward"`
		MinWatchPercent int             `json:"min_watch_percent" binding:"min=1,max=100"`
		IsFeatured      bool            `json:"is_featured"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Reward.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reward must be positive"})
		return
	}
	if req.MinWatchPercent == 0 {
		req.MinWatchPercent = 80
	}
	v := &models.Video{
		Title:           req.Title,
		Description:     req.Description,
		URL:             req.URL,
		Thumbnail:       req.Thumbnail,
		DurationSeconds: req.DurationSeconds,
		Category:        req.Category,
		Reward:          req.Reward,
		MinWatchPercent: req.MinWatchPercent,
		IsFeatured:      req.IsFeatured,
		IsActive:        true,
	}
	if err := h.videoRepo.Create(v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create video"})
		return
	}
	c.JSON(http.StatusCreated, v)
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
