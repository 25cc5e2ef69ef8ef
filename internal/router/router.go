package router

import (
	"time"

	"earnly/config"
	"earnly/internal/handler"
	"earnly/internal/middleware"
	"earnly/internal/repository"
	"earnly/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Skip gin.Logger() to reduce log noise; use gin.Default() if you need request logging
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEarnEventRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	adRepo := repository.NewAdRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	ledger := service.NewLedgerService(db, cfg.Rewards, userRepo, eventRepo, withdrawalRepo, adRepo, videoRepo, settingRepo)
	referralSvc := service.NewReferralService(cfg.Rewards, userRepo, ledger, settingRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, referralSvc, auditRepo)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc, referralSvc, auditRepo)
	adHandler := handler.NewAdHandler(adRepo, eventRepo, ledger)
	videoHandler := handler.NewVideoHandler(videoRepo, ledger)
	rewardHandler := handler.NewRewardHandler(ledger, referralSvc, withdrawalRepo)
	userHandler := handler.NewUserHandler(userRepo, eventRepo, withdrawalRepo, ledger, authSvc, auditRepo)
	adminHandler := handler.NewAdminHandler(adminRepo, settingRepo, withdrawalRepo, adRepo, videoRepo, auditRepo, authSvc, ledger)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authMw, authHandler.Logout)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		ads := api.Group("/ads")
		ads.Use(authMw)
		{
			ads.GET("", adHandler.List)
			ads.POST("/:id/watch", adHandler.Watch)
			ads.GET("/history/watched", adHandler.History)
		}

		videos := api.Group("/videos")
		videos.Use(authMw)
		{
			videos.GET("", videoHandler.List)
			videos.POST("/:id/watch", videoHandler.Watch)
		}

		rewards := api.Group("/rewards")
		rewards.Use(authMw)
		{
			rewards.GET("/stats", rewardHandler.Stats)
			rewards.GET("/history", rewardHandler.History)
			rewards.GET("/chart/daily", rewardHandler.DailyChart)
			rewards.POST("/withdraw", rewardHandler.Withdraw)
			rewards.GET("/withdrawals", rewardHandler.Withdrawals)
			rewards.GET("/withdraw/eligibility", rewardHandler.Eligibility)
			rewards.GET("/withdraw/methods", rewardHandler.Methods)
			rewards.GET("/referrals", rewardHandler.Referrals)
		}

		me := api.Group("/users/me")
		me.Use(authMw)
		{
			me.GET("", userHandler.GetProfile)
			me.PATCH("", userHandler.UpdateProfile)
			me.GET("/stats", userHandler.Stats)
			me.GET("/watch-history", userHandler.WatchHistory)
			me.GET("/achievements", userHandler.Achievements)
			me.POST("/deactivate", userHandler.Deactivate)
			me.DELETE("", userHandler.Delete)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)

			protected := admin.Group("")
			protected.Use(authMw, middleware.AdminRequired())
			{
				protected.GET("/dashboard", adminHandler.Dashboard)
				protected.GET("/users", adminHandler.ListUsers)
				protected.GET("/users/:id", adminHandler.GetUser)
				protected.GET("/withdrawals", adminHandler.ListWithdrawals)
				protected.POST("/withdrawals/:id/process", adminHandler.ProcessWithdrawal)
				protected.GET("/settings", adminHandler.GetSettings)
				protected.PUT("/settings", adminHandler.UpdateSetting)
				protected.POST("/ads", adminHandler.CreateAd)
				protected.PATCH("/ads/:id", adminHandler.UpdateAd)
				protected.POST("/videos", adminHandler.CreateVideo)
			}
		}
	}

	return r
}
