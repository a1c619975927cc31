package router

import (
	"time"

	"sygil/config"
	"sygil/internal/domain"
	"sygil/internal/handler"
	"sygil/internal/middleware"
	"sygil/internal/repository"
	"sygil/internal/service"
	"sygil/internal/ws"
	"sygil/pkg/cloudinary"
	"sygil/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	pointRepo := repository.NewPointRepository(db)
	vaultRepo := repository.NewVaultRepository(db)
	redemptionRepo := repository.NewRedemptionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	followRepo := repository.NewFollowRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	eventHub := ws.NewEventHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	notifSvc := service.NewNotificationService(notificationRepo)
	pointsSvc := service.NewPointsService(pointRepo, userRepo, notifSvc, cfg.Sweep.PointExpiry)
	redemptionSvc := service.NewRedemptionService(redemptionRepo, vaultRepo, pointsSvc, notifSvc, userRepo)
	sweepSvc := service.NewSweepService(redemptionRepo, pointsSvc, notifSvc, cfg.Sweep.RedemptionMaxAge)
	discountSvc := service.NewDiscountService(discountRepo, userRepo)

	providers := map[string]payment.Provider{
		domain.ProviderPayPal:   payment.NewPayPalProvider(cfg.PayPal.BaseURL, cfg.PayPal.ClientID, cfg.PayPal.ClientSecret),
		domain.ProviderRazorpay: payment.NewRazorpayProvider(cfg.Razorpay.BaseURL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret),
	}
	if cfg.Server.Env != "production" {
		providers[domain.ProviderStub] = &payment.StubProvider{}
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	meHandler := handler.NewMeHandler(userRepo, pointRepo)
	vaultHandler := handler.NewVaultHandler(vaultRepo, userRepo)
	redemptionHandler := handler.NewRedemptionHandler(redemptionSvc, redemptionRepo)
	paymentHandler := handler.NewPaymentHandler(paymentRepo, userRepo, pointsSvc, notifSvc, providers, eventHub)
	pointsHandler := handler.NewPointsHandler(pointsSvc, pointRepo, adminRepo)
	discountHandler := handler.NewDiscountHandler(discountSvc)
	followHandler := handler.NewFollowHandler(followRepo, userRepo, notifSvc)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	uploadHandler := handler.NewUploadHandler(cloud, userRepo)
	sweepHandler := handler.NewSweepHandler(sweepSvc, &cfg.Admin)

	authMw := middleware.AuthRequired(&cfg.JWT)
	creatorMw := middleware.CreatorRequired()
	adminMw := middleware.AdminRequired(&cfg.Admin)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/verify/otp", authMw, authHandler.IssueOTP)
			authGroup.POST("/verify/confirm", authMw, authHandler.ConfirmOTP)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", meHandler.GetProfile)
			me.PATCH("/profile", meHandler.UpdateProfile)
			me.GET("/onboarding", meHandler.GetOnboarding)
			me.PATCH("/payout", meHandler.SetPayout)
			me.GET("/transactions", meHandler.GetTransactions)
			me.GET("/redemptions", redemptionHandler.ListMine)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			me.GET("/following", followHandler.ListFollowing)
			me.POST("/avatar", uploadHandler.UploadAvatar)
		}

		api.GET("/creators/:creator_id/vault", vaultHandler.List)
		api.GET("/creators/:creator_id/leaderboard", paymentHandler.Leaderboard)
		api.POST("/creators/:creator_id/follow", authMw, followHandler.Follow)
		api.DELETE("/creators/:creator_id/follow", authMw, followHandler.Unfollow)

		creator := api.Group("/creator")
		creator.Use(authMw, creatorMw)
		{
			creator.POST("/vault", vaultHandler.Create)
			creator.PATCH("/vault/:id", vaultHandler.Update)
			creator.POST("/vault/upload", uploadHandler.UploadVaultFile)
			creator.GET("/redemptions", redemptionHandler.ListForCreator)
			creator.POST("/redemptions/:id/fulfil", redemptionHandler.Fulfil)
			creator.POST("/redemptions/:id/reject", redemptionHandler.Reject)
			creator.POST("/event/start", meHandler.StartEvent)
			creator.POST("/event/stop", meHandler.StopEvent)
			creator.GET("/payments", paymentHandler.ListForCreator)
			creator.GET("/followers", followHandler.ListFollowers)
		}

		api.POST("/redemptions", authMw, redemptionHandler.Create)
		api.POST("/payments/orders", authMw, paymentHandler.CreateOrder)
		api.POST("/payments/orders/:order_id/capture", authMw, paymentHandler.Capture)
		api.POST("/discounts/apply", authMw, discountHandler.Apply)

		admin := api.Group("/admin")
		admin.Use(authMw, adminMw)
		{
			admin.POST("/points/bonus", pointsHandler.GrantBonus)
			admin.GET("/stats", pointsHandler.Stats)
			admin.GET("/reconcile/:user", pointsHandler.Reconcile)
		}

		api.POST("/internal/sweep", sweepHandler.Trigger)
	}

	r.GET("/ws/events", ws.UpgradeEventWS(eventHub))

	return r
}
