package router

import (
	"time"

	"gavel/config"
	"gavel/internal/domain"
	"gavel/internal/handler"
	"gavel/internal/middleware"
	"gavel/internal/repository"
	"gavel/internal/service"
	"gavel/internal/ws"
	"gavel/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps carries everything the HTTP layer is wired from.
type Deps struct {
	Cfg           *config.Config
	DB            *gorm.DB
	Redis         *redis.Client
	Cloud         cloudinary.Client
	Hub           *ws.Hub
	SettlementSvc *service.SettlementService
	NotifSvc      *service.NotificationService
}

func Setup(d Deps) *gin.Engine {
	if d.Cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	db := repository.NewDB(d.DB)
	adminRepo := repository.NewAdminRepository(d.DB)

	// Services
	authSvc := service.NewAuthService(d.Cfg, db, d.Redis)
	auctionSvc := service.NewAuctionService(db)
	biddingSvc := service.NewBiddingService(db, d.NotifSvc)
	walletSvc := service.NewWalletService(db)
	adminSvc := service.NewAdminService(db, d.NotifSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	auctionHandler := handler.NewAuctionHandler(auctionSvc, d.Cloud, d.Redis)
	bidHandler := handler.NewBidHandler(biddingSvc, d.Redis)
	walletHandler := handler.NewWalletHandler(walletSvc)
	adminHandler := handler.NewAdminHandler(adminSvc, d.SettlementSvc, adminRepo)
	notificationHandler := handler.NewNotificationHandler(d.NotifSvc)

	authMw := middleware.AuthRequired(&d.Cfg.JWT, d.Redis)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authMw, authHandler.Logout)
		}

		auctions := api.Group("/auctions")
		{
			auctions.GET("", auctionHandler.List)
			auctions.GET("/:id", auctionHandler.Get)
			auctions.GET("/:id/bids", bidHandler.List)

			auctions.POST("", authMw, auctionHandler.Create)
			auctions.PATCH("/:id", authMw, auctionHandler.Update)
			auctions.POST("/:id/pause", authMw, auctionHandler.Pause)
			auctions.POST("/:id/resume", authMw, auctionHandler.Resume)
			auctions.DELETE("/:id", authMw, auctionHandler.Delete)
			auctions.POST("/:id/images", authMw, auctionHandler.UploadImage)
			auctions.POST("/:id/bids", authMw, bidHandler.Place)
		}

		wallet := api.Group("/wallet")
		wallet.Use(authMw)
		{
			wallet.GET("", walletHandler.GetBalance)
			wallet.POST("/deposit", walletHandler.Deposit)
			wallet.GET("/transactions", walletHandler.History)
		}

		notifications := api.Group("/notifications")
		notifications.Use(authMw)
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
		}
		api.GET("/ws/notifications", ws.UpgradeNotifications(&d.Cfg.JWT, d.Hub))

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.RequireRole(domain.RoleAdmin))
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/transactions", adminHandler.ListTransactions)
			admin.POST("/auctions/:id/force-close", adminHandler.ForceClose)
			admin.POST("/users/:id/ban", adminHandler.BanUser)
			admin.POST("/settlement/run", adminHandler.RunSettlement)
		}
	}

	return r
}
