// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/filemart/internal/config"
	"github.com/javajoker/filemart/internal/handlers"
	"github.com/javajoker/filemart/internal/middleware"
	"github.com/javajoker/filemart/internal/services"
	"github.com/javajoker/filemart/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	activity := services.NewActivityRecorder(db)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AWS.AccessKeyID == "" {
		logrus.Warn("S3 credentials not set, delivery URLs point at LOCAL_FILES_BASE_URL")
	}

	authService := services.NewAuthService(db, cfg)
	accountService := services.NewAccountService(db)
	fileService := services.NewFileService(db, activity)
	entitlementService := services.NewEntitlementService(db)
	purchaseService := services.NewPurchaseService(db, cfg, activity)
	ratingService := services.NewRatingService(db, cfg, activity)
	ledgerService := services.NewLedgerService(db, activity)
	adminService := services.NewAdminService(db, activity)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	accountHandler := handlers.NewAccountHandler(accountService)
	fileHandler := handlers.NewFileHandler(fileService, entitlementService, storageService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	ratingHandler := handlers.NewRatingHandler(ratingService)
	adminHandler := handlers.NewAdminHandler(adminService, ledgerService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	limits := cfg.Server.RateLimit
	generalLimiter := middleware.NewRateLimiter(middleware.PerSecond(limits.GeneralPerSecond), limits.GeneralBurst)
	authLimiter := middleware.NewRateLimiter(middleware.PerMinute(limits.AuthPerMinute), limits.AuthPerMinute)
	ledgerLimiter := middleware.NewRateLimiter(middleware.PerMinute(limits.LedgerPerMinute), limits.LedgerBurst)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(generalLimiter.Middleware())
	r.Use(middleware.AuditContext())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(authLimiter.Middleware())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
		}

		// File routes
		files := v1.Group("/files")
		{
			files.GET("/:id", middleware.OptionalAuth(), fileHandler.GetFile)
			files.GET("/:id/access", middleware.OptionalAuth(), fileHandler.GetAccess)
			files.GET("/:id/preview", middleware.OptionalAuth(), fileHandler.GetPreview)
			files.GET("/:id/reviews", ratingHandler.ListReviews)

			// Authenticated routes
			protected := files.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", fileHandler.CreateFile)
				protected.GET("/:id/download", fileHandler.GetDownload)
				protected.PUT("/:id/pricing", fileHandler.UpdatePricing)
				protected.POST("/:id/purchase", ledgerLimiter.Middleware(), purchaseHandler.PurchaseFile)
				protected.POST("/:id/ratings", ledgerLimiter.Middleware(), ratingHandler.SubmitRating)
			}
		}

		// Account routes
		account := v1.Group("/account")
		account.Use(middleware.AuthRequired())
		{
			account.GET("/me", accountHandler.GetProfile)
			account.GET("/balance", accountHandler.GetBalance)
			account.GET("/ledger", accountHandler.GetLedger)
			account.GET("/purchases", accountHandler.GetPurchases)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
			admin.GET("/purchases", adminHandler.GetPurchases)
			admin.POST("/purchases/:id/refund", adminHandler.RefundPurchase)
			admin.POST("/accounts/:id/adjust", adminHandler.AdjustBalance)
			admin.PUT("/files/:id/status", adminHandler.UpdateFileStatus)
			admin.PUT("/reviews/:id/status", adminHandler.UpdateReviewStatus)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
		}
	}

	return r, nil
}
