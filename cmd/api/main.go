package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mpgepmc/backend/internal/config"
	"github.com/mpgepmc/backend/internal/handlers"
	"github.com/mpgepmc/backend/internal/middleware"
	"github.com/mpgepmc/backend/internal/models"
	"github.com/mpgepmc/backend/internal/services"
	"github.com/mpgepmc/backend/internal/session"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.New()

	// Initialize database
	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	// Initialize services
	emailService := services.NewEmailService(cfg)
	mobileRuleService := services.NewMobileRuleService(db)
	otpService := services.NewOTPService(db, emailService, cfg)
	authService := services.NewAuthService(db, redisClient, cfg, otpService, mobileRuleService)
	userService := services.NewUserService(db)
	resetService := services.NewPasswordResetService(db, emailService, cfg)
	liveValidationService := services.NewLiveValidationService(userService, mobileRuleService, cfg)
	sessionStore := session.NewRedisStore(redisClient, cfg.SessionTTL)

	// Seed the mobile validation rule table and the staff account
	if err := mobileRuleService.SeedDefaults(); err != nil {
		log.Printf("Failed to seed mobile validation rules: %v", err)
	}
	if err := authService.CreateDefaultSuperuser(); err != nil {
		log.Printf("Failed to create default superuser: %v", err)
	}

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg))
	router.Use(middleware.Session(cfg))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, sessionStore)
	otpHandler := handlers.NewOTPHandler(otpService, userService, sessionStore)
	passwordHandler := handlers.NewPasswordHandler(resetService, userService)
	validationHandler := handlers.NewValidationHandler(liveValidationService)
	userHandler := handlers.NewUserHandler(userService)
	adminHandler := handlers.NewAdminHandler(mobileRuleService, userService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "mpgepmc accounts", "status": "ok"})
	})

	// Catch-all OPTIONS handler for CORS preflight requests
	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	// Credential endpoints carry a stricter per-IP limit
	credential := router.Group("")
	credential.Use(middleware.CredentialRateLimit(redisClient, cfg))
	{
		credential.POST("/signup", authHandler.Signup)
		credential.POST("/signin", authHandler.SignIn)
		credential.POST("/forgot-password", passwordHandler.Forgot)
	}

	// Verification flow (session-bound, unauthenticated)
	router.GET("/verify-otp", otpHandler.VerifyStatus)
	router.POST("/verify-otp", otpHandler.Verify)
	router.POST("/resend-otp", otpHandler.Resend)

	// Password reset links
	router.GET("/reset-password/:uid/:token", passwordHandler.CheckResetLink)
	router.POST("/reset-password/:uid/:token", passwordHandler.Reset)

	// Token refresh
	router.POST("/refresh-token", authHandler.RefreshToken)

	// Live field validation
	router.POST("/ajax-validate", validationHandler.Validate)

	// Authenticated routes
	authenticated := router.Group("")
	authenticated.Use(middleware.Auth(authService))
	{
		authenticated.GET("/home", userHandler.Home)
		authenticated.POST("/logout", authHandler.Logout)
		authenticated.POST("/change-password", passwordHandler.Change)
	}

	// Admin routes (staff only)
	admin := router.Group("/admin")
	admin.Use(middleware.Auth(authService))
	admin.Use(middleware.StaffOnly(userService))
	{
		admin.GET("/mobile-rules", adminHandler.ListMobileRules)
		admin.POST("/mobile-rules", adminHandler.CreateMobileRule)
		admin.PUT("/mobile-rules/:id", adminHandler.UpdateMobileRule)
		admin.DELETE("/mobile-rules/:id", adminHandler.DeleteMobileRule)
		admin.GET("/users", adminHandler.ListUsers)
	}

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
