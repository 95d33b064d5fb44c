package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"rentledger/internal/caching"
	"rentledger/internal/handlers"
	"rentledger/internal/jobs/background"
	"rentledger/internal/middleware"
	"rentledger/internal/repositories"
	"rentledger/internal/services"
	"rentledger/pkg/database"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret")
	}
	jwtExpire := 7 * 24 * time.Hour
	if expireStr := os.Getenv("JWT_EXPIRE_HOURS"); expireStr != "" {
		if hours, err := strconv.Atoi(expireStr); err == nil && hours > 0 {
			jwtExpire = time.Duration(hours) * time.Hour
		}
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	storageSvc, err := services.NewStorageService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}
	if err := storageSvc.EnsureBucketExists(context.Background(), "bill-documents"); err != nil {
		log.Printf("WARNING: could not ensure bill document bucket: %v", err)
	}

	// SMTP configuration
	smtpPort := os.Getenv("SMTP_PORT")
	if smtpPort == "" {
		smtpPort = "587"
	}
	mailer := services.NewSMTPMailer(services.MailerConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     smtpPort,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("EMAIL_FROM"),
	})

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	tenantRepo := repositories.NewTenantRepo(pool)
	billRepo := repositories.NewBillRepo(pool)

	// Cache
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Services
	tokenSvc := services.NewTokenService(jwtSecret, jwtExpire)
	authSvc := services.NewAuthService(userRepo, tokenSvc, mailer)
	tenantSvc := services.NewTenantService(tenantRepo)
	billSvc := services.NewBillService(billRepo, tenantRepo)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, cacheSvc)
	userHandlers := handlers.NewUserHandlers(authSvc)
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc, cacheSvc)
	billHandlers := handlers.NewBillHandlers(billSvc, storageSvc, cacheSvc)
	healthHandlers := handlers.NewHealthHandlers(pool)

	// Background jobs
	scheduler, err := background.NewJobScheduler(billRepo, cacheSvc)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	e := echo.New()

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	v1 := e.Group("/v1")

	// Authentication routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/logout", authHandlers.Logout)
	auth.POST("/forgot-password", authHandlers.ForgotPassword)
	auth.POST("/reset-password", authHandlers.ResetPassword)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.Authenticate(tokenSvc, userRepo))

	protected.GET("/user/profile", userHandlers.GetProfile)
	protected.PUT("/user/profile", userHandlers.UpdateProfile)

	protected.GET("/tenants", tenantHandlers.List)
	protected.POST("/tenants", tenantHandlers.Create)
	protected.GET("/tenants/stats", tenantHandlers.Stats)
	protected.GET("/tenants/:id", tenantHandlers.GetByID)
	protected.PUT("/tenants/:id", tenantHandlers.Update)
	protected.DELETE("/tenants/:id", tenantHandlers.Delete)

	protected.GET("/bills", billHandlers.List)
	protected.POST("/bills", billHandlers.Create)
	protected.GET("/bills/stats", billHandlers.Stats)
	protected.GET("/bills/:id", billHandlers.GetByID)
	protected.PUT("/bills/:id", billHandlers.Update)
	protected.PATCH("/bills/:id/status", billHandlers.UpdateStatus)
	protected.POST("/bills/:id/pdf", billHandlers.GeneratePDF)
	protected.DELETE("/bills/:id", billHandlers.Delete)

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("rentledger server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
