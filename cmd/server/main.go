package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"echoforge.backend/internal/config"
	"echoforge.backend/internal/infrastructure/detection"
	"echoforge.backend/internal/infrastructure/jobs"
	"echoforge.backend/internal/infrastructure/models"
	"echoforge.backend/internal/infrastructure/notify"
	"echoforge.backend/internal/infrastructure/repositories"
	"echoforge.backend/internal/interfaces/http/handlers"
	"echoforge.backend/internal/interfaces/http/middleware"
	"echoforge.backend/internal/usecases"
	"echoforge.backend/pkg/jwt"
	"echoforge.backend/pkg/logger"
	"echoforge.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	newSessionStore = redis.NewSessionStore
	runServer       = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	defer func() { _ = logger.Sync() }()
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
		if err := db.AutoMigrate(
			&models.User{},
			&models.Payment{},
			&models.Listing{},
			&models.Order{},
			&models.LicenseKey{},
			&models.UsageRecord{},
			&models.Analysis{},
		); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	listingRepo := repositories.NewListingRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	licenseRepo := repositories.NewLicenseKeyRepository(db)
	usageRepo := repositories.NewUsageRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize Session Store
	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	// Initialize infrastructure clients
	detector := detection.NewClient(cfg.Detection.BaseURL, cfg.Detection.Timeout)
	var mailer usecases.Mailer
	if cfg.Mail.Host != "" {
		mailer = notify.NewSMTPMailer(cfg.Mail)
	} else {
		mailer = notify.NopMailer{}
	}

	// Initialize usecases
	walletRegistry := usecases.NewWalletRegistry(cfg.Wallets)
	licenseIssuer := usecases.NewLicenseIssuer(licenseRepo)
	reconcilerUsecase := usecases.NewReconcilerUsecase(uow, userRepo, orderRepo, listingRepo, usageRepo, licenseIssuer, mailer)
	authUsecase := usecases.NewAuthUsecase(userRepo, jwtService)
	paymentUsecase := usecases.NewPaymentUsecase(uow, paymentRepo, walletRegistry, reconcilerUsecase)
	webhookUsecase := usecases.NewWebhookUsecase(cfg.Providers, uow, paymentRepo, reconcilerUsecase)
	marketplaceUsecase := usecases.NewMarketplaceUsecase(listingRepo, orderRepo, licenseRepo)
	ledgerUsecase := usecases.NewLedgerUsecase(uow, userRepo, usageRepo)
	analysisUsecase := usecases.NewAnalysisUsecase(userRepo, analysisRepo, ledgerUsecase, detector)
	adminUsecase := usecases.NewAdminUsecase(userRepo, paymentRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authUsecase, sessionStore)
	paymentHandler := handlers.NewPaymentHandler(paymentUsecase, walletRegistry)
	webhookHandler := handlers.NewWebhookHandler(webhookUsecase)
	marketplaceHandler := handlers.NewMarketplaceHandler(marketplaceUsecase)
	analysisHandler := handlers.NewAnalysisHandler(analysisUsecase, ledgerUsecase)
	adminHandler := handlers.NewAdminHandler(paymentUsecase, adminUsecase)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expiryJob := jobs.NewPaymentExpiryJob(paymentRepo)
	go expiryJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:        authHandler,
		paymentHandler:     paymentHandler,
		webhookHandler:     webhookHandler,
		marketplaceHandler: marketplaceHandler,
		analysisHandler:    analysisHandler,
		adminHandler:       adminHandler,
		authMiddleware:     middleware.AuthMiddlewareWithSessions(jwtService, sessionStore),
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		expiryJob.Stop()
		cancel()
	}()

	// Start server
	log.Printf("🚀 EchoForge Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
