package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadverify/acadverify-api/internal/config"
	"github.com/acadverify/acadverify-api/internal/database"
	"github.com/acadverify/acadverify-api/internal/handler"
	"github.com/acadverify/acadverify-api/internal/identity"
	"github.com/acadverify/acadverify-api/internal/middleware"
	"github.com/acadverify/acadverify-api/internal/models"
	"github.com/acadverify/acadverify-api/internal/repository"
	"github.com/acadverify/acadverify-api/internal/router"
	"github.com/acadverify/acadverify-api/internal/service"
	"github.com/acadverify/acadverify-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Account{},
		&models.PlatformAdminProfile{},
		&models.UniversityAdminProfile{},
		&models.StudentProfile{},
		&models.EmployerProfile{},
		&models.University{},
		&models.AcademicProgram{},
		&models.GraduateRecord{},
		&models.AuditLogEntry{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient == nil {
		logger.Warn().Msg("redis url not set, dropdown caching disabled")
	} else {
		defer redisClient.Close()
	}

	provider, err := identity.NewClient(identity.Config{
		BaseURL:    cfg.IdentityBaseURL,
		ServiceKey: cfg.IdentityServiceKey,
		Timeout:    cfg.AdapterTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create identity client: %v", err)
	}

	store, err := storage.NewClient(storage.Config{
		Endpoint:  cfg.StorageEndpoint,
		Region:    cfg.StorageRegion,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
		CDNURL:    cfg.StorageCDNURL,
		Timeout:   cfg.AdapterTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create storage client: %v", err)
	}

	accountRepo := repository.NewAccountRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	universityRepo := repository.NewUniversityRepository(db)
	programRepo := repository.NewProgramRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.PlatformTokenTTL, cfg.SessionTokenTTL)
	auditService := service.NewAuditService(auditRepo, cfg.AuditRetentionDays, logger)
	authService := service.NewAuthService(provider, tokenService, accountRepo, profileRepo, auditService, "/reset-password", logger)
	accountService := service.NewAccountService(provider, accountRepo, profileRepo, universityRepo, auditService, logger)
	universityService := service.NewUniversityService(universityRepo, profileRepo, accountRepo, auditService, logger)
	programService := service.NewProgramService(programRepo, universityRepo, auditService, logger)
	recordService := service.NewRecordService(recordRepo, programRepo, universityRepo, store, auditService, cfg.UploadMaxMB, logger)
	verificationService := service.NewVerificationService(recordRepo, universityRepo, programRepo, recordService, redisClient, cfg.DropdownCacheTTL, logger)

	gate := middleware.NewGate(tokenService, accountRepo, profileRepo, logger)

	authHandler := handler.NewAuthHandler(authService, gate, logger)
	universityHandler := handler.NewAdminUniversityHandler(universityService, logger)
	accountHandler := handler.NewAdminAccountHandler(accountService, logger)
	recordHandler := handler.NewRecordHandler(recordService, logger)
	settingsHandler := handler.NewSettingsHandler(programService, logger)
	verificationHandler := handler.NewVerificationHandler(verificationService, logger)

	retention, err := service.NewRetentionScheduler(auditService, logger)
	if err != nil {
		log.Fatalf("failed to schedule retention job: %v", err)
	}
	retention.Start()
	defer retention.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxMB*2 + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         authHandler,
		UniversityHandler:   universityHandler,
		AccountHandler:      accountHandler,
		RecordHandler:       recordHandler,
		SettingsHandler:     settingsHandler,
		VerificationHandler: verificationHandler,
		Gate:                gate,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
