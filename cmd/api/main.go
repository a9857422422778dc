package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-trades-backend/config"
	_ "go-trades-backend/docs" // Important for Swagger
	"go-trades-backend/internal/delivery/http/middleware"
	v1 "go-trades-backend/internal/delivery/http/v1"
	"go-trades-backend/internal/domain"
	"go-trades-backend/internal/migrate"
	"go-trades-backend/internal/repository/cache"
	"go-trades-backend/internal/repository/postgres"
	"go-trades-backend/internal/scheduler"
	"go-trades-backend/internal/usecase"
	"go-trades-backend/pkg/auth"
	"go-trades-backend/pkg/database"
	"go-trades-backend/pkg/email"
	"go-trades-backend/pkg/logger"
	"go-trades-backend/pkg/push"
	redisclient "go-trades-backend/pkg/redis"
	"go-trades-backend/pkg/security"
	"go-trades-backend/pkg/security/antivirus"
	"go-trades-backend/pkg/storage"
	"go-trades-backend/pkg/validation"

	"golang.org/x/sync/errgroup"
)

const dailyUploadLimit = 100

// @title           Trades Marketplace API
// @version         1.0
// @description     Jobs, profiles, marketplace listings and opportunities for skilled trades.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting trades backend", "port", cfg.Port, "env", cfg.Environment)
	validation.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	poolCfg := database.DefaultPoolConfig()
	poolCfg.SimpleProtocol = cfg.DBSimpleProtocol
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, poolCfg)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.AutoMigrate {
		if err := migrate.Run(ctx, dbPool); err != nil {
			logger.Log.Error("Migration failed", "error", err)
			os.Exit(1)
		}
	}

	// 4. Setup Redis (optional)
	rdb, err := redisclient.Connect(ctx, redisclient.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	switch {
	case errors.Is(err, redisclient.ErrNotConfigured):
		logger.Log.Warn("Redis not configured - using in-memory rate limiting")
	case err != nil:
		logger.Log.Warn("Redis unavailable - using in-memory rate limiting", "error", err)
		rdb = nil
	default:
		defer rdb.Close()
	}

	secLog := security.NewSecurityLogger("go-trades-backend", cfg.Environment)
	defer func() { _ = secLog.Sync() }()
	eventRepo := security.NewSecurityEventRepository(dbPool)
	secLog.SetPersistFunc(eventRepo.PersistEvent)

	// 5. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	resetRepo := postgres.NewPasswordResetRepository(dbPool)
	profileRepo := postgres.NewProfileRepository(dbPool)
	apprenticeRepo := postgres.NewApprenticeProfileRepository(dbPool)
	catalogRepo := postgres.NewCatalogRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	reviewRepo := postgres.NewReviewRepository(dbPool)
	listingRepo := postgres.NewListingRepository(dbPool)
	opportunityRepo := postgres.NewOpportunityRepository(dbPool)
	notificationRepo := postgres.NewNotificationRepository(dbPool)

	// 6. Setup external services
	emailService := email.NewEmailService(cfg)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	files := newFileStorage(ctx, cfg)
	pusher := newPushSender(ctx, cfg)
	scanner := newScanner(ctx, cfg)

	trackerCfg := security.DefaultLoginTrackerConfig()
	trackerCfg.MaxAttempts = cfg.FailedLoginMaxAttempts
	trackerCfg.BlockDuration = time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute
	loginTracker := security.NewLoginTracker(rdb, trackerCfg, secLog)
	uploadLimiter := security.NewUploadLimiter(rdb, dailyUploadLimit)

	// 7. Setup UseCases
	notificationUC := usecase.NewNotificationUsecase(notificationRepo, userRepo, pusher)
	authUC := usecase.NewAuthUsecase(userRepo, resetRepo, tokens, emailService, loginTracker, secLog, usecase.AuthConfig{
		OTPTTL:        cfg.OTPTTL,
		ResetTokenTTL: cfg.ResetTokenTTL,
	})

	var redisPing usecase.Pinger
	if rdb != nil {
		redisPing = func(ctx context.Context) error { return redisclient.HealthCheck(ctx, rdb) }
	}

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:              authUC,
		UserUC:              usecase.NewUserUsecase(userRepo, files, uploadLimiter, scanner),
		ProfileUC:           usecase.NewProfileUsecase(userRepo, profileRepo, catalogRepo, files, uploadLimiter, scanner),
		ApprenticeProfileUC: usecase.NewApprenticeProfileUsecase(userRepo, apprenticeRepo, files, uploadLimiter, scanner),
		JobUC:               usecase.NewJobUsecase(jobRepo, catalogRepo, reviewRepo),
		ReviewUC:            usecase.NewReviewUsecase(reviewRepo, jobRepo, userRepo, notificationUC),
		ListingUC:           usecase.NewListingUsecase(listingRepo, reviewRepo, files, uploadLimiter, scanner),
		OpportunityUC:       usecase.NewOpportunityUsecase(opportunityRepo),
		NotificationUC:      notificationUC,
		CatalogUC:           usecase.NewCatalogUsecase(catalogRepo, cache.NewRedisCache(rdb)),
		ContactUC:           usecase.NewContactUsecase(emailService),
		HealthUC: usecase.NewHealthUsecase(map[string]usecase.Pinger{
			"database": dbPool.Ping,
			"redis":    redisPing,
		}),
		Tokens:      tokens,
		RateLimiter: middleware.NewRateLimiter(rdb, secLog),
		Config:      cfg,
	})

	// 9. Start Server and housekeeping
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	housekeeping := scheduler.New(cfg.HousekeepingSpec, resetRepo, notificationRepo, eventRepo)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := housekeeping.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		housekeeping.Stop()
		return nil
	})
	g.Go(func() error {
		// Graceful Shutdown
		<-gctx.Done()
		logger.Log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Log.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Log.Info("Server exiting")
}

func newFileStorage(ctx context.Context, cfg *config.Config) domain.FileStorage {
	if cfg.S3Bucket == "" {
		logger.Log.Warn("S3_BUCKET not set - uploads disabled")
		return storage.Disabled{}
	}
	s3, err := storage.NewS3Storage(ctx, storage.Config{
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Endpoint:        cfg.S3Endpoint,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	})
	if err != nil {
		logger.Log.Error("Failed to init S3 storage - uploads disabled", "error", err)
		return storage.Disabled{}
	}
	return s3
}

func newPushSender(ctx context.Context, cfg *config.Config) domain.PushSender {
	if cfg.FCMCredentialsFile == "" {
		return push.Noop{}
	}
	client, err := push.NewFCMClient(ctx, cfg.FCMCredentialsFile)
	if err != nil {
		logger.Log.Warn("FCM unavailable - push disabled", "error", err)
		return push.Noop{}
	}
	return client
}

func newScanner(ctx context.Context, cfg *config.Config) antivirus.Scanner {
	if cfg.ClamAVAddress == "" {
		logger.Log.Warn("CLAMAV_ADDRESS not set - uploads are not scanned")
		return antivirus.NewNoOpScanner()
	}
	clam := antivirus.NewClamAVScanner(cfg.ClamAVAddress, cfg.ClamAVTimeout)
	if !clam.Available(ctx) {
		logger.Log.Warn("clamd not reachable yet - uploads fail until it is", "address", cfg.ClamAVAddress)
	}
	return antivirus.NewChainScanner(clam)
}
