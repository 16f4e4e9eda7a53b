package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
	"txapp-service/internal/infrastructure/config"
	"txapp-service/internal/infrastructure/oauth"
	"txapp-service/internal/infrastructure/persistence"
	"txapp-service/internal/infrastructure/realtime"
	"txapp-service/internal/interface/gmail"
	"txapp-service/internal/interface/httpapi"
	txRepo "txapp-service/internal/interface/repository"
	"txapp-service/internal/usecase"
	"txapp-service/pkg/logger"
	"txapp-service/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting TXApp Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics("txapp", prometheus.DefaultRegisterer)

	// Set up PostgreSQL connection
	log.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgres(cfg.PostgresDSN, cfg.PostgresDebug)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	if err := txRepo.Migrate(gormDB); err != nil {
		log.Fatal("Failed to migrate PostgreSQL schema", "error", err)
	}

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, mongoDB, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	// Set up repositories
	shiftRepo := txRepo.NewGormShiftRepository(gormDB)
	tripRepo := txRepo.NewGormTripRepository(gormDB)
	expenseRepo := txRepo.NewGormExpenseRepository(gormDB)
	userRepo := txRepo.NewGormUserRepository(gormDB)
	activityRepo := txRepo.NewMongoActivityLogRepository(ctx, mongoDB, cfg.ActivityLogLimit, log)
	notificationRepo := txRepo.NewMongoNotificationRepository(ctx, mongoDB)

	// Redis is optional; it shares events and driver locks across instances
	var (
		bridge *realtime.RedisBridge
		locker repository.DriverLocker
	)
	if cfg.RedisAddr != "" {
		log.Info("Connecting to Redis", "addr", cfg.RedisAddr)
		redisClient, lockClient, err := persistence.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatal("Failed to connect to Redis", "error", err)
		}
		defer redisClient.Close()
		bridge = realtime.NewRedisBridge(redisClient, realtime.DefaultChannel, log)
		locker = txRepo.NewRedisDriverLocker(lockClient, log)
	}
	hub := realtime.NewHub(activityRepo, bridge, log)

	// Set up Gmail notifier
	var notifier repository.VehicleChangeNotifier = gmail.NopNotifier{}
	gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRefreshToken, "", log)
	if gmailOAuth.Configured() && len(cfg.AdminNotifyEmails) > 0 {
		gmailService, err := gmail.NewGmailService(ctx, gmailOAuth.TokenSource(ctx), cfg.GmailSender, cfg.AdminNotifyEmails, log)
		if err != nil {
			log.Fatal("Failed to create Gmail service", "error", err)
		}
		notifier = gmailService
	} else {
		log.Info("Gmail not configured, vehicle change mails disabled")
	}

	// Set up usecases
	validate := validator.New()
	oversight := usecase.NewOversightAggregator(shiftRepo, tripRepo, expenseRepo, activityRepo, cfg.ActivityFeedSize, m, log)
	hub.SubscribeAll(oversight.OnChangeEvent)
	authService := usecase.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenLifespan, log)

	services := httpapi.Services{
		Auth:           authService,
		Ledger:         usecase.NewShiftLedger(shiftRepo, tripRepo, hub, notificationRepo, notifier, locker, m, log),
		Trips:          usecase.NewTripRecorder(shiftRepo, tripRepo, hub, m, log),
		Expenses:       usecase.NewExpenseRecorder(shiftRepo, expenseRepo, hub, m, log),
		Oversight:      oversight,
		Reports:        usecase.NewReportBuilder(shiftRepo, tripRepo, expenseRepo, log),
		Inbox:          usecase.NewNotificationInbox(notificationRepo, log),
		Vehicles:       usecase.NewCatalogService[entity.Vehicle]("vehicle", txRepo.NewGormCatalogRepository[entity.Vehicle](gormDB), validate, log),
		Clients:        usecase.NewCatalogService[entity.Client]("client", txRepo.NewGormCatalogRepository[entity.Client](gormDB), validate, log),
		PaymentMethods: usecase.NewCatalogService[entity.PaymentMethod]("payment_method", txRepo.NewGormCatalogRepository[entity.PaymentMethod](gormDB), validate, log),
		Drivers:        usecase.NewCatalogService[entity.Driver]("driver", txRepo.NewGormCatalogRepository[entity.Driver](gormDB), validate, log),
	}

	// Start the redis subscriber and the oversight refresher
	if bridge != nil {
		go func() {
			if err := bridge.Run(ctx, hub.Dispatch); err != nil {
				log.Error("Redis bridge stopped", "error", err)
			}
		}()
	}
	go oversight.Run(ctx, cfg.OversightRefreshInterval)

	// Set up HTTP server
	gin.SetMode(gin.ReleaseMode)
	feed := httpapi.NewLiveFeed(oversight, authService, cfg.CORSOrigins, log)
	router := httpapi.NewRouter(
		httpapi.RouterConfig{CORSOrigins: cfg.CORSOrigins},
		httpapi.NewHandler(services, log),
		feed,
		authService,
		log,
	)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("TXApp Service stopped")
}
