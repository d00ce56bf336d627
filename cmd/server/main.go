package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kodihomes/rental-platform/internal/api"
	"github.com/kodihomes/rental-platform/internal/api/handler"
	"github.com/kodihomes/rental-platform/internal/core/service"
	"github.com/kodihomes/rental-platform/internal/infrastructure/config"
	"github.com/kodihomes/rental-platform/internal/infrastructure/db/mongo"
	"github.com/kodihomes/rental-platform/internal/infrastructure/db/postgres"
	"github.com/kodihomes/rental-platform/internal/infrastructure/db/redis"
	"github.com/kodihomes/rental-platform/internal/infrastructure/queue"
	"github.com/kodihomes/rental-platform/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "rental-platform",
	})

	// 1. Backends
	sqlDB, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer sqlDB.Close()

	mongoClient, mongoDB, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	// 2. Adapters
	users := postgres.NewUserDirectory(sqlDB, cfg.Postgres.QueryTimeout)
	bookingRepo := postgres.NewBookingRepository(sqlDB, cfg.Booking.RPC, cfg.Postgres.QueryTimeout, logger.Component("postgres"))
	grantRepo := mongo.NewGrantRepository(mongoDB)
	if err := grantRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure grant indexes")
	}
	capStore := redis.NewCapabilityStore(rdb)
	drafts := redis.NewDraftStore(rdb, cfg.Booking.DraftTTL)

	// 3. Services
	issuer := service.NewCapabilityIssuer(cfg.Capability.Secret, cfg.Capability.TTL)
	resolver := service.NewRoleResolver(users, grantRepo, capStore, issuer, logger.Component("resolver"))
	guard := service.NewGuard(resolver, service.NewAccessMatrix(logger.Component("matrix")), logger.Component("guard"))

	grants := service.NewGrantService(grantRepo, issuer, logger.Component("grants"))
	if err := grants.Bootstrap(ctx, cfg.Bootstrap.AdminEmails, cfg.Bootstrap.TenantIDs); err != nil {
		log.Error().Err(err).Msg("failed to seed bootstrap grants")
	}

	dispatcher := queue.NewDispatcher(cfg.Payment.Workers, logger.Component("dispatcher"))
	bookings := service.NewBookingService(
		drafts,
		bookingRepo,
		users,
		service.NewPaymentSimulator(cfg.Payment.StepDelay, logger.Component("payments")),
		dispatcher,
		cfg.Booking.DefaultMonthlyRate,
		logger.Component("bookings"),
	)
	dispatcher.Start(ctx, bookings)

	// 4. HTTP
	e := api.NewRouter(api.Dependencies{
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
		Guard:     guard,
		Bookings:  bookings,
		Grants:    grants,
		Health: map[string]handler.Pinger{
			"postgres": handler.PingFunc(sqlDB.PingContext),
			"mongodb":  handler.PingFunc(func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }),
			"redis":    handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-sigChan
	log.Info().Msg("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	cancel() // stop payment workers
	log.Info().Msg("server stopped")
}
