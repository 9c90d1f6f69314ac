package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"tapin/internal/app/tapin/config"
	"tapin/internal/app/tapin/handler"
	backendhttp "tapin/internal/app/tapin/infrastructure/http"
	"tapin/internal/app/tapin/infrastructure/messaging"
	"tapin/internal/app/tapin/processor"
	"tapin/internal/app/tapin/repository"
	"tapin/internal/app/tapin/service"
	"tapin/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("tapin", cfg.Log.Level)

	redisClient, err := connectRedis(cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")

	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Initialized Kafka producer")

	backendClient := backendhttp.NewBackendClient(cfg.Backend.BaseURL, cfg.Backend.TimeoutSec, cfg.Backend.RPS)
	credRepo := repository.NewRedisCredentialRepository(redisClient)

	notifier := service.NewNotifier()
	sessionService := service.NewSessionService(backendClient, credRepo, notifier)
	listingService := service.NewListingService(backendClient, kafkaProducer, sessionService, notifier)
	detailService := service.NewDetailService(backendClient, kafkaProducer, sessionService, notifier)
	viewService := service.NewViewService(notifier)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	// Восстановление сессии и первая выборка коллекции при старте;
	// ошибки backend нефатальны, коллекция останется пустой до сверки
	sessionService.Restore(startCtx)
	if err := listingService.Seed(startCtx, os.Getenv("INITIAL_QUERY")); err != nil {
		logger.Warn().Err(err).Msg("Initial listings fetch failed")
	}
	startCancel()

	go logChanges(notifier.Subscribe())

	reconcileCtx, reconcileCancel := context.WithCancel(context.Background())
	defer reconcileCancel()

	reconciler := processor.NewReconciler(listingService, detailService)
	if err := reconciler.Start(reconcileCtx, cfg.Cron.ReconcileSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start reconciler")
	}
	defer reconciler.Stop()

	authHandler := handler.NewAuthHandler(sessionService)
	appHandler := handler.NewAppHandler(sessionService, listingService, detailService, viewService)
	router := handler.SetupRoutes(authHandler, appHandler)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Tapin Gateway")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Tapin Gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Tapin Gateway stopped gracefully")
}

// logChanges подписывается на уведомления состояния и пишет их в debug-лог
func logChanges(changes <-chan service.Change) {
	for change := range changes {
		logger.Debug().Str("kind", change.Kind).Msg("State changed")
	}
}

func connectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	var err error
	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = client.Ping(ctx).Err()
		cancel()
		if err == nil {
			return client, nil
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to Redis, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}
