package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/app/router"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/cleanup"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/config"
	mongodb "github.com/KelluuhShit/loan-mpesa/internal/pkg/db/mongo"
	redisdb "github.com/KelluuhShit/loan-mpesa/internal/pkg/db/redis"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/downstream"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/gcs"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/kafka"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/log_messages"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"
	tracing "github.com/KelluuhShit/loan-mpesa/internal/pkg/otel"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/pubsub"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/store/impl/eligibility_submissions"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/store/impl/fee_transactions"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/store/impl/loans"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/store/repository"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/utils/worker"
	"github.com/KelluuhShit/loan-mpesa/internal/service/eligibility"
	"github.com/KelluuhShit/loan-mpesa/internal/service/loan"
	"github.com/KelluuhShit/loan-mpesa/internal/service/payment"
	"github.com/KelluuhShit/loan-mpesa/internal/service/submission"

	gcppubsub "cloud.google.com/go/pubsub"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 30 * time.Second

func main() {

	ctx := context.Background()

	logger.Init()

	cfg, err := config.LoadFromConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.Logging.LogLevel)

	var res cleanup.Resources
	fail := func(msg string, err error) {
		logger.CtxError(ctx, msg, err)
		cleanup.CleanupResources(ctx, res)
		os.Exit(1)
	}

	shutdownTracing, err := tracing.Setup(ctx, cfg.Otel)
	if err != nil {
		fail("Failed to set up tracing", err)
	}
	res.Tracing = shutdownTracing

	// Connect to MongoDB
	mongoClient, err := mongodb.ConnectToMongoDB(ctx, cfg.Mongo)
	if err != nil {
		fail("Failed to connect to MongoDB", err)
	}
	res.Mongo = mongoClient

	// Connect to Redis
	redisClient, err := redisdb.ConnectToRedis(ctx, cfg.Redis, nil)
	if err != nil {
		fail("Failed to connect to Redis", err)
	}
	res.Redis = redisClient

	// kafka producer for payment status events
	producer, err := kafka.NewKafkaProducer(cfg.Kafka)
	if err != nil {
		fail("Failed to create Kafka producer", err)
	}
	res.Producer = producer

	// pubsub publisher for notification-service
	notifier, err := initPubSubClient(ctx, cfg.PubSub.ProjectID, cfg.PubSub.NotificationTopic)
	if err != nil {
		fail("Failed to create Pub/Sub client", err)
	}
	res.PubSub = notifier

	receipts, err := gcs.NewGCSClient(ctx, cfg.GCS.BucketName, cfg.GCS.FolderName)
	if err != nil {
		fail("Failed to create GCS client", err)
	}
	res.GCS = receipts

	workerPool := worker.NewWorkerPool(cfg.Worker.PoolSize)
	res.Workers = workerPool

	store := submission.NewSubmissionStore(
		eligibility_submissions.NewEligibilitySubmissionRepository(mongoClient),
		loans.NewLoansRepository(mongoClient),
		fee_transactions.NewFeeTransactionRepository(mongoClient),
	)
	cache := repository.NewRedisStoreAdapter(redisClient.Client)

	feeTable, err := loan.NewFeeTable(cfg.Loan.FeeTiers)
	if err != nil {
		fail("Invalid fee table", err)
	}

	sessions := payment.NewSessionService(payment.SessionDependencies{
		Gateway:  downstream.NewPaymentGatewayClient(cfg.Gateway),
		Store:    store,
		Cache:    cache,
		Events:   producer,
		Notifier: notifier,
		Receipts: receipts,
		Pool:     workerPool,
	}, payment.SessionConfigFrom(cfg))

	gin.SetMode(gin.ReleaseMode)
	engine, err := router.SetupRouter(router.Services{
		Eligibility: eligibility.NewEligibilityService(store, cfg.Loan.Limit),
		Loans:       loan.NewLoanService(store, cache, feeTable, cfg.Loan, cfg.Payment.SessionTTL),
		Checkout:    sessions,
	}, router.Options{
		ServiceName:    cfg.Otel.ServiceName,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	if err != nil {
		fail("Failed to set up router", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadHeaderTimeoutSeconds) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", slog.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("Shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			logger.CtxError(ctx, "HTTP server failed", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	shutdown(shutdownCtx, server, sessions)

	cleanup.CleanupResources(shutdownCtx, res)
	logger.Info("Shutdown complete")
}

type serverShutdowner interface {
	Shutdown(ctx context.Context) error
}

type sessionStopper interface {
	Shutdown()
}

// shutdown drains the HTTP server before stopping checkout sessions so no
// in-flight Pay can start a polling loop after the sweep.
func shutdown(ctx context.Context, server serverShutdowner, sessions sessionStopper) {
	if err := server.Shutdown(ctx); err != nil {
		logger.CtxError(ctx, "HTTP server shutdown failed", err)
	}
	sessions.Shutdown()
}

func initPubSubClient(ctx context.Context, projectID, topic string) (*pubsub.PubSubClient, error) {
	client, err := pubsub.NewPubSubClient(ctx, projectID, topic, gcppubsub.NewClient)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", log_messages.ErrorPubSubClientCreation, err)
	}

	logger.Info("successful pubsub client creation", slog.String("pubsub_topic", topic))

	return client, nil
}
