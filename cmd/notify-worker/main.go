package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/spot2go/spot2go-backend/internal/devices"
	"github.com/spot2go/spot2go-backend/internal/notify"
	"github.com/spot2go/spot2go-backend/pkg/config"
	"github.com/spot2go/spot2go-backend/pkg/db"
	"github.com/spot2go/spot2go-backend/pkg/logger"
	"github.com/spot2go/spot2go-backend/pkg/mail"
	"github.com/spot2go/spot2go-backend/pkg/outbox/idempotency"
	"github.com/spot2go/spot2go-backend/pkg/pubsub"
	"github.com/spot2go/spot2go-backend/pkg/push"
	"github.com/spot2go/spot2go-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "notify-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "notify-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "failed to close database", err)
		}
	}()

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	subscription := pubsubClient.NotifySubscription()
	if subscription == nil {
		requireResource(ctx, logg, "notify subscription", errors.New("subscription not configured"))
	}

	var pusher push.Sender = push.NewNoop(logg)
	if cfg.FeatureFlags.PushEnabled {
		fcmClient, err := push.New(context.Background(), cfg.GCP, logg)
		requireResource(ctx, logg, "fcm client", err)
		pusher = fcmClient
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Outbox.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	handler, err := notify.NewHandler(notify.HandlerParams{
		Mailer:      mail.New(cfg.Email, logg),
		Pusher:      pusher,
		Devices:     devices.NewRepository(dbClient.DB()),
		FrontendURL: cfg.App.FrontendURL,
		ResetTTL:    time.Hour,
		Logger:      logg,
	})
	requireResource(ctx, logg, "notify handler", err)

	worker, err := notify.NewWorker(subscription, handler, manager, logg)
	requireResource(ctx, logg, "notify worker", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{"env": cfg.App.Env})
	logg.Info(runCtx, "notify worker ready")

	if err := worker.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "notify worker failed", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
