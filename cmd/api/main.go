package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/spot2go/spot2go-backend/api/routes"
	"github.com/spot2go/spot2go-backend/internal/auth"
	"github.com/spot2go/spot2go-backend/internal/bookings"
	"github.com/spot2go/spot2go-backend/internal/bookmarks"
	"github.com/spot2go/spot2go-backend/internal/devices"
	"github.com/spot2go/spot2go-backend/internal/moderation"
	"github.com/spot2go/spot2go-backend/internal/payments"
	"github.com/spot2go/spot2go-backend/internal/places"
	"github.com/spot2go/spot2go-backend/internal/reviews"
	"github.com/spot2go/spot2go-backend/internal/users"
	"github.com/spot2go/spot2go-backend/pkg/config"
	"github.com/spot2go/spot2go-backend/pkg/db"
	"github.com/spot2go/spot2go-backend/pkg/logger"
	"github.com/spot2go/spot2go-backend/pkg/metrics"
	"github.com/spot2go/spot2go-backend/pkg/migrate"
	"github.com/spot2go/spot2go-backend/pkg/outbox"
	"github.com/spot2go/spot2go-backend/pkg/pubsub"
	"github.com/spot2go/spot2go-backend/pkg/redis"
	"github.com/spot2go/spot2go-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	userRepo := users.NewRepository(dbClient.DB())
	placeRepo := places.NewRepository(dbClient.DB())
	bookingRepo := bookings.NewRepository(dbClient.DB())
	reviewRepo := reviews.NewRepository(dbClient.DB())
	bookmarkRepo := bookmarks.NewRepository(dbClient.DB())
	deviceRepo := devices.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  userRepo,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		fatal(logg, "failed to create auth service", err)
	}

	oauthService, err := auth.NewOAuthService(auth.OAuthServiceParams{
		UserRepo:  userRepo,
		JWTConfig: cfg.JWT,
		Google:    cfg.Google,
		Apple:     cfg.Apple,
		Logger:    logg,
	})
	if err != nil {
		fatal(logg, "failed to create oauth service", err)
	}

	resetService, err := auth.NewPasswordResetService(auth.PasswordResetServiceParams{
		UserRepo:   userRepo,
		Transactor: dbClient,
		Events:     outboxService,
		JWTConfig:  cfg.JWT,
		Logger:     logg,
	})
	if err != nil {
		fatal(logg, "failed to create password reset service", err)
	}

	placeService, err := places.NewService(places.ServiceParams{
		Repo:     placeRepo,
		Uploader: gcsClient,
		Tx:       dbClient,
		Events:   outboxService,
		Logger:   logg,
	})
	if err != nil {
		fatal(logg, "failed to create place service", err)
	}

	discoveryService, err := places.NewDiscoveryService(placeRepo)
	if err != nil {
		fatal(logg, "failed to create discovery service", err)
	}

	bookingService, err := bookings.NewService(bookings.ServiceParams{
		Repo:   bookingRepo,
		Places: placeRepo,
		Users:  userRepo,
		Tx:     dbClient,
		Events: outboxService,
		Logger: logg,
	})
	if err != nil {
		fatal(logg, "failed to create booking service", err)
	}

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		Repo:   reviewRepo,
		Places: placeRepo,
		Tx:     dbClient,
		Events: outboxService,
		Logger: logg,
	})
	if err != nil {
		fatal(logg, "failed to create review service", err)
	}

	bookmarkService, err := bookmarks.NewService(bookmarks.ServiceParams{
		Repo:   bookmarkRepo,
		Places: placeRepo,
		Logger: logg,
	})
	if err != nil {
		fatal(logg, "failed to create bookmark service", err)
	}

	deviceService, err := devices.NewService(devices.ServiceParams{
		Repo:   deviceRepo,
		Logger: logg,
	})
	if err != nil {
		fatal(logg, "failed to create device service", err)
	}

	moderationService, err := moderation.NewService(moderation.ServiceParams{
		Repo:   placeRepo,
		Tx:     dbClient,
		Events: outboxService,
		Logger: logg,
	})
	if err != nil {
		fatal(logg, "failed to create moderation service", err)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Bookings: bookingRepo,
		Logger:   logg,
	})
	if err != nil {
		fatal(logg, "failed to create payment service", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gcsClient,
			pubsubClient,
			httpMetrics,
			registry,
			authService,
			oauthService,
			resetService,
			placeService,
			discoveryService,
			bookingService,
			reviewService,
			bookmarkService,
			deviceService,
			moderationService,
			paymentService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func fatal(logg *logger.Logger, msg string, err error) {
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
