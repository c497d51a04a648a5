package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spot2go/spot2go-backend/api/controllers"
	"github.com/spot2go/spot2go-backend/api/middleware"
	"github.com/spot2go/spot2go-backend/internal/auth"
	"github.com/spot2go/spot2go-backend/internal/bookings"
	"github.com/spot2go/spot2go-backend/internal/bookmarks"
	"github.com/spot2go/spot2go-backend/internal/devices"
	"github.com/spot2go/spot2go-backend/internal/moderation"
	"github.com/spot2go/spot2go-backend/internal/payments"
	"github.com/spot2go/spot2go-backend/internal/places"
	"github.com/spot2go/spot2go-backend/internal/reviews"
	"github.com/spot2go/spot2go-backend/pkg/config"
	"github.com/spot2go/spot2go-backend/pkg/db"
	"github.com/spot2go/spot2go-backend/pkg/enums"
	"github.com/spot2go/spot2go-backend/pkg/logger"
	"github.com/spot2go/spot2go-backend/pkg/metrics"
	"github.com/spot2go/spot2go-backend/pkg/pubsub"
	"github.com/spot2go/spot2go-backend/pkg/redis"
	"github.com/spot2go/spot2go-backend/pkg/storage/gcs"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	pubsubClient pubsub.Pinger,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	authService auth.Service,
	oauthService auth.OAuthService,
	resetService auth.PasswordResetService,
	placeService places.Service,
	discoveryService places.DiscoveryService,
	bookingService bookings.Service,
	reviewService reviews.Service,
	bookmarkService bookmarks.Service,
	deviceService devices.Service,
	moderationService moderation.Service,
	paymentService payments.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		httpMetrics.Middleware,
		middleware.CORS(cfg.App.FrontendURL),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	resetPolicy := middleware.NewAuthRateLimitPolicy(
		"password_reset",
		cfg.AuthRateLimit.ResetWindow,
		cfg.AuthRateLimit.ResetIPLimit,
		cfg.AuthRateLimit.ResetEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient, pubsubClient))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.Idempotency(redisClient, logg), middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
			Post("/register", controllers.AuthRegister(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(authService, logg))
		r.Get("/google", controllers.AuthGoogleRedirect(oauthService, logg))
		r.Get("/google/callback", controllers.AuthGoogleCallback(oauthService, cfg.App.FrontendURL, logg))
		r.Post("/apple/callback", controllers.AuthAppleCallback(oauthService, cfg.App.FrontendURL, logg))
		r.With(middleware.AuthRateLimit(resetPolicy, redisClient, logg)).
			Post("/request-password-reset", controllers.AuthRequestPasswordReset(resetService, logg))
		r.Post("/reset-password", controllers.AuthResetPassword(resetService, logg))
	})

	r.Route("/api/payments", func(r chi.Router) {
		r.Post("/webhook", controllers.PaymentWebhook(paymentService, logg))
		r.Group(func(r chi.Router) {
			r.Use(
				middleware.Auth(cfg.JWT, logg),
				middleware.RequireRole(enums.UserRoleCustomer, logg),
				middleware.Idempotency(redisClient, logg),
			)
			r.Post("/intents", controllers.PaymentIntentCreate(paymentService, logg))
		})
	})

	r.Route("/api/customers", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/places", controllers.CustomerListPlaces(discoveryService, logg))
		r.Get("/places/{placeId}", controllers.CustomerPlaceDetail(discoveryService, logg))

		r.Group(func(r chi.Router) {
			r.Use(
				middleware.RequireRole(enums.UserRoleCustomer, logg),
				middleware.Idempotency(redisClient, logg),
			)
			r.Post("/bookings", controllers.BookingCreate(bookingService, logg))
			r.Get("/bookings", controllers.BookingList(bookingService, logg))
			r.Post("/places/{placeId}/reviews", controllers.ReviewCreate(reviewService, logg))
			r.Post("/places/{placeId}/bookmark", controllers.BookmarkToggle(bookmarkService, logg))
			r.Get("/bookmarks", controllers.BookmarkList(bookmarkService, logg))
		})
	})

	r.Route("/api/owners", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.RequireRole(enums.UserRoleOwner, logg),
		)
		r.Post("/places", controllers.OwnerPlaceCreate(placeService, cfg.GCS.MaxUploadMB, logg))
		r.Put("/places/{placeId}", controllers.OwnerPlaceUpdate(placeService, cfg.GCS.MaxUploadMB, logg))
		r.Get("/places", controllers.OwnerPlaceList(placeService, logg))
		r.Get("/places/{placeId}", controllers.OwnerPlaceDetail(placeService, logg))
		r.Post("/places/{placeId}/menu-items", controllers.OwnerMenuItemCreate(placeService, logg))
		r.Post("/places/{placeId}/bundles", controllers.OwnerBundleCreate(placeService, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.RequireRole(enums.UserRoleAdmin, logg),
		)
		r.Get("/places/stats", controllers.AdminPlaceStats(moderationService, logg))
		r.Get("/places/pending", controllers.AdminPendingPlaces(moderationService, logg))
		r.Put("/places/{placeId}/status", controllers.AdminPlaceStatusUpdate(moderationService, logg))
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.Idempotency(redisClient, logg),
		)
		r.Post("/devices", controllers.DeviceRegister(deviceService, logg))
	})

	r.With(middleware.Auth(cfg.JWT, logg)).
		Get("/api/bookings/{bookingId}/calendar", controllers.BookingCalendar(bookingService, logg))

	return r
}
