package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/spot2go/spot2go-backend/api/responses"
	"github.com/spot2go/spot2go-backend/pkg/config"
	"github.com/spot2go/spot2go-backend/pkg/db"
	"github.com/spot2go/spot2go-backend/pkg/logger"
	"github.com/spot2go/spot2go-backend/pkg/pubsub"
	"github.com/spot2go/spot2go-backend/pkg/redis"
	"github.com/spot2go/spot2go-backend/pkg/storage/gcs"
)

const readinessTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Spot2Go-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency. A nil client (optional in dev)
// is reported as skipped rather than failing readiness.
func HealthReady(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	pubsubClient pubsub.Pinger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		run := func(name string, ping func(context.Context) error) {
			if ping == nil {
				checks[name] = "skipped"
				return
			}
			if err := ping(ctx); err != nil {
				checks[name] = "down"
				healthy = false
				logg.Error(ctx, "readiness check failed: "+name, err)
				return
			}
			checks[name] = "up"
		}

		if dbP != nil {
			run("postgres", dbP.Ping)
		} else {
			checks["postgres"] = "skipped"
		}
		if redisClient != nil {
			run("redis", redisClient.Ping)
		} else {
			checks["redis"] = "skipped"
		}
		if gcsClient != nil {
			run("gcs", gcsClient.Ping)
		} else {
			checks["gcs"] = "skipped"
		}
		if pubsubClient != nil {
			run("pubsub", pubsubClient.Ping)
		} else {
			checks["pubsub"] = "skipped"
		}

		w.Header().Set("X-Spot2Go-Env", cfg.App.Env)
		if !healthy {
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"checks": checks,
			})
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	}
}
