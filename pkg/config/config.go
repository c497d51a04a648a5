package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	Google        GoogleOAuthConfig
	Apple         AppleOAuthConfig
	Email         EmailConfig
	GCP           GCPConfig
	GCS           GCSConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SPOT2GO_APP_ENV" default:"development"`
	Port         string `envconfig:"PORT" default:"8080"`
	LogLevel     string `envconfig:"SPOT2GO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SPOT2GO_LOG_WARN_STACK" default:"false"`
	FrontendURL  string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN             string        `envconfig:"DATABASE_URL" required:"true"`
	MaxOpenConns    int           `envconfig:"SPOT2GO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SPOT2GO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SPOT2GO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SPOT2GO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"SPOT2GO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SPOT2GO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SPOT2GO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPOT2GO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SPOT2GO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret          string `envconfig:"JWT_SECRET" required:"true"`
	Issuer          string `envconfig:"SPOT2GO_JWT_ISSUER" default:"spot2go"`
	ExpirationHours int    `envconfig:"SPOT2GO_JWT_EXPIRATION_HOURS" default:"24"`
}

// TokenTTL returns the access token lifetime. Tokens last one day by default.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(j.ExpirationHours) * time.Hour
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SPOT2GO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SPOT2GO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SPOT2GO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SPOT2GO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SPOT2GO_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SPOT2GO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	ResetWindow        time.Duration `envconfig:"SPOT2GO_AUTH_RATE_LIMIT_RESET_WINDOW" default:"15m"`
	ResetEmailLimit    int           `envconfig:"SPOT2GO_AUTH_RATE_LIMIT_RESET_EMAIL_LIMIT" default:"3"`
	ResetIPLimit       int           `envconfig:"SPOT2GO_AUTH_RATE_LIMIT_RESET_IP_LIMIT" default:"10"`
}

type GoogleOAuthConfig struct {
	ClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	ClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	CallbackURL  string `envconfig:"GOOGLE_CALLBACK_URL"`
}

func (g GoogleOAuthConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.CallbackURL != ""
}

type AppleOAuthConfig struct {
	ClientID string `envconfig:"APPLE_CLIENT_ID"`
	TeamID   string `envconfig:"APPLE_TEAM_ID"`
	KeyID    string `envconfig:"APPLE_KEY_ID"`
	JWKSURL  string `envconfig:"SPOT2GO_APPLE_JWKS_URL" default:"https://appleid.apple.com/auth/keys"`
}

func (a AppleOAuthConfig) Enabled() bool {
	return a.ClientID != ""
}

type EmailConfig struct {
	Host string `envconfig:"EMAIL_HOST"`
	Port int    `envconfig:"EMAIL_PORT" default:"587"`
	User string `envconfig:"EMAIL_USER"`
	Pass string `envconfig:"EMAIL_PASS"`
	From string `envconfig:"EMAIL_FROM" default:"Spot2Go <no-reply@spot2go.app>"`
}

func (e EmailConfig) Enabled() bool {
	return e.Host != ""
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SPOT2GO_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SPOT2GO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName  string `envconfig:"SPOT2GO_GCS_BUCKET_NAME" required:"true"`
	PublicHost  string `envconfig:"SPOT2GO_GCS_PUBLIC_HOST" default:"https://storage.googleapis.com"`
	MaxUploadMB int    `envconfig:"SPOT2GO_MAX_UPLOAD_MB" default:"10"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"SPOT2GO_PUBSUB_DOMAIN_TOPIC" default:"spot2go-domain-events"`
	NotifySubscription string `envconfig:"SPOT2GO_PUBSUB_NOTIFY_SUBSCRIPTION" default:"spot2go-notify"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"SPOT2GO_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"SPOT2GO_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"SPOT2GO_OUTBOX_MAX_ATTEMPTS" default:"10"`
	IdempotencyTTL time.Duration `envconfig:"SPOT2GO_OUTBOX_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SPOT2GO_AUTO_MIGRATE" default:"false"`
	PushEnabled bool `envconfig:"SPOT2GO_PUSH_ENABLED" default:"true"`
}
