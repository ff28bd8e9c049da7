package app

import (
	"strings"
	"time"

	"github.com/yungbote/prepstack-backend/internal/data/db"
	"github.com/yungbote/prepstack-backend/internal/http/middleware"
	"github.com/yungbote/prepstack-backend/internal/observability"
	"github.com/yungbote/prepstack-backend/internal/platform/envutil"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port    string
	Version string

	DB db.Config

	JWTSecretKey      string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	AllowCookieUserID bool

	Timezone          *time.Location
	MaxPointsPerAward int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	LeaderboardCacheTTL     time.Duration
	LeaderboardWarmInterval time.Duration
	LeaderboardWarmPages    int
	TokenPurgeInterval      time.Duration

	CORSOrigins []string

	MetricsEnabled bool
	MetricsAddr    string
	ScrapeInterval time.Duration

	OTel observability.OtelConfig

	ShutdownTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		Version: envutil.String("APP_VERSION", "dev"),

		JWTSecretKey:      envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL:    envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:   envutil.Duration("REFRESH_TOKEN_TTL", 24*time.Hour),
		AllowCookieUserID: envutil.Bool("AUTH_ALLOW_COOKIE_USER_ID", false),

		MaxPointsPerAward: envutil.Int("MAX_POINTS_PER_AWARD", 1000),

		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisDB:       envutil.Int("REDIS_DB", 0),
		RedisChannel:  envutil.String("REDIS_CHANNEL", "sse"),

		LeaderboardCacheTTL:     envutil.Duration("LEADERBOARD_CACHE_TTL_SECONDS", 30*time.Second),
		LeaderboardWarmInterval: envutil.Duration("LEADERBOARD_WARM_INTERVAL_SECONDS", 0),
		LeaderboardWarmPages:    envutil.Int("LEADERBOARD_WARM_PAGES", 1),
		TokenPurgeInterval:      envutil.Duration("TOKEN_PURGE_INTERVAL", time.Hour),

		CORSOrigins: envutil.List("CORS_ALLOW_ORIGINS", middleware.DefaultAllowOrigins),

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", false),
		MetricsAddr:    envutil.String("METRICS_ADDR", ""),
		ScrapeInterval: envutil.Duration("METRICS_SCRAPE_INTERVAL", 15*time.Second),

		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	cfg.DB = db.Config{
		Driver:     envutil.String("DB_DRIVER", db.DriverPostgres),
		DSN:        envutil.String("POSTGRES_DSN", ""),
		SQLitePath: envutil.String("SQLITE_PATH", "prepstack.db"),
	}
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = db.PostgresDSN(
			envutil.String("POSTGRES_HOST", "localhost"),
			envutil.String("POSTGRES_PORT", "5432"),
			envutil.String("POSTGRES_USER", "postgres"),
			envutil.String("POSTGRES_PASSWORD", "postgres"),
			envutil.String("POSTGRES_NAME", "prepstack"),
		)
	}

	tzName := envutil.String("APP_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Warn("Invalid APP_TIMEZONE, falling back to local time", "timezone", tzName, "error", err)
		loc = time.Local
	}
	cfg.Timezone = loc

	cfg.OTel = observability.OtelConfig{
		Enabled:     envutil.Bool("OTEL_ENABLED", false),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "prepstack-api"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     cfg.Version,
		Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
		Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		SampleRatio: envutil.Float("OTEL_TRACES_SAMPLER_RATIO", 1),
	}

	if cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set, using the development default")
	}
	log.Info("Config loaded",
		"port", cfg.Port,
		"db_driver", strings.ToLower(cfg.DB.Driver),
		"timezone", cfg.Timezone.String(),
		"redis", cfg.RedisAddr != "",
		"metrics", cfg.MetricsEnabled,
		"otel", cfg.OTel.Enabled,
		"leaderboard_cache_ttl", cfg.LeaderboardCacheTTL.String(),
		"leaderboard_warm_interval", cfg.LeaderboardWarmInterval.String(),
	)
	return cfg
}
