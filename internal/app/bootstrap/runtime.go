package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	_ "github.com/jackc/pgx/v5/stdlib"

	appconfig "github.com/shopguide/shopguide-ai-platform/internal/config"
	"github.com/shopguide/shopguide-ai-platform/internal/dialogue"
	"github.com/shopguide/shopguide-ai-platform/pkg/logging"
)

// errNoSessionStore is returned when Redis-backed sessions cannot be wired.
var errNoSessionStore = errors.New("bootstrap: session store requires REDIS_ADDR")

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildSessionStore wires the Redis-backed session store. Sessions require
// Redis; a missing client is a hard configuration error for the caller.
func BuildSessionStore(redisClient *redis.Client, cfg *appconfig.Config) *dialogue.SessionStore {
	if redisClient == nil {
		return nil
	}
	return dialogue.NewSessionStore(redisClient, cfg.SessionTTL, otel.Tracer("shopguide/dialogue"))
}

// OpenDatabase opens the Postgres pool used for transcripts, or nil when
// persistence is not configured.
func OpenDatabase(cfg *appconfig.Config, logger *logging.Logger) *sql.DB {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Warn("failed to open database", "error", err)
		return nil
	}
	return db
}

// BuildTranscriptStore wires optional transcript persistence.
func BuildTranscriptStore(sqlDB *sql.DB, logger *logging.Logger) *dialogue.TranscriptStore {
	if sqlDB == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	logger.Info("transcript persistence enabled")
	return dialogue.NewTranscriptStore(sqlDB)
}
