package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process-level configuration for the registry service.
type Server struct {
	Addr string
	// OwnerAccount is the single identity allowed to register universities.
	// Fixed for the lifetime of the process.
	OwnerAccount  string
	JWTSigningKey string
	JWTIssuer     string
	// PostgresURL selects the durable backend. Empty means in-memory.
	PostgresURL string
	// RedisURL enables the read-through record cache. Empty disables it.
	RedisURL  string
	CacheTTL  time.Duration
	LogFormat string
}

// FromEnv builds a Server config from environment variables so main stays
// lean. A .env file is honored when present (local development); real
// environments set variables directly.
func FromEnv() Server {
	_ = godotenv.Load()

	cfg := Server{
		Addr:          getEnv("UNIREG_ADDR", ":8080"),
		OwnerAccount:  getEnv("UNIREG_OWNER_ACCOUNT", "registry.admin"),
		JWTSigningKey: getEnv("UNIREG_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     getEnv("UNIREG_JWT_ISSUER", "fenix-university-registry"),
		PostgresURL:   os.Getenv("UNIREG_POSTGRES_URL"),
		RedisURL:      os.Getenv("UNIREG_REDIS_URL"),
		CacheTTL:      15 * time.Minute,
		LogFormat:     getEnv("UNIREG_LOG_FORMAT", "text"),
	}

	if raw := os.Getenv("UNIREG_CACHE_TTL"); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil {
			cfg.CacheTTL = ttl
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
