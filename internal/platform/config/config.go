// Package config builds the server configuration from the environment so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures the full process configuration.
type Server struct {
	Addr string

	Auth      Auth
	Postgres  Postgres
	Redis     Redis
	Kafka     Kafka
	RateLimit RateLimit
}

// Auth holds identity verification and token signing settings.
type Auth struct {
	// IdentityProject is the identity provider project whose tokens are
	// accepted at login.
	IdentityProject string
	AccessSecret    string
	RefreshSecret   string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	Issuer          string
}

// Postgres holds the relational store settings.
type Postgres struct {
	DSN string
}

// Redis holds the rate limit counter settings.
type Redis struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka holds the audit event publishing settings. Empty brokers disable
// publishing.
type Kafka struct {
	Brokers []string
	Topic   string
}

// RateLimit holds the public API budget.
type RateLimit struct {
	Limit  int
	Window time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr: envOr("TAPCARD_ADDR", ":8080"),
		Auth: Auth{
			IdentityProject: os.Getenv("IDENTITY_PROJECT_ID"),
			AccessSecret:    envOr("ACCESS_TOKEN_SECRET", "dev-access-secret-change-in-production"),
			RefreshSecret:   envOr("REFRESH_TOKEN_SECRET", "dev-refresh-secret-change-in-production"),
			AccessTTL:       envDuration("ACCESS_TOKEN_TTL", time.Hour),
			RefreshTTL:      envDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
			Issuer:          envOr("TOKEN_ISSUER", "tapcard"),
		},
		Postgres: Postgres{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers: envList("KAFKA_BROKERS"),
			Topic:   envOr("KAFKA_AUDIT_TOPIC", "tapcard.security-events"),
		},
		RateLimit: RateLimit{
			Limit:  envInt("RATE_LIMIT_REQUESTS", 100),
			Window: envDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
