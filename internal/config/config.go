package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	AutoMigrate bool

	JWTSecret     string
	TokenTTLHours int

	LoginRateLimitRequests      int
	LoginRateLimitWindowSeconds int
	LoginRateLimitMaxKeys       int
	LoginRateLimitFailClosed    bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:                    addr,
		PostgresDSN:                 os.Getenv("POSTGRES_DSN"),
		AutoMigrate:                 envBoolDefault("DB_AUTO_MIGRATE", false),
		JWTSecret:                   os.Getenv("JWT_SECRET"),
		TokenTTLHours:               envIntDefault("TOKEN_TTL_HOURS", 24),
		LoginRateLimitRequests:      envIntDefault("LOGIN_RATE_LIMIT_REQUESTS", 0),
		LoginRateLimitWindowSeconds: envIntDefault("LOGIN_RATE_LIMIT_WINDOW_SECONDS", 60),
		LoginRateLimitMaxKeys:       envIntDefault("LOGIN_RATE_LIMIT_MAX_KEYS", 10000),
		LoginRateLimitFailClosed:    envBoolDefault("LOGIN_RATE_LIMIT_FAIL_CLOSED", false),
		RedisAddr:                   os.Getenv("REDIS_ADDR"),
		RedisPassword:               os.Getenv("REDIS_PASSWORD"),
		RedisDB:                     envIntDefault("REDIS_DB", 0),
	}
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}

func (c Config) TokenTTL() time.Duration {
	if c.TokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func (c Config) LoginRateLimitWindow() time.Duration {
	if c.LoginRateLimitWindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.LoginRateLimitWindowSeconds) * time.Second
}
