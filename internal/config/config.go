// Package config centraliza o carregamento de configurações da aplicação.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ratewall/ratewall/internal/core/domain"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Server  ServerConfig
	Limiter LimiterConfig
}

type ServerConfig struct {
	Port     string
	LogLevel string
}

type LimiterConfig struct {
	Backend string
	Limit   domain.Limit
	Redis   RedisConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	server := ServerConfig{
		Port:     getEnv("SERVER_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	limiter, err := buildLimiterConfig()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Server:  server,
		Limiter: limiter,
	}, nil
}

func buildLimiterConfig() (LimiterConfig, error) {
	backend := strings.ToLower(getEnv("LIMITER_BACKEND", BackendMemory))
	if backend != BackendMemory && backend != BackendRedis {
		return LimiterConfig{}, fmt.Errorf("unsupported LIMITER_BACKEND: %s", backend)
	}

	windowMs, err := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_MS", "60000"))
	if err != nil {
		return LimiterConfig{}, fmt.Errorf("invalid RATE_LIMIT_WINDOW_MS: %w", err)
	}
	maxRequests, err := strconv.Atoi(getEnv("RATE_LIMIT_MAX_REQUESTS", "100"))
	if err != nil {
		return LimiterConfig{}, fmt.Errorf("invalid RATE_LIMIT_MAX_REQUESTS: %w", err)
	}
	if windowMs <= 0 || maxRequests <= 0 {
		return LimiterConfig{}, fmt.Errorf("RATE_LIMIT_WINDOW_MS and RATE_LIMIT_MAX_REQUESTS: %w", domain.ErrInvalidConfig)
	}

	redisConfig, err := buildRedisConfig()
	if err != nil {
		return LimiterConfig{}, err
	}

	return LimiterConfig{
		Backend: backend,
		Limit: domain.Limit{
			Window:      time.Duration(windowMs) * time.Millisecond,
			MaxRequests: maxRequests,
		},
		Redis: redisConfig,
	}, nil
}

func buildRedisConfig() (RedisConfig, error) {
	host := getEnv("REDIS_HOST", "localhost")
	port, err := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return RedisConfig{
		Host:     host,
		Port:     port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
