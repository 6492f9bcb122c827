// Package ratelimit builds the API request limiter. Counters live in Redis so
// every API process shares one budget per client.
package ratelimit

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/MarketFox/internal/pkg/cache"
	"github.com/ManuelReschke/MarketFox/internal/pkg/env"
)

// Redis database used for limiter counters (cache uses CACHE_DB, default 0).
const storageDB = 2

// NewStorage connects the limiter storage to the same Redis server the cache uses.
func NewStorage() fiber.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient := cache.GetClient(); cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		// Prefer password from the underlying client if present
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: env.GetEnvInt("RATE_LIMIT_DB", storageDB),
		Reset:    false,
	})
}

// Config is the limiter setup for /api. storage may be nil for in-memory
// counters; key derives the client identity.
func Config(storage fiber.Storage, key func(*fiber.Ctx) string) limiter.Config {
	return limiter.Config{
		Max:          env.GetEnvInt("API_RATE_LIMIT", 120),
		Expiration:   time.Minute,
		KeyGenerator: key,
		Storage:      storage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "Too many requests, slow down",
			})
		},
	}
}

// New returns the limiter middleware.
func New(storage fiber.Storage, key func(*fiber.Ctx) string) fiber.Handler {
	return limiter.New(Config(storage, key))
}
