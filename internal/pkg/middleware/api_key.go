package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/app/repository"
	"github.com/ManuelReschke/MarketFox/internal/pkg/usercontext"
)

// KeyResolver resolves a hashed API key to its owner.
type KeyResolver interface {
	GetByAPIKeyHash(hash string) (*models.User, *models.APIKey, error)
	TouchAPIKey(id uint, at time.Time) error
}

// APIKeyAuthMiddleware authenticates requests carrying an API key header
// against the global user repository.
func APIKeyAuthMiddleware() fiber.Handler {
	return APIKeyAuth(nil, true)
}

// OptionalAPIKeyAuthMiddleware resolves the caller when a key is present and
// continues anonymously otherwise. An invalid key is still rejected.
func OptionalAPIKeyAuthMiddleware() fiber.Handler {
	return APIKeyAuth(nil, false)
}

// APIKeyAuth builds the key middleware. A nil resolver uses the global
// repository factory at request time.
func APIKeyAuth(resolver KeyResolver, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := extractAPIKeyFromHeader(c)
		if apiKey == "" {
			if required {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing API key"})
			}
			usercontext.Set(c, usercontext.UserContext{})
			return c.Next()
		}

		repo := resolver
		if repo == nil {
			repo = repository.GetGlobalFactory().GetUserRepository()
		}

		user, key, err := repo.GetByAPIKeyHash(models.HashAPIKey(apiKey))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid API key"})
			}
			fiberlog.Errorf("api key lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "API key verification failed"})
		}

		if !user.IsActive() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "User inactive"})
		}

		// Refresh last-used timestamp best-effort.
		if err := repo.TouchAPIKey(key.ID, time.Now()); err != nil {
			fiberlog.Warnf("failed to update api key usage timestamp for user %s: %v", user.ID, err)
		}

		usercontext.Set(c, usercontext.UserContext{
			UserID:     user.ID,
			Username:   user.Name,
			Role:       user.Role,
			IsLoggedIn: true,
		})
		return c.Next()
	}
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
