package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/ManuelReschke/MarketFox/internal/pkg/constants"
	"github.com/ManuelReschke/MarketFox/internal/pkg/env"
	"github.com/ManuelReschke/MarketFox/internal/pkg/metrics"
)

// OpsRouter serves health, metrics and the Fiber monitor.
type OpsRouter struct {
}

func (h OpsRouter) InstallRouter(app *fiber.App) {
	app.Get(constants.HealthRoute, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	guard := opsAuth()
	app.Get(constants.MetricsRoute, guard, metrics.Handler())
	app.Get(constants.MonitorRoute, guard, monitor.New(monitor.Config{Title: "MarketFox Monitor"}))
}

// opsAuth protects operational endpoints with basic auth when credentials
// are configured. In development they stay open.
func opsAuth() fiber.Handler {
	user := env.GetEnv("METRICS_USER", "")
	pass := env.GetEnv("METRICS_PASSWORD", "")
	if user == "" || pass == "" {
		if env.IsDev() {
			return func(c *fiber.Ctx) error { return c.Next() }
		}
		return func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Not found"})
		}
	}
	return basicauth.New(basicauth.Config{
		Users: map[string]string{user: pass},
		Realm: "MarketFox Ops",
	})
}

func NewOpsRouter() *OpsRouter {
	return &OpsRouter{}
}
