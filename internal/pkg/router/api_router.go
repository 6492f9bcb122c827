package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/MarketFox/app/controllers"
	apiv1 "github.com/ManuelReschke/MarketFox/internal/api/v1"
	"github.com/ManuelReschke/MarketFox/internal/pkg/constants"
	"github.com/ManuelReschke/MarketFox/internal/pkg/ratelimit"
)

type ApiRouter struct {
	server  *apiv1.APIServer
	storage fiber.Storage
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, ratelimit.New(h.storage, controllers.GetClientIP))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group(constants.APIV1Route)
	apiv1.RegisterHandlers(v1, h.server)
}

// NewApiRouter mounts server under /api/v1. storage holds the rate limit
// counters; nil keeps them in memory.
func NewApiRouter(server *apiv1.APIServer, storage fiber.Storage) *ApiRouter {
	return &ApiRouter{server: server, storage: storage}
}
