package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router installs a group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter registers the operational routes first, then the API.
func InstallRouter(app *fiber.App, routers ...Router) {
	setup(app, append([]Router{NewOpsRouter()}, routers...)...)
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
