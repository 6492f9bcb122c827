package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/ManuelReschke/MarketFox/app/repository"
	apiv1 "github.com/ManuelReschke/MarketFox/internal/api/v1"
	"github.com/ManuelReschke/MarketFox/internal/pkg/cache"
	"github.com/ManuelReschke/MarketFox/internal/pkg/constants"
	"github.com/ManuelReschke/MarketFox/internal/pkg/database"
	"github.com/ManuelReschke/MarketFox/internal/pkg/env"
	"github.com/ManuelReschke/MarketFox/internal/pkg/ratelimit"
	"github.com/ManuelReschke/MarketFox/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/marketfox to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	app := fiber.New(fiber.Config{
		AppName:   "MarketFox",
		BodyLimit: 4 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": "request_failed", "message": err.Error()})
		},
	})

	// recovery, request ids and logging
	app.Use(
		recover.New(),
		requestid.New(requestid.Config{Generator: uuid.NewString}),
		logger.New(logger.Config{Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n"}),
	)

	// SWAGGER / OPENAPI
	if basePath != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: constants.DocsRoute,
			FilePath: basePath + constants.OpenAPIFile[2:],
			Path:     "v1",
		}))
	} else {
		log.Print("public/ not found, API docs disabled")
	}

	// ROUTER
	server := apiv1.NewAPIServer(repository.GetGlobalRepositories(), database.GetDB())
	router.InstallRouter(app, router.NewApiRouter(server, ratelimit.NewStorage()))

	return app
}
