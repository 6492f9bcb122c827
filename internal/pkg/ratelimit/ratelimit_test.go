package ratelimit

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterRejectsOverBudget(t *testing.T) {
	t.Setenv("API_RATE_LIMIT", "2")
	app := fiber.New()
	app.Use(New(nil, func(c *fiber.Ctx) string { return c.Get("X-Client") }))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	call := func(client string) int {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Client", client)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, 200, call("a"))
	assert.Equal(t, 200, call("a"))
	assert.Equal(t, 429, call("a"))
	assert.Equal(t, 200, call("b"), "budgets are per client")
}
