package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/usercontext"
)

const (
	vendorID = "aaaaaaaaaaaaaaaaaaaaaaaa"
	otherID  = "bbbbbbbbbbbbbbbbbbbbbbbb"
)

var (
	vendorCaller = usercontext.UserContext{UserID: vendorID, Role: models.ROLE_VENDOR, IsLoggedIn: true}
	otherCaller  = usercontext.UserContext{UserID: otherID, Role: models.ROLE_VENDOR, IsLoggedIn: true}
	adminCaller  = usercontext.UserContext{UserID: "cccccccccccccccccccccccc", Role: models.ROLE_ADMIN, IsLoggedIn: true}
)

// testApp returns an app whose requests run as caller.
func testApp(caller usercontext.UserContext) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		usercontext.Set(c, caller)
		return c.Next()
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", spew.Sdump(string(raw)))
	}
	return resp.StatusCode, out
}
