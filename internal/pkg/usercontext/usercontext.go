package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/MarketFox/app/models"
)

// UserContext represents the authenticated caller of a request
type UserContext struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	IsLoggedIn bool   `json:"is_logged_in"`
}

func (u UserContext) IsAdmin() bool  { return u.Role == models.ROLE_ADMIN }
func (u UserContext) IsVendor() bool { return u.Role == models.ROLE_VENDOR }

// HasRole reports whether the caller holds one of roles. Admins hold every role.
func (u UserContext) HasRole(roles ...string) bool {
	if !u.IsLoggedIn {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Set stores the user context and the individual legacy keys on c.
func Set(c *fiber.Ctx, u UserContext) {
	c.Locals(KeyUserContext, u)
	c.Locals(KeyFromProtected, u.IsLoggedIn)
	c.Locals(KeyUserID, u.UserID)
	c.Locals(KeyUsername, u.Username)
	c.Locals(KeyRole, u.Role)
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return ctx
	}
	return UserContext{IsLoggedIn: false}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetUserID returns the current user's ID, or "" if not logged in
func GetUserID(c *fiber.Ctx) string {
	return GetUserContext(c).UserID
}
