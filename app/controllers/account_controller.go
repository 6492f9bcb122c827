package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/MarketFox/app/repository"
	"github.com/ManuelReschke/MarketFox/internal/pkg/usercontext"
)

type AccountController struct {
	users repository.UserRepository
	subs  Subscriptions
}

func NewAccountController(users repository.UserRepository, subs Subscriptions) *AccountController {
	return &AccountController{users: users, subs: subs}
}

// HandleGetUserAccount returns the authenticated user's profile. Vendors also
// get their current upload limits.
func (ac *AccountController) HandleGetUserAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	account, err := ac.users.GetByID(userCtx.UserID)
	if err != nil {
		return storeError(c, "User", err)
	}

	response := fiber.Map{
		"id":         account.ID,
		"name":       account.Name,
		"email":      account.Email,
		"role":       account.Role,
		"status":     account.Status,
		"store_name": account.StoreName,
		"is_admin":   userCtx.IsAdmin(),
		"created_at": account.CreatedAt.UTC().Format(time.RFC3339),
	}

	if account.IsVendor() {
		decision, sub, err := ac.subs.CanUpload(c.UserContext(), account.ID, 1)
		if err != nil {
			return internalError(c, "Failed to load subscription limits", err)
		}
		subscription := fiber.Map{"active": sub != nil}
		if sub != nil {
			subscription["plan_id"] = sub.PlanID
			subscription["expires_at"] = formatTimePtr(&sub.ExpiresAt)
			subscription["cancelled_at"] = formatTimePtr(sub.CancelledAt)
		}
		response["subscription"] = subscription
		response["limits"] = uploadCheckResponse(decision)
	}

	return c.JSON(response)
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
