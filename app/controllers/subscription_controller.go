package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/billing"
	"github.com/ManuelReschke/MarketFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/MarketFox/internal/pkg/usercontext"
)

// Subscriptions is the billing surface used by the HTTP layer.
type Subscriptions interface {
	UploadGuard
	Current(ctx context.Context, vendorID string) (*models.VendorSubscription, error)
	Subscribe(ctx context.Context, vendorID, planID string) (*models.VendorSubscription, error)
	Cancel(ctx context.Context, vendorID string) error
	GetPlan(ctx context.Context, planID string) (*models.SubscriptionPlan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]models.SubscriptionPlan, error)
	SavePlan(ctx context.Context, plan *models.SubscriptionPlan) error
}

type SubscriptionController struct {
	billing Subscriptions
}

func NewSubscriptionController(b Subscriptions) *SubscriptionController {
	return &SubscriptionController{billing: b}
}

// HandleListPlans lists active plans; admins may pass ?all=true.
func (sc *SubscriptionController) HandleListPlans(c *fiber.Ctx) error {
	activeOnly := !(usercontext.GetUserContext(c).IsAdmin() && c.QueryBool("all"))
	plans, err := sc.billing.ListPlans(c.UserContext(), activeOnly)
	if err != nil {
		return internalError(c, "Failed to load plans", err)
	}
	return c.JSON(fiber.Map{"plans": plans})
}

func (sc *SubscriptionController) HandleCreatePlan(c *fiber.Ctx) error {
	plan := models.SubscriptionPlan{IsActive: true, DurationDays: 30, CommissionType: models.CommissionPercentage}
	if err := c.BodyParser(&plan); err != nil {
		return badRequest(c, "Invalid plan body")
	}
	plan.ID = ""
	if err := sc.billing.SavePlan(c.UserContext(), &plan); err != nil {
		return planSaveError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// HandleUpdatePlan changes a plan. Running subscriptions keep their snapshot.
func (sc *SubscriptionController) HandleUpdatePlan(c *fiber.Ctx) error {
	plan, err := sc.billing.GetPlan(c.UserContext(), c.Params("id"))
	if errors.Is(err, billing.ErrPlanNotFound) {
		return notFound(c, "Plan not found")
	}
	if err != nil {
		return internalError(c, "Failed to load plan", err)
	}
	id, createdAt := plan.ID, plan.CreatedAt
	if err := c.BodyParser(plan); err != nil {
		return badRequest(c, "Invalid plan body")
	}
	plan.ID, plan.CreatedAt = id, createdAt
	if err := sc.billing.SavePlan(c.UserContext(), plan); err != nil {
		return planSaveError(c, err)
	}
	return c.JSON(plan)
}

// HandleSubscribe starts the caller on a plan, replacing any active subscription.
func (sc *SubscriptionController) HandleSubscribe(c *fiber.Ctx) error {
	var body struct {
		PlanID string `json:"planId"`
	}
	if err := c.BodyParser(&body); err != nil || body.PlanID == "" {
		return badRequest(c, "planId is required")
	}
	sub, err := sc.billing.Subscribe(c.UserContext(), usercontext.GetUserID(c), body.PlanID)
	switch {
	case errors.Is(err, billing.ErrPlanNotFound):
		return notFound(c, "Plan not found")
	case errors.Is(err, billing.ErrPlanInactive):
		return errorJSON(c, fiber.StatusConflict, "plan_inactive", err.Error())
	case err != nil:
		return internalError(c, "Failed to subscribe", err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

func (sc *SubscriptionController) HandleGetSubscription(c *fiber.Ctx) error {
	sub, err := sc.billing.Current(c.UserContext(), usercontext.GetUserID(c))
	if errors.Is(err, billing.ErrNoActiveSubscription) {
		return notFound(c, "No active subscription")
	}
	if err != nil {
		return internalError(c, "Failed to load subscription", err)
	}
	return c.JSON(sub)
}

// HandleUploadCheck answers whether ?count more products may be added now.
func (sc *SubscriptionController) HandleUploadCheck(c *fiber.Ctx) error {
	count := c.QueryInt("count", 1)
	if count < 1 {
		return badRequest(c, "count must be at least 1")
	}
	decision, _, err := sc.billing.CanUpload(c.UserContext(), usercontext.GetUserID(c), count)
	if err != nil {
		return internalError(c, "Failed to check upload limits", err)
	}
	return c.JSON(uploadCheckResponse(decision))
}

func (sc *SubscriptionController) HandleCancel(c *fiber.Ctx) error {
	err := sc.billing.Cancel(c.UserContext(), usercontext.GetUserID(c))
	if errors.Is(err, billing.ErrNoActiveSubscription) {
		return notFound(c, "No active subscription")
	}
	if err != nil {
		return internalError(c, "Failed to cancel subscription", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func uploadCheckResponse(d entitlements.UploadDecision) fiber.Map {
	resp := fiber.Map{
		"allowed": d.Allowed,
		"reason":  d.Reason,
		"message": d.Message,
		"limits":  d.Limits,
	}
	if d.Limits != nil {
		resp["remainingProducts"] = d.Limits.RemainingProducts()
		resp["remainingUploads"] = d.Limits.RemainingUploads()
	}
	return resp
}

func planSaveError(c *fiber.Ctx, err error) error {
	if isValidationError(err) {
		return validationFailed(c, validatorMessages(err))
	}
	return internalError(c, "Failed to save plan", err)
}
