package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/orders"
	"github.com/ManuelReschke/MarketFox/internal/pkg/shipping"
	"github.com/ManuelReschke/MarketFox/internal/pkg/usercontext"
)

type OrderService interface {
	Place(ctx context.Context, customerID string, in orders.PlaceInput) (*models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Order, error)
}

type OrderController struct {
	orders OrderService
}

func NewOrderController(svc OrderService) *OrderController {
	return &OrderController{orders: svc}
}

func (oc *OrderController) HandlePlace(c *fiber.Ctx) error {
	var in orders.PlaceInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid order body")
	}
	order, err := oc.orders.Place(c.UserContext(), usercontext.GetUserID(c), in)
	if err != nil {
		return orderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGet returns an order to its customer, to admins and to vendors with
// items in it. Everybody else gets 404.
func (oc *OrderController) HandleGet(c *fiber.Ctx) error {
	order, err := oc.orders.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return orderError(c, err)
	}
	caller := usercontext.GetUserContext(c)
	if !caller.IsAdmin() && order.CustomerID != caller.UserID && !order.HasVendor(caller.UserID) {
		return notFound(c, "Order not found")
	}
	return c.JSON(order)
}

func (oc *OrderController) HandleUpdateStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil || body.Status == "" {
		return badRequest(c, "status is required")
	}
	order, err := oc.orders.UpdateStatus(c.UserContext(), c.Params("id"), body.Status)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(order)
}

func orderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		return notFound(c, "Order not found")
	case errors.Is(err, orders.ErrProductNotFound),
		errors.Is(err, orders.ErrVariationNotFound):
		return errorJSON(c, fiber.StatusUnprocessableEntity, "unknown_item", err.Error())
	case errors.Is(err, orders.ErrNotPurchasable),
		errors.Is(err, orders.ErrVariationRequired):
		return errorJSON(c, fiber.StatusUnprocessableEntity, "not_purchasable", err.Error())
	case errors.Is(err, orders.ErrOutOfStock):
		return errorJSON(c, fiber.StatusConflict, "out_of_stock", err.Error())
	case errors.Is(err, orders.ErrInvalidTransition):
		return errorJSON(c, fiber.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, orders.ErrUnknownStatus):
		return badRequest(c, err.Error())
	case errors.Is(err, shipping.ErrEmptyCart), errors.Is(err, shipping.ErrUnresolvableCart):
		return badRequest(c, err.Error())
	case isValidationError(err):
		return validationFailed(c, validatorMessages(err))
	}
	return internalError(c, "Failed to process order", err)
}
