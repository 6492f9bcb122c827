package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/app/repository"
	"github.com/ManuelReschke/MarketFox/internal/pkg/shipping"
	"github.com/ManuelReschke/MarketFox/internal/pkg/usercontext"
)

type ShippingEstimator interface {
	Estimate(ctx context.Context, lines []shipping.CartLine, dest shipping.Destination) (*shipping.Estimate, error)
}

type ShippingController struct {
	zones     repository.ShippingZoneRepository
	estimator ShippingEstimator
}

func NewShippingController(zones repository.ShippingZoneRepository, estimator ShippingEstimator) *ShippingController {
	return &ShippingController{zones: zones, estimator: estimator}
}

type estimateRequest struct {
	Items       []shipping.CartLine  `json:"items"`
	Destination shipping.Destination `json:"destination"`
}

// HandleEstimate prices delivery of a cart. Open to anonymous callers.
func (sc *ShippingController) HandleEstimate(c *fiber.Ctx) error {
	var req estimateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid estimate body")
	}
	est, err := sc.estimator.Estimate(c.UserContext(), req.Items, req.Destination)
	switch {
	case errors.Is(err, shipping.ErrEmptyCart), errors.Is(err, shipping.ErrUnresolvableCart):
		return badRequest(c, err.Error())
	case err != nil:
		return internalError(c, "Failed to estimate shipping", err)
	}
	return c.JSON(est)
}

// zoneScope is global for admins and vendor for everybody else.
func zoneScope(caller usercontext.UserContext) (models.ZoneScope, string) {
	if caller.IsAdmin() {
		return models.ZoneScopeGlobal, ""
	}
	return models.ZoneScopeVendor, caller.UserID
}

// HandleListZones lists the caller's zones, active or not.
func (sc *ShippingController) HandleListZones(c *fiber.Ctx) error {
	scope, vendorID := zoneScope(usercontext.GetUserContext(c))
	zones, err := sc.zones.ListByOwner(scope, vendorID)
	if err != nil {
		return internalError(c, "Failed to load shipping zones", err)
	}
	return c.JSON(fiber.Map{"zones": zones})
}

// HandleCreateZone stores a zone owned by the caller.
func (sc *ShippingController) HandleCreateZone(c *fiber.Ctx) error {
	zone := models.ShippingZone{IsActive: true, Priority: 100}
	if err := c.BodyParser(&zone); err != nil {
		return badRequest(c, "Invalid zone body")
	}
	zone.ID = ""
	sc.own(c, &zone)
	zone.Sanitize()
	if err := zone.Validate(); err != nil {
		return validationFailed(c, validatorMessages(err))
	}
	if err := sc.zones.Create(&zone); err != nil {
		return internalError(c, "Failed to create shipping zone", err)
	}
	return c.Status(fiber.StatusCreated).JSON(zone)
}

// HandleUpdateZone replaces a zone's fields. Ownership cannot change.
func (sc *ShippingController) HandleUpdateZone(c *fiber.Ctx) error {
	zone, err := sc.ownedZone(c)
	if err != nil || zone == nil {
		return err
	}
	id, createdAt := zone.ID, zone.CreatedAt
	if err := c.BodyParser(zone); err != nil {
		return badRequest(c, "Invalid zone body")
	}
	zone.ID, zone.CreatedAt = id, createdAt
	sc.own(c, zone)
	zone.Sanitize()
	if err := zone.Validate(); err != nil {
		return validationFailed(c, validatorMessages(err))
	}
	if err := sc.zones.Update(zone); err != nil {
		return internalError(c, "Failed to update shipping zone", err)
	}
	return c.JSON(zone)
}

func (sc *ShippingController) HandleDeleteZone(c *fiber.Ctx) error {
	zone, err := sc.ownedZone(c)
	if err != nil || zone == nil {
		return err
	}
	if err := sc.zones.Delete(zone.ID); err != nil {
		return storeError(c, "Shipping zone", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (sc *ShippingController) own(c *fiber.Ctx, zone *models.ShippingZone) {
	scope, vendorID := zoneScope(usercontext.GetUserContext(c))
	zone.Scope = scope
	zone.VendorID = nil
	if vendorID != "" {
		zone.VendorID = &vendorID
	}
}

// ownedZone loads the :id zone if the caller owns it. On failure the response
// is already written and the zone is nil.
func (sc *ShippingController) ownedZone(c *fiber.Ctx) (*models.ShippingZone, error) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return nil, notFound(c, "Shipping zone not found")
	}
	zone, err := sc.zones.GetByID(id)
	if err != nil {
		return nil, storeError(c, "Shipping zone", err)
	}
	scope, vendorID := zoneScope(usercontext.GetUserContext(c))
	if zone.Scope != scope || (scope == models.ZoneScopeVendor && (zone.VendorID == nil || *zone.VendorID != vendorID)) {
		return nil, notFound(c, "Shipping zone not found")
	}
	return zone, nil
}
