package controllers

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/app/repository"
	"github.com/ManuelReschke/MarketFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/MarketFox/internal/pkg/metrics"
	"github.com/ManuelReschke/MarketFox/internal/pkg/pricing"
	"github.com/ManuelReschke/MarketFox/internal/pkg/slug"
	"github.com/ManuelReschke/MarketFox/internal/pkg/usercontext"
)

const (
	errProductName = "Product name is required"
	maxBulkRows    = 100
	slugAttempts   = 5
)

// UploadGuard decides and records vendor uploads against their subscription.
type UploadGuard interface {
	CanUpload(ctx context.Context, vendorID string, requested int) (entitlements.UploadDecision, *models.VendorSubscription, error)
	RecordUpload(ctx context.Context, sub *models.VendorSubscription, count int) error
}

type ProductController struct {
	products repository.ProductRepository
	guard    UploadGuard
}

func NewProductController(products repository.ProductRepository, guard UploadGuard) *ProductController {
	return &ProductController{products: products, guard: guard}
}

type bulkRowResult struct {
	Index     int             `json:"index"`
	Product   *models.Product `json:"product,omitempty"`
	Errors    []string        `json:"errors,omitempty"`
	Clamped   []string        `json:"clamped,omitempty"`
	Persisted bool            `json:"persisted"`
}

// normalize runs the pricing normalizer and adds the name requirement.
func normalize(in pricing.Input, existing *models.Product, excludedID string) (pricing.Payload, []string) {
	payload, errs := pricing.Normalize(in, existing, excludedID)
	if payload.Name == "" {
		errs = append([]string{errProductName}, errs...)
	}
	if len(errs) > 0 {
		metrics.NormalizationFailure()
	}
	return payload, errs
}

// HandlePreview normalizes a product body without storing it.
func (pc *ProductController) HandlePreview(c *fiber.Ctx) error {
	var in pricing.Input
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid product body")
	}
	payload, errs := normalize(in, nil, "")
	return c.JSON(fiber.Map{"product": payload, "errors": errs, "clamped": payload.Clamped})
}

// HandleCreate stores one product for the calling vendor after the upload check.
func (pc *ProductController) HandleCreate(c *fiber.Ctx) error {
	var in pricing.Input
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid product body")
	}
	caller := usercontext.GetUserContext(c)

	decision, sub, err := pc.checkUpload(c.UserContext(), caller, 1)
	if err != nil {
		return internalError(c, "Failed to check upload limits", err)
	}
	if !decision.Allowed {
		return uploadDenied(c, decision)
	}

	payload, errs := normalize(in, nil, "")
	if len(errs) > 0 {
		return validationFailed(c, errs)
	}

	product := pc.newProduct(caller, payload)
	if err := pc.assignSlug(product); err != nil {
		return internalError(c, "Failed to create product", err)
	}
	if err := pc.products.Create(product); err != nil {
		return internalError(c, "Failed to create product", err)
	}
	if err := pc.guard.RecordUpload(c.UserContext(), sub, 1); err != nil {
		fiberlog.Errorf("products: record upload for vendor %s: %v", caller.UserID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"product": product, "clamped": payload.Clamped})
}

// HandleBulkCreate checks the whole batch against the upload limits, then
// stores the rows that normalize cleanly. Rejected rows are reported by index.
func (pc *ProductController) HandleBulkCreate(c *fiber.Ctx) error {
	var body struct {
		Products []pricing.Input `json:"products"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid bulk body")
	}
	if len(body.Products) == 0 {
		return badRequest(c, "No products given")
	}
	if len(body.Products) > maxBulkRows {
		return badRequest(c, fmt.Sprintf("At most %d products per request", maxBulkRows))
	}
	caller := usercontext.GetUserContext(c)

	decision, sub, err := pc.checkUpload(c.UserContext(), caller, len(body.Products))
	if err != nil {
		return internalError(c, "Failed to check upload limits", err)
	}
	if !decision.Allowed {
		return uploadDenied(c, decision)
	}

	results := make([]bulkRowResult, len(body.Products))
	accepted := make([]models.Product, 0, len(body.Products))
	acceptedRows := make([]int, 0, len(body.Products))
	for i, in := range body.Products {
		payload, errs := normalize(in, nil, "")
		results[i] = bulkRowResult{Index: i, Errors: errs, Clamped: payload.Clamped}
		if len(errs) > 0 {
			continue
		}
		product := pc.newProduct(caller, payload)
		if err := pc.assignSlug(product); err != nil {
			return internalError(c, "Failed to create products", err)
		}
		accepted = append(accepted, *product)
		acceptedRows = append(acceptedRows, i)
	}

	if err := pc.products.CreateBatch(accepted); err != nil {
		return internalError(c, "Failed to create products", err)
	}
	for j, row := range acceptedRows {
		p := accepted[j]
		results[row].Product = &p
		results[row].Persisted = true
	}
	if err := pc.guard.RecordUpload(c.UserContext(), sub, len(accepted)); err != nil {
		fiberlog.Errorf("products: record %d uploads for vendor %s: %v", len(accepted), caller.UserID, err)
	}

	status := fiber.StatusCreated
	if len(accepted) == 0 {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{
		"created":  len(accepted),
		"rejected": len(body.Products) - len(accepted),
		"results":  results,
	})
}

// HandleUpdate normalizes the body against the stored product. Edits do not
// count as uploads.
func (pc *ProductController) HandleUpdate(c *fiber.Ctx) error {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return notFound(c, "Product not found")
	}
	var in pricing.Input
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid product body")
	}

	existing, err := pc.products.GetByID(id)
	if err != nil {
		return storeError(c, "Product", err)
	}
	caller := usercontext.GetUserContext(c)
	if !caller.IsAdmin() && existing.VendorKey() != caller.UserID {
		return notFound(c, "Product not found")
	}

	payload, errs := normalize(in, existing, existing.ID)
	if len(errs) > 0 {
		return validationFailed(c, errs)
	}
	payload.ApplyTo(existing)
	if err := pc.products.Update(existing); err != nil {
		return internalError(c, "Failed to update product", err)
	}
	return c.JSON(fiber.Map{"product": existing, "clamped": payload.Clamped})
}

// HandleList returns the caller's products, newest first.
func (pc *ProductController) HandleList(c *fiber.Ctx) error {
	caller := usercontext.GetUserContext(c)
	offset, limit := pagination(c)
	products, err := pc.products.GetByVendorID(caller.UserID, offset, limit)
	if err != nil {
		return internalError(c, "Failed to load products", err)
	}
	total, err := pc.products.CountByVendorID(caller.UserID)
	if err != nil {
		return internalError(c, "Failed to load products", err)
	}
	return c.JSON(fiber.Map{"products": products, "total": total, "offset": offset, "limit": limit})
}

// checkUpload gates vendors. Admins add platform products without a plan.
func (pc *ProductController) checkUpload(ctx context.Context, caller usercontext.UserContext, n int) (entitlements.UploadDecision, *models.VendorSubscription, error) {
	if caller.IsAdmin() {
		return entitlements.UploadDecision{Allowed: true, Reason: entitlements.ReasonNoEnforcement}, nil, nil
	}
	return pc.guard.CanUpload(ctx, caller.UserID, n)
}

func (pc *ProductController) newProduct(caller usercontext.UserContext, payload pricing.Payload) *models.Product {
	product := &models.Product{ID: models.NewObjectID(), IsActive: true}
	if !caller.IsAdmin() {
		vendorID := caller.UserID
		product.VendorID = &vendorID
	}
	payload.ApplyTo(product)
	return product
}

func (pc *ProductController) assignSlug(p *models.Product) error {
	for i := 0; i < slugAttempts; i++ {
		candidate, err := slug.New(p.Name)
		if err != nil {
			return err
		}
		taken, err := pc.products.SlugExists(candidate)
		if err != nil {
			return err
		}
		if !taken {
			p.Slug = candidate
			return nil
		}
	}
	return fmt.Errorf("no free slug for %q after %d attempts", strings.TrimSpace(p.Name), slugAttempts)
}

func uploadDenied(c *fiber.Ctx, d entitlements.UploadDecision) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error":   d.Reason,
		"message": d.Message,
		"limits":  d.Limits,
	})
}
