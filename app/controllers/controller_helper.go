package controllers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/MarketFox/app/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return errorJSON(c, fiber.StatusBadRequest, "bad_request", message)
}

func notFound(c *fiber.Ctx, message string) error {
	return errorJSON(c, fiber.StatusNotFound, "not_found", message)
}

func forbidden(c *fiber.Ctx, message string) error {
	return errorJSON(c, fiber.StatusForbidden, "forbidden", message)
}

// validationFailed answers 422 with the individual rule violations.
func validationFailed(c *fiber.Ctx, errs []string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error":   "validation_failed",
		"message": strings.Join(errs, "; "),
		"errors":  errs,
	})
}

// internalError logs err once and hides it from the client.
func internalError(c *fiber.Ctx, message string, err error) error {
	fiberlog.Errorf("%s %s: %s: %v", c.Method(), c.Path(), message, err)
	return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", message)
}

// storeError maps repository errors to 404 or 500.
func storeError(c *fiber.Ctx, what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, what+" not found")
	}
	return internalError(c, "Failed to load "+strings.ToLower(what), err)
}

func isValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// validatorMessages flattens validator errors into field messages.
func validatorMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			out = append(out, fe.Namespace()+" failed "+fe.Tag()+"="+fe.Param())
			continue
		}
		out = append(out, fe.Namespace()+" failed "+fe.Tag())
	}
	return out
}

// objectIDParam reads a 24-hex id route parameter.
func objectIDParam(c *fiber.Ctx, name string) (string, bool) {
	return models.NormalizeObjectID(c.Params(name))
}

// pagination reads ?page and ?limit, 1-based.
func pagination(c *fiber.Ctx) (offset, limit int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit = c.QueryInt("limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return (page - 1) * limit, limit
}

// GetClientIP determines the client address behind Cloudflare or another
// proxy. The first address of X-Forwarded-For is the original client.
func GetClientIP(c *fiber.Ctx) string {
	if ip := strings.TrimSpace(c.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
		return ip
	}
	// For ::ffff: IPv4-mapped-IPv6 addresses
	return strings.TrimPrefix(c.IP(), "::ffff:")
}
