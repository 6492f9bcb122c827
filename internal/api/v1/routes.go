package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/internal/pkg/middleware"
)

// RegisterHandlers mounts every v1 endpoint on router. Authentication is by
// API key; role guards sit on the route groups.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	auth := middleware.APIKeyAuthMiddleware()
	optionalAuth := middleware.OptionalAPIKeyAuthMiddleware()
	vendorOnly := middleware.RequireRole(models.ROLE_VENDOR)
	adminOnly := middleware.RequireRole(models.ROLE_ADMIN)

	router.Get("/ping", s.GetPing)

	// public
	router.Post("/shipping/estimate", s.Shipping.HandleEstimate)
	router.Get("/plans", optionalAuth, s.Subscriptions.HandleListPlans)

	// any authenticated caller
	router.Get("/account", auth, s.Account.HandleGetUserAccount)
	router.Post("/orders", auth, s.Orders.HandlePlace)
	router.Get("/orders/:id", auth, s.Orders.HandleGet)

	vendor := router.Group("/vendor", auth, vendorOnly)
	vendor.Get("/products", s.Products.HandleList)
	vendor.Post("/products", s.Products.HandleCreate)
	vendor.Post("/products/preview", s.Products.HandlePreview)
	vendor.Post("/products/bulk", s.Products.HandleBulkCreate)
	vendor.Put("/products/:id", s.Products.HandleUpdate)

	vendor.Get("/shipping-zones", s.Shipping.HandleListZones)
	vendor.Post("/shipping-zones", s.Shipping.HandleCreateZone)
	vendor.Put("/shipping-zones/:id", s.Shipping.HandleUpdateZone)
	vendor.Delete("/shipping-zones/:id", s.Shipping.HandleDeleteZone)

	vendor.Get("/subscription", s.Subscriptions.HandleGetSubscription)
	vendor.Post("/subscription", s.Subscriptions.HandleSubscribe)
	vendor.Delete("/subscription", s.Subscriptions.HandleCancel)
	vendor.Get("/subscription/upload-check", s.Subscriptions.HandleUploadCheck)

	vendor.Get("/earnings", s.Earnings.HandleVendorEarnings)

	admin := router.Group("/admin", auth, adminOnly)
	admin.Get("/stats", s.Admin.HandleDashboard)
	admin.Get("/users", s.Admin.HandleUsers)
	admin.Post("/users", s.Admin.HandleUserCreate)
	admin.Put("/users/:id", s.Admin.HandleUserUpdate)
	admin.Post("/users/:id/api-keys", s.Admin.HandleIssueAPIKey)

	admin.Post("/plans", s.Subscriptions.HandleCreatePlan)
	admin.Put("/plans/:id", s.Subscriptions.HandleUpdatePlan)

	// global zones: the shipping controller scopes admins to global
	admin.Get("/shipping-zones", s.Shipping.HandleListZones)
	admin.Post("/shipping-zones", s.Shipping.HandleCreateZone)
	admin.Put("/shipping-zones/:id", s.Shipping.HandleUpdateZone)
	admin.Delete("/shipping-zones/:id", s.Shipping.HandleDeleteZone)

	admin.Patch("/orders/:id/status", s.Orders.HandleUpdateStatus)
	admin.Get("/earnings", s.Earnings.HandleAdminEarnings)
}
