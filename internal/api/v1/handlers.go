package apiv1

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/MarketFox/app/controllers"
	"github.com/ManuelReschke/MarketFox/app/repository"
	"github.com/ManuelReschke/MarketFox/internal/pkg/billing"
	"github.com/ManuelReschke/MarketFox/internal/pkg/cache"
	"github.com/ManuelReschke/MarketFox/internal/pkg/earnings"
	"github.com/ManuelReschke/MarketFox/internal/pkg/orders"
	"github.com/ManuelReschke/MarketFox/internal/pkg/shipping"
	"github.com/ManuelReschke/MarketFox/internal/pkg/statistics"
)

// Pong is the body of GET /ping.
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer bundles the controllers behind /api/v1.
type APIServer struct {
	Account       *controllers.AccountController
	Admin         *controllers.AdminController
	Products      *controllers.ProductController
	Shipping      *controllers.ShippingController
	Subscriptions *controllers.SubscriptionController
	Orders        *controllers.OrderController
	Earnings      *controllers.EarningsController
}

// NewAPIServer wires services and controllers over the repositories and db.
func NewAPIServer(repos *repository.Repositories, db *gorm.DB) *APIServer {
	subs := billing.NewServiceFromDB(db)
	estimator := shipping.NewEstimator(repos.Product, repos.ShippingZone, repos.User, shipping.DefaultsFromEnv())
	orderSvc := orders.NewServiceFromDB(db, estimator, subs)
	reports := earnings.NewService(orders.NewRepository(db), cache.Store{})

	return &APIServer{
		Account:       controllers.NewAccountController(repos.User, subs),
		Admin:         controllers.NewAdminController(repos, statistics.NewServiceFromDB(db)),
		Products:      controllers.NewProductController(repos.Product, subs),
		Shipping:      controllers.NewShippingController(repos.ShippingZone, estimator),
		Subscriptions: controllers.NewSubscriptionController(subs),
		Orders:        controllers.NewOrderController(orderSvc),
		Earnings:      controllers.NewEarningsController(reports),
	}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}
