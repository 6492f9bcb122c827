package controllers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/app/repository"
	"github.com/ManuelReschke/MarketFox/internal/pkg/statistics"
)

// StatsProvider returns the dashboard totals.
type StatsProvider interface {
	Get(ctx context.Context) (statistics.Data, error)
}

// AdminController handles user administration using the repository pattern
type AdminController struct {
	repos *repository.Repositories
	stats StatsProvider
}

// NewAdminController creates a new admin controller with repository dependencies
func NewAdminController(repos *repository.Repositories, stats StatsProvider) *AdminController {
	return &AdminController{
		repos: repos,
		stats: stats,
	}
}

// HandleDashboard returns the cached marketplace totals
func (ac *AdminController) HandleDashboard(c *fiber.Ctx) error {
	data, err := ac.stats.Get(c.UserContext())
	if err != nil {
		return internalError(c, "Failed to load statistics", err)
	}
	return c.JSON(data)
}

// HandleUsers lists users with their product and order counts. ?q searches
// by name, email or store name.
func (ac *AdminController) HandleUsers(c *fiber.Ctx) error {
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		users, err := ac.repos.User.Search(q)
		if err != nil {
			return internalError(c, "Failed to search users", err)
		}
		return c.JSON(fiber.Map{"users": users, "total": len(users)})
	}

	offset, limit := pagination(c)
	totalUsers, err := ac.repos.User.Count()
	if err != nil {
		return internalError(c, "Failed to get user count", err)
	}
	usersWithStats, err := ac.repos.User.GetWithStats(offset, limit)
	if err != nil {
		return internalError(c, "Failed to get users with statistics", err)
	}

	rows := make([]fiber.Map, len(usersWithStats))
	for i, u := range usersWithStats {
		rows[i] = fiber.Map{
			"user":          u.User,
			"product_count": u.ProductCount,
			"order_count":   u.OrderCount,
		}
	}
	return c.JSON(fiber.Map{"users": rows, "total": totalUsers, "offset": offset, "limit": limit})
}

type userInput struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Role      *string `json:"role"`
	Status    *string `json:"status"`
	StoreName *string `json:"store_name"`
}

func (in userInput) apply(u *models.User) {
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Role != nil {
		u.Role = strings.TrimSpace(*in.Role)
	}
	if in.Status != nil {
		u.Status = strings.TrimSpace(*in.Status)
	}
	if in.StoreName != nil {
		u.StoreName = strings.TrimSpace(*in.StoreName)
	}
}

// HandleUserCreate creates an account. Accounts are provisioned by admins.
func (ac *AdminController) HandleUserCreate(c *fiber.Ctx) error {
	var in userInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid user body")
	}
	user := models.User{Role: models.ROLE_CUSTOMER, Status: models.STATUS_ACTIVE}
	in.apply(&user)
	if err := user.Validate(); err != nil {
		return validationFailed(c, validatorMessages(err))
	}
	if _, err := ac.repos.User.GetByEmail(user.Email); err == nil {
		return errorJSON(c, fiber.StatusConflict, "conflict", "Email already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return internalError(c, "Failed to create user", err)
	}
	if err := ac.repos.User.Create(&user); err != nil {
		return internalError(c, "Failed to create user", err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleUserUpdate changes profile, role or status of a user
func (ac *AdminController) HandleUserUpdate(c *fiber.Ctx) error {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return notFound(c, "User not found")
	}
	user, err := ac.repos.User.GetByID(id)
	if err != nil {
		return storeError(c, "User", err)
	}
	var in userInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid user body")
	}
	in.apply(user)
	if err := user.Validate(); err != nil {
		return validationFailed(c, validatorMessages(err))
	}
	if err := ac.repos.User.Update(user); err != nil {
		return internalError(c, "Failed to update user", err)
	}
	return c.JSON(user)
}

// HandleIssueAPIKey creates a key for the user. The raw key is only returned here.
func (ac *AdminController) HandleIssueAPIKey(c *fiber.Ctx) error {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return notFound(c, "User not found")
	}
	user, err := ac.repos.User.GetByID(id)
	if err != nil {
		return storeError(c, "User", err)
	}
	key := models.APIKey{UserID: user.ID}
	raw, err := key.Issue()
	if err != nil {
		return internalError(c, "Failed to generate API key", err)
	}
	if err := ac.repos.User.CreateAPIKey(&key); err != nil {
		return internalError(c, "Failed to store API key", err)
	}
	fiberlog.Infof("admin: issued api key %s for user %s", key.KeyPrefix, user.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"api_key":    raw,
		"key_prefix": key.KeyPrefix,
		"user_id":    user.ID,
	})
}
