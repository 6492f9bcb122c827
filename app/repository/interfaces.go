package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/MarketFox/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.APIKey, error)
	GetStoreNames(ids []string) (map[string]string, error)
	CreateAPIKey(key *models.APIKey) error
	TouchAPIKey(id uint, at time.Time) error
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
	GetWithStats(offset, limit int) ([]UserWithStats, error)
}

// ProductRepository defines the interface for catalog operations
type ProductRepository interface {
	Create(product *models.Product) error
	CreateBatch(products []models.Product) error
	Update(product *models.Product) error
	GetByID(id string) (*models.Product, error)
	GetByIDs(ids []string) ([]models.Product, error)
	GetByVendorID(vendorID string, offset, limit int) ([]models.Product, error)
	CountByVendorID(vendorID string) (int64, error)
	SlugExists(slug string) (bool, error)
}

// ShippingZoneRepository defines the interface for shipping zone operations
type ShippingZoneRepository interface {
	Create(zone *models.ShippingZone) error
	Update(zone *models.ShippingZone) error
	Delete(id string) error
	GetByID(id string) (*models.ShippingZone, error)
	ListActive(scope models.ZoneScope, vendorID string) ([]models.ShippingZone, error)
	ListByOwner(scope models.ZoneScope, vendorID string) ([]models.ShippingZone, error)
}

// UserWithStats represents a user with additional statistics
type UserWithStats struct {
	User         models.User
	ProductCount int64
	OrderCount   int64
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Product      ProductRepository
	ShippingZone ShippingZoneRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Product:      NewProductRepository(db),
		ShippingZone: NewShippingZoneRepository(db),
	}
}
