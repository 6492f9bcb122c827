package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/MarketFox/app/models"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByAPIKeyHash resolves an active API key hash to its user and key record.
func (r *userRepository) GetByAPIKeyHash(hash string) (*models.User, *models.APIKey, error) {
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, nil, gorm.ErrRecordNotFound
	}
	var key models.APIKey
	err := r.db.Preload("User").
		Where("key_hash = ? AND revoked_at IS NULL", trimmed).
		First(&key).Error
	if err != nil {
		return nil, nil, err
	}
	if key.User.ID == "" {
		return nil, nil, gorm.ErrRecordNotFound
	}
	user := key.User
	return &user, &key, nil
}

// GetStoreNames maps user ids to their display names. Unknown ids are absent.
func (r *userRepository) GetStoreNames(ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var users []models.User
	if err := r.db.Select("id", "name", "store_name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		names[users[i].ID] = users[i].DisplayName()
	}
	return names, nil
}

// CreateAPIKey stores a freshly issued key
func (r *userRepository) CreateAPIKey(key *models.APIKey) error {
	return r.db.Create(key).Error
}

// TouchAPIKey records when a key was last used
func (r *userRepository) TouchAPIKey(id uint, at time.Time) error {
	return r.db.Model(&models.APIKey{}).Where("id = ?", id).Update("last_used_at", at).Error
}

// Update updates an existing user
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// List retrieves users with pagination
func (r *userRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// Search searches users by name, email or store name
func (r *userRepository) Search(query string) ([]models.User, error) {
	var users []models.User
	like := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("name LIKE ? OR email LIKE ? OR store_name LIKE ?", like, like, like).
		Order("created_at DESC").Limit(100).Find(&users).Error
	return users, err
}

// GetWithStats returns a page of users with their product and order counts
func (r *userRepository) GetWithStats(offset, limit int) ([]UserWithStats, error) {
	users, err := r.List(offset, limit)
	if err != nil {
		return nil, err
	}
	result := make([]UserWithStats, 0, len(users))
	for _, u := range users {
		row := UserWithStats{User: u}
		if err := r.db.Model(&models.Product{}).Where("vendor_id = ?", u.ID).Count(&row.ProductCount).Error; err != nil {
			return nil, err
		}
		if err := r.db.Model(&models.Order{}).Where("customer_id = ?", u.ID).Count(&row.OrderCount).Error; err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, nil
}
