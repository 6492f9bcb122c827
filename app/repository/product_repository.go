package repository

import (
	"gorm.io/gorm"

	"github.com/ManuelReschke/MarketFox/app/models"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// CreateBatch inserts all products or none
func (r *productRepository) CreateBatch(products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&products).Error
	})
}

func (r *productRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByIDs returns the products found for ids; missing ids are skipped
func (r *productRepository) GetByIDs(ids []string) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepository) GetByVendorID(vendorID string, offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepository) CountByVendorID(vendorID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Where("vendor_id = ?", vendorID).Count(&count).Error
	return count, err
}

// SlugExists also sees soft deleted products since the unique index does
func (r *productRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&models.Product{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}
