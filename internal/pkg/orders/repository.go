package orders

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/MarketFox/app/models"
)

// StockChange moves stock of a product, or of one of its variations, by Delta.
type StockChange struct {
	ProductID string
	Variation string
	Delta     int
}

// Repository provides DB operations used by the order service.
type Repository interface {
	LoadProducts(ids []string) ([]models.Product, error)
	Create(order *models.Order, changes []StockChange) error
	Get(id string) (*models.Order, error)
	SaveStatus(order *models.Order, changes []StockChange) error
	ListForEarnings(vendorID string, from, to *time.Time) ([]models.Order, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates an order repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) LoadProducts(ids []string) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&products).Error
	return products, err
}

// Create applies the stock changes and stores the order with its items in one
// transaction. Products are row locked while their stock is checked.
func (r *gormRepository) Create(order *models.Order, changes []StockChange) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := applyStock(tx, changes); err != nil {
			return err
		}
		return tx.Create(order).Error
	})
}

func (r *gormRepository) Get(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// SaveStatus stores the order's status fields and applies stock changes together.
func (r *gormRepository) SaveStatus(order *models.Order, changes []StockChange) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := applyStock(tx, changes); err != nil {
			return err
		}
		return tx.Model(order).Select("order_status", "payment_status", "updated_at").Updates(order).Error
	})
}

func (r *gormRepository) ListForEarnings(vendorID string, from, to *time.Time) ([]models.Order, error) {
	var orders []models.Order
	q := r.db.Model(&models.Order{}).Order("created_at ASC")
	if vendorID != "" {
		q = q.Where("id IN (?)", r.db.Model(&models.OrderItem{}).Select("order_id").Where("vendor_id = ?", vendorID))
	}
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at <= ?", *to)
	}
	err := q.Preload("Items").Find(&orders).Error
	return orders, err
}

func applyStock(tx *gorm.DB, changes []StockChange) error {
	for _, c := range changes {
		var p models.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", c.ProductID).First(&p).Error
		if err != nil {
			return fmt.Errorf("lock product %s: %w", c.ProductID, err)
		}
		if err := adjustStock(&p, c); err != nil {
			return err
		}
		if err := tx.Model(&p).Select("stock", "variations").Updates(&p).Error; err != nil {
			return err
		}
	}
	return nil
}

// adjustStock applies c to p in memory. Negative deltas fail with
// ErrOutOfStock unless the product accepts backorders.
func adjustStock(p *models.Product, c StockChange) error {
	if c.Variation != "" {
		i, v := p.FindVariation(c.Variation)
		if v == nil {
			return fmt.Errorf("%w: %s / %s", ErrVariationNotFound, p.ID, c.Variation)
		}
		if c.Delta < 0 && !p.AllowBackorder && v.Stock+c.Delta < 0 {
			return fmt.Errorf("%w: %s (%s)", ErrOutOfStock, strings.TrimSpace(p.Name), v.Label)
		}
		p.Variations[i].Stock += c.Delta
		p.Stock += c.Delta
		return nil
	}
	if c.Delta < 0 && !p.AllowBackorder && p.Stock+c.Delta < 0 {
		return fmt.Errorf("%w: %s", ErrOutOfStock, strings.TrimSpace(p.Name))
	}
	p.Stock += c.Delta
	return nil
}
