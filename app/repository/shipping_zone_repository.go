package repository

import (
	"gorm.io/gorm"

	"github.com/ManuelReschke/MarketFox/app/models"
)

type shippingZoneRepository struct {
	db *gorm.DB
}

// NewShippingZoneRepository creates a new shipping zone repository instance
func NewShippingZoneRepository(db *gorm.DB) ShippingZoneRepository {
	return &shippingZoneRepository{db: db}
}

func (r *shippingZoneRepository) Create(zone *models.ShippingZone) error {
	return r.db.Create(zone).Error
}

func (r *shippingZoneRepository) Update(zone *models.ShippingZone) error {
	return r.db.Save(zone).Error
}

func (r *shippingZoneRepository) Delete(id string) error {
	res := r.db.Where("id = ?", id).Delete(&models.ShippingZone{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *shippingZoneRepository) GetByID(id string) (*models.ShippingZone, error) {
	var zone models.ShippingZone
	if err := r.db.Where("id = ?", id).First(&zone).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

// ListActive returns the active zones of a scope in matching order:
// priority ascending, then oldest first.
func (r *shippingZoneRepository) ListActive(scope models.ZoneScope, vendorID string) ([]models.ShippingZone, error) {
	var zones []models.ShippingZone
	err := r.scoped(scope, vendorID).
		Where("is_active = ?", true).
		Order("priority ASC").Order("created_at ASC").
		Find(&zones).Error
	return zones, err
}

// ListByOwner returns every zone of a scope, active or not
func (r *shippingZoneRepository) ListByOwner(scope models.ZoneScope, vendorID string) ([]models.ShippingZone, error) {
	var zones []models.ShippingZone
	err := r.scoped(scope, vendorID).
		Order("priority ASC").Order("created_at ASC").
		Find(&zones).Error
	return zones, err
}

func (r *shippingZoneRepository) scoped(scope models.ZoneScope, vendorID string) *gorm.DB {
	q := r.db.Where("scope = ?", scope)
	if scope == models.ZoneScopeVendor {
		q = q.Where("vendor_id = ?", vendorID)
	}
	return q
}
