package billing

import (
	"time"

	"github.com/ManuelReschke/MarketFox/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	ExpireOverdue(vendorID string, now time.Time) (int64, error)
	FindCurrent(vendorID string, now time.Time) (*models.VendorSubscription, error)
	ResetUploadPeriod(subscriptionID, period string) error
	AddUploads(subscriptionID, period string, count int) error
	CountActivePlans() (int64, error)
	CountVendorProducts(vendorID string) (int64, error)
	FindPlan(id string) (*models.SubscriptionPlan, error)
	ListPlans(activeOnly bool) ([]models.SubscriptionPlan, error)
	SavePlan(plan *models.SubscriptionPlan) error
	ReplaceActive(sub *models.VendorSubscription, now time.Time) error
	CancelActive(vendorID string, now time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ExpireOverdue(vendorID string, now time.Time) (int64, error) {
	tx := r.db.Model(&models.VendorSubscription{}).
		Where("vendor_id = ? AND status = ? AND expires_at <= ?", vendorID, models.SubscriptionStatusActive, now).
		Update("status", models.SubscriptionStatusExpired)
	return tx.RowsAffected, tx.Error
}

func (r *gormRepository) FindCurrent(vendorID string, now time.Time) (*models.VendorSubscription, error) {
	var sub models.VendorSubscription
	err := r.db.Preload("Plan").
		Where("vendor_id = ? AND status = ? AND expires_at > ?", vendorID, models.SubscriptionStatusActive, now).
		Order("expires_at DESC").Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ResetUploadPeriod starts a new counter period unless another request already did.
func (r *gormRepository) ResetUploadPeriod(subscriptionID, period string) error {
	return r.db.Model(&models.VendorSubscription{}).
		Where("id = ? AND monthly_upload_period <> ?", subscriptionID, period).
		Updates(map[string]interface{}{
			"monthly_upload_count":  0,
			"monthly_upload_period": period,
		}).Error
}

// AddUploads increments the counter in one statement. A row still holding an
// older period restarts at count. monthly_upload_count is assigned first so
// the CASE sees the stored period.
func (r *gormRepository) AddUploads(subscriptionID, period string, count int) error {
	return r.db.Exec(
		"UPDATE vendor_subscriptions SET "+
			"monthly_upload_count = CASE WHEN monthly_upload_period = ? THEN monthly_upload_count + ? ELSE ? END, "+
			"monthly_upload_period = ?, updated_at = ? WHERE id = ?",
		period, count, count, period, time.Now(), subscriptionID,
	).Error
}

func (r *gormRepository) CountActivePlans() (int64, error) {
	var n int64
	err := r.db.Model(&models.SubscriptionPlan{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

func (r *gormRepository) CountVendorProducts(vendorID string) (int64, error) {
	var n int64
	err := r.db.Model(&models.Product{}).Where("vendor_id = ?", vendorID).Count(&n).Error
	return n, err
}

func (r *gormRepository) FindPlan(id string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.db.Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) ListPlans(activeOnly bool) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	q := r.db.Order("price ASC").Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&plans).Error
	return plans, err
}

func (r *gormRepository) SavePlan(plan *models.SubscriptionPlan) error {
	return r.db.Save(plan).Error
}

// ReplaceActive cancels the vendor's active subscriptions and stores sub in one transaction.
func (r *gormRepository) ReplaceActive(sub *models.VendorSubscription, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.VendorSubscription{}).
			Where("vendor_id = ? AND status = ?", sub.VendorID, models.SubscriptionStatusActive).
			Updates(map[string]interface{}{
				"status":       models.SubscriptionStatusCancelled,
				"cancelled_at": now,
			}).Error; err != nil {
			return err
		}
		return tx.Omit("Plan").Create(sub).Error
	})
}

func (r *gormRepository) CancelActive(vendorID string, now time.Time) (int64, error) {
	tx := r.db.Model(&models.VendorSubscription{}).
		Where("vendor_id = ? AND status = ?", vendorID, models.SubscriptionStatusActive).
		Updates(map[string]interface{}{
			"status":       models.SubscriptionStatusCancelled,
			"cancelled_at": now,
		})
	return tx.RowsAffected, tx.Error
}
