package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusPending   = "pending"
)

// SubscriptionPlan is a purchasable vendor tier. Zero limits mean unlimited.
type SubscriptionPlan struct {
	ID                 string         `gorm:"type:char(24);primaryKey" json:"id"`
	Name               string         `gorm:"type:varchar(120);not null" json:"name" validate:"required,min=1,max=120"`
	Description        string         `gorm:"type:text" json:"description"`
	Price              float64        `gorm:"type:decimal(12,2);not null;default:0" json:"price" validate:"min=0"`
	DurationDays       int            `gorm:"not null;default:30" json:"durationDays" validate:"min=1"`
	MaxProducts        int            `gorm:"not null;default:0" json:"maxProducts" validate:"min=0"`
	MaxUploadsPerMonth int            `gorm:"not null;default:0" json:"maxUploadsPerMonth" validate:"min=0"`
	CommissionType     CommissionType `gorm:"type:varchar(20);not null;default:'percentage'" json:"commissionType" validate:"oneof=percentage fixed hybrid"`
	CommissionValue    float64        `gorm:"type:decimal(12,2);default:0" json:"commissionValue" validate:"min=0"`
	CommissionFixed    float64        `gorm:"type:decimal(12,2);default:0" json:"commissionFixed" validate:"min=0"`
	IsActive           bool           `gorm:"default:true;index" json:"isActive"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *SubscriptionPlan) BeforeCreate(tx *gorm.DB) error {
	ensureObjectID(&p.ID)
	return nil
}

func (p *SubscriptionPlan) Validate() error {
	v := validator.New()
	return v.Struct(p)
}

// VendorSubscription snapshots plan limits and commission at subscribe time.
// MonthlyUploadCount belongs to the calendar month in MonthlyUploadPeriod (YYYY-MM).
type VendorSubscription struct {
	ID                  string           `gorm:"type:char(24);primaryKey" json:"id"`
	VendorID            string           `gorm:"type:char(24);not null;index:idx_vendor_subscriptions_current,priority:1" json:"vendorId"`
	PlanID              string           `gorm:"type:char(24);not null;index" json:"planId"`
	Plan                SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan"`
	Status              string           `gorm:"type:varchar(20);not null;default:'active';index:idx_vendor_subscriptions_current,priority:2" json:"status"`
	StartsAt            time.Time        `json:"startsAt"`
	ExpiresAt           time.Time        `gorm:"index:idx_vendor_subscriptions_current,priority:3" json:"expiresAt"`
	MaxProducts         int              `gorm:"not null;default:0" json:"maxProducts"`
	MaxUploadsPerMonth  int              `gorm:"not null;default:0" json:"maxUploadsPerMonth"`
	MonthlyUploadCount  int              `gorm:"not null;default:0" json:"monthlyUploadCount"`
	MonthlyUploadPeriod string           `gorm:"type:char(7);default:''" json:"monthlyUploadPeriod"`
	CommissionType      CommissionType   `gorm:"type:varchar(20);not null;default:'percentage'" json:"commissionType"`
	CommissionValue     float64          `gorm:"type:decimal(12,2);default:0" json:"commissionValue"`
	CommissionFixed     float64          `gorm:"type:decimal(12,2);default:0" json:"commissionFixed"`
	CancelledAt         *time.Time       `json:"cancelledAt,omitempty"`
	CreatedAt           time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (s *VendorSubscription) BeforeCreate(tx *gorm.DB) error {
	ensureObjectID(&s.ID)
	return nil
}

// IsCurrent reports whether the subscription is active and not past its expiry at now.
func (s *VendorSubscription) IsCurrent(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && s.ExpiresAt.After(now)
}
