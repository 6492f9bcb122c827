package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type ZoneScope string

const (
	ZoneScopeGlobal ZoneScope = "global"
	ZoneScopeVendor ZoneScope = "vendor"
)

// ShippingRule prices delivery to a location for a subtotal band.
// Empty location fields are wildcards; a nil MaxSubtotal is unbounded.
type ShippingRule struct {
	ID               string   `json:"id"`
	Label            string   `json:"label" validate:"max=120"`
	Country          string   `json:"country" validate:"max=100"`
	District         string   `json:"district" validate:"max=100"`
	City             string   `json:"city" validate:"max=100"`
	MinSubtotal      float64  `json:"minSubtotal" validate:"min=0"`
	MaxSubtotal      *float64 `json:"maxSubtotal"`
	ShippingFee      float64  `json:"shippingFee" validate:"min=0"`
	EstimatedMinDays int      `json:"estimatedMinDays" validate:"min=0"`
	EstimatedMaxDays int      `json:"estimatedMaxDays" validate:"min=0,gtefield=EstimatedMinDays"`
	IsActive         bool     `json:"isActive"`
}

type ShippingZone struct {
	ID        string         `gorm:"type:char(24);primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=1,max=150"`
	Scope     ZoneScope      `gorm:"type:varchar(10);not null;index:idx_shipping_zones_lookup,priority:1" json:"scope" validate:"oneof=global vendor"`
	VendorID  *string        `gorm:"type:char(24);index:idx_shipping_zones_lookup,priority:2" json:"vendorId"`
	Priority  int            `gorm:"not null;default:100;index:idx_shipping_zones_lookup,priority:4" json:"priority"`
	IsActive  bool           `gorm:"default:true;index:idx_shipping_zones_lookup,priority:3" json:"isActive"`
	Rules     []ShippingRule `gorm:"type:json;serializer:json" json:"rules" validate:"dive"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (z *ShippingZone) BeforeCreate(tx *gorm.DB) error {
	ensureObjectID(&z.ID)
	return nil
}

// Sanitize trims location fields, clamps negative amounts to zero, raises
// EstimatedMaxDays to EstimatedMinDays and assigns ids to new rules.
func (z *ShippingZone) Sanitize() {
	z.Name = strings.TrimSpace(z.Name)
	if z.Scope == ZoneScopeGlobal {
		z.VendorID = nil
	}
	for i := range z.Rules {
		r := &z.Rules[i]
		ensureObjectID(&r.ID)
		r.Label = strings.TrimSpace(r.Label)
		r.Country = strings.TrimSpace(r.Country)
		r.District = strings.TrimSpace(r.District)
		r.City = strings.TrimSpace(r.City)
		r.MinSubtotal = max(r.MinSubtotal, 0)
		r.ShippingFee = max(r.ShippingFee, 0)
		r.EstimatedMinDays = max(r.EstimatedMinDays, 0)
		if r.EstimatedMaxDays < r.EstimatedMinDays {
			r.EstimatedMaxDays = r.EstimatedMinDays
		}
	}
}

func (z *ShippingZone) Validate() error {
	v := validator.New()
	if err := v.Struct(z); err != nil {
		return err
	}
	if z.Scope == ZoneScopeVendor && (z.VendorID == nil || *z.VendorID == "") {
		return errors.New("vendor zones require a vendor")
	}
	for i, r := range z.Rules {
		if r.MaxSubtotal != nil && *r.MaxSubtotal < r.MinSubtotal {
			return fmt.Errorf("rule %d: maxSubtotal must not be lower than minSubtotal", i)
		}
	}
	return nil
}
