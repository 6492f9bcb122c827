package models

import (
	"time"

	"gorm.io/gorm"
)

// MarketplaceType decides which pricing and stock rules apply to a product.
type MarketplaceType string

const (
	MarketplaceSimple   MarketplaceType = "simple"
	MarketplaceVariable MarketplaceType = "variable"
	MarketplaceDigital  MarketplaceType = "digital"
	MarketplaceService  MarketplaceType = "service"
	MarketplaceGrouped  MarketplaceType = "grouped"
)

// PriceType is single fixed price, best price (regular + sale) or to be announced.
type PriceType string

const (
	PriceSingle PriceType = "single"
	PriceBest   PriceType = "best"
	PriceTBA    PriceType = "tba"
)

type CommissionType string

const (
	CommissionInherit    CommissionType = "inherit"
	CommissionPercentage CommissionType = "percentage"
	CommissionFixed      CommissionType = "fixed"
	CommissionHybrid     CommissionType = "hybrid"
)

const (
	RecurringDay   = "day"
	RecurringWeek  = "week"
	RecurringMonth = "month"
	RecurringYear  = "year"
)

// ProductVariation is one purchasable option of a variable product.
type ProductVariation struct {
	Label      string            `json:"label"`
	SKU        string            `json:"sku,omitempty"`
	Price      float64           `json:"price"`
	SalePrice  *float64          `json:"salePrice"`
	Stock      int               `json:"stock"`
	IsActive   bool              `json:"isActive"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// EffectivePrice is the sale price when set, otherwise the regular price.
func (v ProductVariation) EffectivePrice() float64 {
	if v.SalePrice != nil {
		return *v.SalePrice
	}
	return v.Price
}

type Product struct {
	ID                     string             `gorm:"type:char(24);primaryKey" json:"id"`
	VendorID               *string            `gorm:"type:char(24);index" json:"vendorId"`
	Name                   string             `gorm:"type:varchar(255);not null" json:"name"`
	Slug                   string             `gorm:"type:varchar(255);uniqueIndex" json:"slug"`
	Description            string             `gorm:"type:text" json:"description"`
	MarketplaceType        MarketplaceType    `gorm:"type:varchar(20);not null;default:'simple'" json:"marketplaceType"`
	PriceType              PriceType          `gorm:"type:varchar(20);not null;default:'single'" json:"priceType"`
	Price                  float64            `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	SalePrice              *float64           `gorm:"type:decimal(12,2);default:null" json:"salePrice"`
	Stock                  int                `gorm:"not null;default:0" json:"stock"`
	AllowBackorder         bool               `gorm:"default:false" json:"allowBackorder"`
	Variations             []ProductVariation `gorm:"type:json;serializer:json" json:"variations"`
	GroupedProducts        []string           `gorm:"type:json;serializer:json" json:"groupedProducts"`
	DownloadURL            string             `gorm:"type:varchar(1024);default:''" json:"downloadUrl"`
	CommissionType         CommissionType     `gorm:"type:varchar(20);not null;default:'inherit'" json:"commissionType"`
	CommissionValue        float64            `gorm:"type:decimal(12,2);default:0" json:"commissionValue"`
	CommissionFixed        float64            `gorm:"type:decimal(12,2);default:0" json:"commissionFixed"`
	IsRecurring            bool               `gorm:"default:false" json:"isRecurring"`
	RecurringInterval      string             `gorm:"type:varchar(10);default:'month'" json:"recurringInterval"`
	RecurringIntervalCount int                `gorm:"default:1" json:"recurringIntervalCount"`
	RecurringTrialDays     int                `gorm:"default:0" json:"recurringTrialDays"`
	DeliveryMinDays        int                `gorm:"default:0" json:"deliveryMinDays"`
	DeliveryMaxDays        int                `gorm:"default:0" json:"deliveryMaxDays"`
	IsActive               bool               `gorm:"default:true;index" json:"isActive"`
	CreatedAt              time.Time          `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt              time.Time          `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt              gorm.DeletedAt     `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	ensureObjectID(&p.ID)
	return nil
}

// VendorKey returns the owning vendor id or "" for platform products.
func (p *Product) VendorKey() string {
	if p.VendorID == nil {
		return ""
	}
	return *p.VendorID
}

// EffectivePrice is the price a buyer pays for the product itself.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// FindVariation returns the variation with the given label.
func (p *Product) FindVariation(label string) (int, *ProductVariation) {
	for i := range p.Variations {
		if p.Variations[i].Label == label {
			return i, &p.Variations[i]
		}
	}
	return -1, nil
}

// TracksStock reports whether orders decrement the product's stock.
func (p *Product) TracksStock() bool {
	switch p.MarketplaceType {
	case MarketplaceDigital, MarketplaceService, MarketplaceGrouped:
		return false
	}
	return p.PriceType != PriceTBA
}
