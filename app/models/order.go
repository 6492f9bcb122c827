package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

type Order struct {
	ID               string         `gorm:"type:char(24);primaryKey" json:"id"`
	UUID             string         `gorm:"type:char(36);uniqueIndex" json:"uuid"`
	CustomerID       string         `gorm:"type:char(24);not null;index" json:"customerId"`
	OrderStatus      string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"orderStatus"`
	PaymentStatus    string         `gorm:"type:varchar(20);not null;default:'unpaid'" json:"paymentStatus"`
	PaymentMethod    string         `gorm:"type:varchar(30);default:'cod'" json:"paymentMethod"`
	Subtotal         float64        `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	ShippingFee      float64        `gorm:"type:decimal(12,2);not null;default:0" json:"shippingFee"`
	Total            float64        `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	ShippingCity     string         `gorm:"type:varchar(100)" json:"shippingCity"`
	ShippingDistrict string         `gorm:"type:varchar(100)" json:"shippingDistrict"`
	ShippingCountry  string         `gorm:"type:varchar(100)" json:"shippingCountry"`
	EstimatedMinDays int            `json:"estimatedMinDays"`
	EstimatedMaxDays int            `json:"estimatedMaxDays"`
	Items            []OrderItem    `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt        time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	ensureObjectID(&o.ID)
	return nil
}

// HasVendor reports whether any item of the order belongs to vendorID.
func (o *Order) HasVendor(vendorID string) bool {
	for _, it := range o.Items {
		if it.VendorID != nil && *it.VendorID == vendorID {
			return true
		}
	}
	return false
}

// OrderItem carries the commission frozen when the order was placed.
// VendorNetAmount is nil on records written before net amounts were stored.
type OrderItem struct {
	ID                     string         `gorm:"type:char(24);primaryKey" json:"id"`
	OrderID                string         `gorm:"type:char(24);not null;index" json:"orderId"`
	ProductID              string         `gorm:"type:char(24);not null;index" json:"productId"`
	VendorID               *string        `gorm:"type:char(24);index" json:"vendorId"`
	Name                   string         `gorm:"type:varchar(255)" json:"name"`
	Variation              string         `gorm:"type:varchar(120);default:''" json:"variation,omitempty"`
	Price                  float64        `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity               int            `gorm:"not null" json:"quantity"`
	ItemTotal              float64        `gorm:"type:decimal(12,2);not null" json:"itemTotal"`
	VendorCommissionType   CommissionType `gorm:"type:varchar(20)" json:"vendorCommissionType"`
	VendorCommissionValue  float64        `gorm:"type:decimal(12,2);default:0" json:"vendorCommissionValue"`
	VendorCommissionFixed  float64        `gorm:"type:decimal(12,2);default:0" json:"vendorCommissionFixed"`
	VendorCommissionAmount float64        `gorm:"type:decimal(12,2);default:0" json:"vendorCommissionAmount"`
	VendorNetAmount        *float64       `gorm:"type:decimal(12,2);default:null" json:"vendorNetAmount"`
	CreatedAt              time.Time      `gorm:"autoCreateTime" json:"createdAt"`
}

func (it *OrderItem) BeforeCreate(tx *gorm.DB) error {
	ensureObjectID(&it.ID)
	return nil
}

// VendorKey returns the vendor id or "" for platform items.
func (it *OrderItem) VendorKey() string {
	if it.VendorID == nil {
		return ""
	}
	return *it.VendorID
}
