package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	ROLE_CUSTOMER   = "customer"
	ROLE_VENDOR     = "vendor"
	ROLE_ADMIN      = "admin"
	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

type User struct {
	ID        string         `gorm:"type:char(24);primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email     string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Role      string         `gorm:"type:varchar(50);default:'customer';index" json:"role" validate:"oneof=customer vendor admin"`
	Status    string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive disabled"`
	StoreName string         `gorm:"type:varchar(150);default:null" json:"store_name,omitempty" validate:"max=150"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureObjectID(&u.ID)
	return nil
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// IsVendor reports whether the user sells on the marketplace
func (u *User) IsVendor() bool {
	return u.Role == ROLE_VENDOR
}

// DisplayName is the store name for vendors, falling back to the account name.
func (u *User) DisplayName() string {
	if u.StoreName != "" {
		return u.StoreName
	}
	return u.Name
}
