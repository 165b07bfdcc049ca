package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus is the catalog status accepted on input. Only "active"
// products can be ordered; the others map to an inactive product.
type ProductStatus string

const (
	ProductActive     ProductStatus = "active"
	ProductInactive   ProductStatus = "inactive"
	ProductOutOfStock ProductStatus = "out_of_stock"
)

// Valid reports whether s is a known status
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductActive, ProductInactive, ProductOutOfStock:
		return true
	}
	return false
}

// DefaultMinStock is the low stock threshold used when none is given
const DefaultMinStock = 5

// Product Model
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	Description string          `gorm:"size:200;not null" json:"description"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"sale_price"`
	Barcode     *string         `gorm:"size:50;uniqueIndex" json:"barcode,omitempty"` // Optional, unique when set
	CategoryID  uint            `gorm:"index;not null" json:"category_id"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	MinStock    int             `gorm:"not null;check:min_stock >= 0" json:"min_stock"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	Active      bool            `gorm:"not null" json:"active"`
	Images      []ProductImage  `gorm:"constraint:OnDelete:CASCADE;" json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductImage Model
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	URL       string    `gorm:"size:255;not null" json:"url"`
	Position  int       `json:"position"` // Display order
	CreatedAt time.Time `json:"created_at"`
}
