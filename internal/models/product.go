package models

import (
	"strings"
	"time"
)

// Product categories.
const (
	CategoryElectronics = "Electronics"
	CategoryClothing    = "Clothing"
	CategoryBooks       = "Books"
	CategoryHomeGarden  = "Home & Garden"
	CategorySports      = "Sports"
	CategoryHealth      = "Health"
	CategoryOther       = "Other"
)

// Categories lists every accepted category in display order.
var Categories = []string{
	CategoryElectronics,
	CategoryClothing,
	CategoryBooks,
	CategoryHomeGarden,
	CategorySports,
	CategoryHealth,
	CategoryOther,
}

// IsValidCategory reports whether c is one of Categories.
func IsValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// LowStockThreshold is the quantity below which a product counts as low stock.
const LowStockThreshold = 10

// Product represents an inventory item.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(24)"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	Price       float64   `json:"price" gorm:"not null"`
	Category    string    `json:"category" gorm:"type:varchar(32);index;not null"`
	Description string    `json:"description" gorm:"type:varchar(500)"`
	SKU         string    `json:"sku" gorm:"type:varchar(64);uniqueIndex;not null"`
	CreatedByID string    `json:"-" gorm:"type:varchar(24);index;not null"`
	CreatedBy   *Creator  `json:"createdBy,omitempty" gorm:"-"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Creator is the resolved owner of a product.
type Creator struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// IsLowStock reports whether p is below LowStockThreshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity < LowStockThreshold
}

// InventoryValue is quantity times unit price.
func (p *Product) InventoryValue() float64 {
	return float64(p.Quantity) * p.Price
}

// ProductInput carries client-supplied product fields. A nil field was not sent.
type ProductInput struct {
	Name        *string  `json:"name" validate:"required,min=2"`
	Quantity    *int     `json:"quantity" validate:"required,gte=0"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Category    *string  `json:"category" validate:"required,category"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	SKU         *string  `json:"sku" validate:"omitempty,max=64"`
}

// Normalize trims surrounding whitespace from every string field.
func (in *ProductInput) Normalize() {
	for _, s := range []*string{in.Name, in.Category, in.Description, in.SKU} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
}

// ApplyTo copies every field that was sent onto p.
func (in ProductInput) ApplyTo(p *Product) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.SKU != nil && *in.SKU != "" {
		p.SKU = *in.SKU
	}
}

// Input returns p as a fully populated ProductInput, used to re-validate a
// merged record.
func (p Product) Input() ProductInput {
	return ProductInput{
		Name:        &p.Name,
		Quantity:    &p.Quantity,
		Price:       &p.Price,
		Category:    &p.Category,
		Description: &p.Description,
		SKU:         &p.SKU,
	}
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products    []Product `json:"products"`
	TotalPages  int64     `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
	Total       int64     `json:"total"`
}

// CategoryStat aggregates the products of one category.
type CategoryStat struct {
	Category string  `json:"category"`
	Count    int64   `json:"count"`
	Value    float64 `json:"value"`
}

// ProductStats summarises the whole inventory.
type ProductStats struct {
	TotalProducts int64          `json:"totalProducts"`
	TotalValue    float64        `json:"totalValue"`
	CategoryStats []CategoryStat `json:"categoryStats"`
	LowStock      int64          `json:"lowStock"`
}
