package repositories

import (
	"context"
	"math"
	"strings"

	"inventory/internal/models"
)

// ProductFilter narrows a product listing. Empty fields do not filter.
type ProductFilter struct {
	Category string
	Search   string
}

// ListOptions controls paging and ordering of a listing.
type ListOptions struct {
	Page  int
	Limit int
	Sort  string
}

// Skip returns the number of records before the requested page. It saturates
// at math.MaxInt instead of overflowing.
func (o ListOptions) Skip() int {
	if o.Page <= 1 || o.Limit <= 0 {
		return 0
	}
	if o.Page-1 > math.MaxInt/o.Limit {
		return math.MaxInt
	}
	return (o.Page - 1) * o.Limit
}

// DefaultSort orders by creation time, newest first.
const DefaultSort = "-createdAt"

// SortKey is a parsed sort expression.
type SortKey struct {
	Field      string
	Descending bool
}

var sortableFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"name":      true,
	"price":     true,
	"quantity":  true,
	"category":  true,
	"sku":       true,
}

// ParseSort turns "name" or "-price" into a SortKey. Unknown fields fall back
// to DefaultSort.
func ParseSort(expr string) SortKey {
	expr = strings.TrimSpace(expr)
	desc := strings.HasPrefix(expr, "-")
	field := strings.TrimPrefix(expr, "-")
	if !sortableFields[field] {
		return SortKey{Field: "createdAt", Descending: true}
	}
	return SortKey{Field: field, Descending: desc}
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter, opts ListOptions) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, lowStockThreshold int) (*models.ProductStats, error)
}
