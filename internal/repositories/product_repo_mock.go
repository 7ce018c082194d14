package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"inventory/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It backs STORE_DRIVER=memory and the service tests.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// List returns one page of the products matching filter.
func (r *MockProductRepository) List(_ context.Context, filter ProductFilter, opts ListOptions) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if matchesFilter(p, filter) {
			matched = append(matched, p)
		}
	}
	sortProducts(matched, ParseSort(opts.Sort))

	total := int64(len(matched))
	start := opts.Skip()
	if start >= len(matched) {
		return []models.Product{}, total, nil
	}
	end := len(matched)
	if opts.Limit > 0 && opts.Limit < end-start {
		end = start + opts.Limit
	}
	return matched[start:end], total, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = models.NewID()
	}
	if r.skuTaken(product.SKU, product.ID) {
		return ErrDuplicateKey
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	stored := *product
	stored.CreatedBy = nil
	r.products[product.ID] = stored
	return nil
}

// Update replaces an existing product.
func (r *MockProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return ErrNotFound
	}
	if r.skuTaken(product.SKU, product.ID) {
		return ErrDuplicateKey
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()

	stored := *product
	stored.CreatedBy = nil
	r.products[product.ID] = stored
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

// Stats aggregates every stored product.
func (r *MockProductRepository) Stats(_ context.Context, lowStockThreshold int) (*models.ProductStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.ProductStats{CategoryStats: []models.CategoryStat{}}
	byCategory := make(map[string]*models.CategoryStat)
	for _, p := range r.products {
		value := p.InventoryValue()
		stats.TotalProducts++
		stats.TotalValue += value
		if p.Quantity < lowStockThreshold {
			stats.LowStock++
		}
		cs, ok := byCategory[p.Category]
		if !ok {
			cs = &models.CategoryStat{Category: p.Category}
			byCategory[p.Category] = cs
		}
		cs.Count++
		cs.Value += value
	}
	for _, cs := range byCategory {
		stats.CategoryStats = append(stats.CategoryStats, *cs)
	}
	SortCategoryStats(stats.CategoryStats)
	return stats, nil
}

// skuTaken must be called with r.mu held.
func (r *MockProductRepository) skuTaken(sku, exceptID string) bool {
	if sku == "" {
		return false
	}
	for id, p := range r.products {
		if id != exceptID && p.SKU == sku {
			return true
		}
	}
	return false
}

// SortCategoryStats orders by count descending, then by category name.
func SortCategoryStats(stats []models.CategoryStat) {
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Category < stats[j].Category
	})
}

func matchesFilter(p models.Product, filter ProductFilter) bool {
	if filter.Category != "" && p.Category != filter.Category {
		return false
	}
	if filter.Search == "" {
		return true
	}
	needle := strings.ToLower(filter.Search)
	for _, field := range []string{p.Name, p.Description, p.SKU} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func sortProducts(products []models.Product, key SortKey) {
	sort.SliceStable(products, func(i, j int) bool {
		c := compareProducts(products[i], products[j], key.Field)
		if c == 0 {
			c = strings.Compare(products[i].ID, products[j].ID)
		}
		if key.Descending {
			return c > 0
		}
		return c < 0
	})
}

func compareProducts(a, b models.Product, field string) int {
	switch field {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "category":
		return strings.Compare(a.Category, b.Category)
	case "sku":
		return strings.Compare(a.SKU, b.SKU)
	case "price":
		return compareOrdered(a.Price, b.Price)
	case "quantity":
		return compareOrdered(a.Quantity, b.Quantity)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareOrdered[T int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
