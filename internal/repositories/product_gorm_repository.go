package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inventory/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

var productColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"price":     "price",
	"quantity":  "quantity",
	"category":  "category",
	"sku":       "sku",
}

// List retrieves one page of matching products and the total match count.
func (r *GORMProductRepository) List(ctx context.Context, filter ProductFilter, opts ListOptions) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		query = query.Where(
			`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(sku) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	key := ParseSort(opts.Sort)
	var products []models.Product
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: productColumns[key.Field]}, Desc: key.Descending}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: key.Descending}).
		Offset(opts.Skip()).
		Limit(opts.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = models.NewID()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Select("name", "quantity", "price", "category", "description", "sku", "updated_at").
		Updates(product)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats computes inventory totals with SQL aggregates.
func (r *GORMProductRepository) Stats(ctx context.Context, lowStockThreshold int) (*models.ProductStats, error) {
	db := r.db.WithContext(ctx).Model(&models.Product{})
	stats := &models.ProductStats{CategoryStats: []models.CategoryStat{}}

	var totals struct {
		Count int64
		Value float64
	}
	if err := db.Select("COUNT(*) AS count, COALESCE(SUM(quantity * price), 0) AS value").Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate products: %w", err)
	}
	stats.TotalProducts = totals.Count
	stats.TotalValue = totals.Value

	var rows []models.CategoryStat
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("category, COUNT(*) AS count, COALESCE(SUM(quantity * price), 0) AS value").
		Group("category").
		Order("count DESC").
		Order("category").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	if rows != nil {
		stats.CategoryStats = rows
	}

	if err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("quantity < ?", lowStockThreshold).
		Count(&stats.LowStock).Error; err != nil {
		return nil, fmt.Errorf("failed to count low stock products: %w", err)
	}
	return stats, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// isDuplicate recognises unique violations whether or not the dialector
// translated them into gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
