package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"inventory/internal/apperrors"
	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/validation"
)

// Listing defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Product event routing keys.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
	EventStockLow       = "stock.low"
)

// EventPublisher delivers product events to a message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// MutationObserver is told about every successful product write.
type MutationObserver interface {
	ObserveProductMutation(op string)
}

// ProductEvent is the body of every published product event.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  string    `json:"productId"`
	SKU        string    `json:"sku,omitempty"`
	Name       string    `json:"name,omitempty"`
	Category   string    `json:"category,omitempty"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurredAt"`
}

// ListQuery is an unvalidated listing request.
type ListQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
	Sort     string
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	users    repositories.UserRepository
	events   EventPublisher
	observer MutationObserver
	log      *slog.Logger
	now      func() time.Time
	randIntN func(n int) int
}

// ProductOption customises a ProductService.
type ProductOption func(*ProductService)

// WithEventPublisher publishes product events through p.
func WithEventPublisher(p EventPublisher) ProductOption {
	return func(s *ProductService) { s.events = p }
}

// WithMutationObserver reports successful writes to o.
func WithMutationObserver(o MutationObserver) ProductOption {
	return func(s *ProductService) { s.observer = o }
}

// WithClock overrides the time source used for SKU generation.
func WithClock(now func() time.Time) ProductOption {
	return func(s *ProductService) { s.now = now }
}

// WithRandom overrides the random source used for SKU generation.
func WithRandom(intN func(n int) int) ProductOption {
	return func(s *ProductService) { s.randIntN = intN }
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, users repositories.UserRepository, log *slog.Logger, opts ...ProductOption) *ProductService {
	s := &ProductService{
		repo:     repo,
		users:    users,
		log:      log,
		now:      time.Now,
		randIntN: rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns one page of products matching q.
func (s *ProductService) List(ctx context.Context, q ListQuery) (*models.ProductPage, error) {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	filter := repositories.ProductFilter{Category: q.Category, Search: q.Search}
	if filter.Category == "all" {
		filter.Category = ""
	}

	opts := repositories.ListOptions{Page: q.Page, Limit: q.Limit, Sort: q.Sort}
	if q.Page-1 > math.MaxInt/q.Limit {
		// No record can sit that far in; only the total is needed.
		opts = repositories.ListOptions{Page: 1, Limit: 1, Sort: q.Sort}
	}
	products, total, err := s.repo.List(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.Internal("failed to list products", err)
	}
	if opts.Page != q.Page {
		products = nil
	}
	if err := s.resolveCreators(ctx, products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}

	limit := int64(q.Limit)
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return &models.ProductPage{
		Products:    products,
		TotalPages:  totalPages,
		CurrentPage: q.Page,
		Total:       total,
	}, nil
}

// Get returns a single product with its creator resolved.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withCreator(ctx, product)
}

// Create validates in and stores a new product owned by callerID.
func (s *ProductService) Create(ctx context.Context, in models.ProductInput, callerID string) (*models.Product, error) {
	in.Normalize()
	if err := validation.Product(in); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	product := &models.Product{CreatedByID: callerID}
	in.ApplyTo(product)
	if product.SKU == "" {
		product.SKU = GenerateSKU(product.Category, s.now(), s.randIntN(1000))
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, apperrors.Conflict("SKU already exists")
		}
		return nil, apperrors.Internal("failed to create product", err)
	}

	s.log.Info("product created", "product_id", product.ID, "sku", product.SKU, "user_id", callerID)
	s.afterWrite(EventProductCreated, product)
	return s.withCreator(ctx, product)
}

// Update merges in onto the stored product, re-validates the result and
// overwrites it. Ownership and creation time never change.
func (s *ProductService) Update(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	in.Normalize()
	in.ApplyTo(product)
	if err := validation.Product(product.Input()); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	if err := s.repo.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, apperrors.Conflict("SKU already exists")
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apperrors.NotFound("Product not found")
		default:
			return nil, apperrors.Internal("failed to update product", err)
		}
	}

	s.log.Info("product updated", "product_id", product.ID)
	s.afterWrite(EventProductUpdated, product)
	return s.withCreator(ctx, product)
}

// Delete permanently removes a product.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if !models.IsValidID(id) {
		return apperrors.InvalidArgument("Invalid product ID")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("Product not found")
		}
		return apperrors.Internal("failed to delete product", err)
	}

	s.log.Info("product deleted", "product_id", id)
	s.afterWrite(EventProductDeleted, &models.Product{ID: id})
	return nil
}

// Stats summarises the whole inventory.
func (s *ProductService) Stats(ctx context.Context) (*models.ProductStats, error) {
	stats, err := s.repo.Stats(ctx, models.LowStockThreshold)
	if err != nil {
		return nil, apperrors.Internal("failed to compute product statistics", err)
	}
	return stats, nil
}

func (s *ProductService) load(ctx context.Context, id string) (*models.Product, error) {
	if !models.IsValidID(id) {
		return nil, apperrors.InvalidArgument("Invalid product ID")
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, apperrors.Internal("failed to get product", err)
	}
	return product, nil
}

func (s *ProductService) withCreator(ctx context.Context, product *models.Product) (*models.Product, error) {
	one := []models.Product{*product}
	if err := s.resolveCreators(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// resolveCreators fills CreatedBy with the owner's name and email, looking
// each distinct owner up once. A missing owner leaves only the id.
func (s *ProductService) resolveCreators(ctx context.Context, products []models.Product) error {
	creators := make(map[string]*models.Creator)
	for i := range products {
		id := products[i].CreatedByID
		creator, ok := creators[id]
		if !ok {
			creator = &models.Creator{ID: id}
			user, err := s.users.GetByID(ctx, id)
			switch {
			case err == nil:
				creator.Name = user.Name
				creator.Email = user.Email
			case !errors.Is(err, repositories.ErrNotFound):
				return apperrors.Internal("failed to resolve product creator", err)
			}
			creators[id] = creator
		}
		products[i].CreatedBy = creator
	}
	return nil
}

// afterWrite records metrics and publishes events. Failures are logged only;
// the write has already succeeded.
func (s *ProductService) afterWrite(eventType string, product *models.Product) {
	if s.observer != nil {
		s.observer.ObserveProductMutation(eventType)
	}
	if s.events == nil {
		return
	}
	s.publish(eventType, product)
	if eventType != EventProductDeleted && product.IsLowStock() {
		s.publish(EventStockLow, product)
	}
}

func (s *ProductService) publish(eventType string, product *models.Product) {
	body, err := json.Marshal(ProductEvent{
		Type:       eventType,
		ProductID:  product.ID,
		SKU:        product.SKU,
		Name:       product.Name,
		Category:   product.Category,
		Quantity:   product.Quantity,
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		s.log.Error("failed to marshal product event", "type", eventType, "error", err)
		return
	}
	if err := s.events.Publish(eventType, body); err != nil {
		s.log.Warn("failed to publish product event", "type", eventType, "product_id", product.ID, "error", err)
	}
}
