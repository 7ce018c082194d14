package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inventory/internal/models"
)

// ProductsCollection is the collection holding product documents.
const ProductsCollection = "products"

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Quantity    int                `bson:"quantity"`
	Price       float64            `bson:"price"`
	Category    string             `bson:"category"`
	Description string             `bson:"description"`
	SKU         string             `bson:"sku"`
	CreatedBy   primitive.ObjectID `bson:"createdBy"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d productDocument) model() models.Product {
	return models.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Quantity:    d.Quantity,
		Price:       d.Price,
		Category:    d.Category,
		Description: d.Description,
		SKU:         d.SKU,
		CreatedByID: d.CreatedBy.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoProductRepository stores products in a MongoDB collection.
type MongoProductRepository struct {
	col *mongo.Collection
}

// NewMongoProductRepository creates a repository over db's products collection.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{col: db.Collection(ProductsCollection)}
}

// EnsureIndexes creates the unique SKU index and the listing indexes.
func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}

func productQuery(filter ProductFilter) bson.M {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"description": re},
			bson.M{"sku": re},
		}
	}
	return query
}

// List retrieves one page of matching products and the total match count.
func (r *MongoProductRepository) List(ctx context.Context, filter ProductFilter, opts ListOptions) ([]models.Product, int64, error) {
	query := productQuery(filter)

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	skip := int64(opts.Skip())
	if skip >= total {
		return []models.Product{}, total, nil
	}
	limit := int64(opts.Limit)
	if limit <= 0 || limit > total-skip {
		limit = total - skip
	}

	key := ParseSort(opts.Sort)
	dir := 1
	if key.Descending {
		dir = -1
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: key.Field, Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]models.Product, len(docs))
	for i, d := range docs {
		products[i] = d.model()
	}
	return products, total, nil
}

// GetByID retrieves a single product.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc productDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	p := doc.model()
	return &p, nil
}

// Create inserts a new product document.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	creator, err := primitive.ObjectIDFromHex(product.CreatedByID)
	if err != nil {
		return fmt.Errorf("invalid creator id %q: %w", product.CreatedByID, err)
	}
	oid := primitive.NewObjectID()
	if product.ID != "" {
		if oid, err = primitive.ObjectIDFromHex(product.ID); err != nil {
			return fmt.Errorf("invalid product id %q: %w", product.ID, err)
		}
	}
	// BSON dates carry millisecond precision.
	now := time.Now().UTC().Truncate(time.Millisecond)
	created := now
	if !product.CreatedAt.IsZero() {
		created = product.CreatedAt.UTC().Truncate(time.Millisecond)
	}
	doc := productDocument{
		ID:          oid,
		Name:        product.Name,
		Quantity:    product.Quantity,
		Price:       product.Price,
		Category:    product.Category,
		Description: product.Description,
		SKU:         product.SKU,
		CreatedBy:   creator,
		CreatedAt:   created,
		UpdatedAt:   now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	product.ID = oid.Hex()
	product.CreatedAt = created
	product.UpdatedAt = now
	return nil
}

// Update overwrites the mutable fields of an existing product.
func (r *MongoProductRepository) Update(ctx context.Context, product *models.Product) error {
	oid, err := primitive.ObjectIDFromHex(product.ID)
	if err != nil {
		return ErrNotFound
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":        product.Name,
		"quantity":    product.Quantity,
		"price":       product.Price,
		"category":    product.Category,
		"description": product.Description,
		"sku":         product.SKU,
		"updatedAt":   now,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	product.UpdatedAt = now
	return nil
}

// Delete removes a product document.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats runs a single faceted aggregation over the collection.
func (r *MongoProductRepository) Stats(ctx context.Context, lowStockThreshold int) (*models.ProductStats, error) {
	value := bson.M{"$sum": bson.M{"$multiply": bson.A{"$quantity", "$price"}}}
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"totals": bson.A{
				bson.M{"$group": bson.M{"_id": nil, "count": bson.M{"$sum": 1}, "value": value}},
			},
			"categories": bson.A{
				bson.M{"$group": bson.M{"_id": "$category", "count": bson.M{"$sum": 1}, "value": value}},
				bson.M{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
			},
			"lowStock": bson.A{
				bson.M{"$match": bson.M{"quantity": bson.M{"$lt": lowStockThreshold}}},
				bson.M{"$count": "count"},
			},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate products: %w", err)
	}
	var facets []struct {
		Totals []struct {
			Count int64   `bson:"count"`
			Value float64 `bson:"value"`
		} `bson:"totals"`
		Categories []struct {
			Category string  `bson:"_id"`
			Count    int64   `bson:"count"`
			Value    float64 `bson:"value"`
		} `bson:"categories"`
		LowStock []struct {
			Count int64 `bson:"count"`
		} `bson:"lowStock"`
	}
	if err := cur.All(ctx, &facets); err != nil {
		return nil, fmt.Errorf("failed to decode product stats: %w", err)
	}

	stats := &models.ProductStats{CategoryStats: []models.CategoryStat{}}
	if len(facets) == 0 {
		return stats, nil
	}
	f := facets[0]
	if len(f.Totals) > 0 {
		stats.TotalProducts = f.Totals[0].Count
		stats.TotalValue = f.Totals[0].Value
	}
	for _, c := range f.Categories {
		stats.CategoryStats = append(stats.CategoryStats, models.CategoryStat{
			Category: c.Category,
			Count:    c.Count,
			Value:    c.Value,
		})
	}
	if len(f.LowStock) > 0 {
		stats.LowStock = f.LowStock[0].Count
	}
	return stats, nil
}
