package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inventory/internal/models"
)

// UsersCollection is the collection holding user documents.
const UsersCollection = "users"

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password,omitempty"`
	FederatedID  *string            `bson:"federatedId,omitempty"`
	AvatarURL    string             `bson:"avatar"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d userDocument) model() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FederatedID:  d.FederatedID,
		AvatarURL:    d.AvatarURL,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// MongoUserRepository stores users in a MongoDB collection.
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a repository over db's users collection.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{col: db.Collection(UsersCollection)}
}

// EnsureIndexes creates the unique email and federated id indexes.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "federatedId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

// Create inserts a new user document.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	oid := primitive.NewObjectID()
	if user.ID != "" {
		var err error
		if oid, err = primitive.ObjectIDFromHex(user.ID); err != nil {
			return fmt.Errorf("invalid user id %q: %w", user.ID, err)
		}
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := userDocument{
		ID:           oid,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		FederatedID:  user.FederatedID,
		AvatarURL:    user.AvatarURL,
		Role:         user.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = oid.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID retrieves a user by id.
func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// GetByEmail retrieves a user by email.
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByFederatedID retrieves the user linked to a federated identity.
func (r *MongoUserRepository) GetByFederatedID(ctx context.Context, federatedID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"federatedId": federatedID})
}

// Update writes the mutable fields of an existing user.
func (r *MongoUserRepository) Update(ctx context.Context, user *models.User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return ErrNotFound
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{
		"name":      user.Name,
		"email":     user.Email,
		"avatar":    user.AvatarURL,
		"role":      user.Role,
		"updatedAt": now,
	}
	if user.PasswordHash != "" {
		set["password"] = user.PasswordHash
	}
	if user.FederatedID != nil {
		set["federatedId"] = *user.FederatedID
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	user.UpdatedAt = now
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.model(), nil
}
