package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inventory/internal/config"
	"inventory/internal/repositories"
)

func openMongo(ctx context.Context, uri, dbName string) (*Store, error) {
	timeout := 5 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return offlineStore(config.DriverMongo), fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return offlineStore(config.DriverMongo), fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(dbName)
	users := repositories.NewMongoUserRepository(db)
	products := repositories.NewMongoProductRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return offlineStore(config.DriverMongo), err
	}
	if err := products.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return offlineStore(config.DriverMongo), err
	}

	return &Store{
		Users:    users,
		Products: products,
		Status:   NewStatus(true),
		Driver:   config.DriverMongo,
		closeFn:  client.Disconnect,
	}, nil
}
