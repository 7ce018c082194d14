package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"inventory/internal/config"
	"inventory/internal/database"
	"inventory/internal/logger"
	"inventory/internal/seed"
	"inventory/internal/services"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo user and demo products",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runSeed(ctx)
		},
	}
}

func runSeed(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.AppEnv)

	store := database.Open(ctx, cfg, log)
	defer store.Close(context.Background())
	if !store.Status.Available() {
		return fmt.Errorf("store %q is offline", cfg.StoreDriver)
	}

	auth := services.NewAuthService(store.Users, cfg.JWTSecret, cfg.JWTTTL, log)
	products := services.NewProductService(store.Products, store.Users, log)

	res, err := seed.Run(ctx, auth, products, log)
	if err != nil {
		return err
	}
	fmt.Printf("seeded %s: %d products created, %d already present\n", seed.DemoEmail, res.ProductsCreated, res.ProductsSkipped)
	return nil
}
