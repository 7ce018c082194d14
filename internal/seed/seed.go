// Package seed loads a demo account and a handful of products through the
// regular services, so every validation and event path applies.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"inventory/internal/apperrors"
	"inventory/internal/models"
	"inventory/internal/services"
)

// Demo account credentials.
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo1234"
)

type demoProduct struct {
	name, category, description, sku string
	quantity                         int
	price                            float64
}

var demoProducts = []demoProduct{
	{"Wireless Mouse", models.CategoryElectronics, "2.4 GHz, silent clicks", "DEMO-ELE-001", 42, 24.99},
	{"USB-C Hub", models.CategoryElectronics, "7-in-1 with HDMI", "DEMO-ELE-002", 6, 49.5},
	{"Rain Jacket", models.CategoryClothing, "Packable shell", "DEMO-CLO-001", 15, 89},
	{"Go in Practice", models.CategoryBooks, "", "DEMO-BOO-001", 3, 39.99},
	{"Garden Hose", models.CategoryHomeGarden, "25 m, kink resistant", "DEMO-HOM-001", 12, 32},
	{"Yoga Mat", models.CategorySports, "6 mm", "DEMO-SPO-001", 0, 19.9},
	{"Vitamin D3", models.CategoryHealth, "90 capsules", "DEMO-HEA-001", 80, 11.25},
}

// Result counts what Run wrote.
type Result struct {
	UserID          string
	ProductsCreated int
	ProductsSkipped int
}

// Run ensures the demo user exists and creates the demo products. Products
// whose SKU already exists are skipped, so Run is safe to repeat.
func Run(ctx context.Context, auth *services.AuthService, products *services.ProductService, log *slog.Logger) (*Result, error) {
	user, err := demoUser(ctx, auth)
	if err != nil {
		return nil, err
	}

	res := &Result{UserID: user.ID}
	for _, p := range demoProducts {
		in := models.ProductInput{
			Name:        &p.name,
			Quantity:    &p.quantity,
			Price:       &p.price,
			Category:    &p.category,
			Description: &p.description,
			SKU:         &p.sku,
		}
		if _, err := products.Create(ctx, in, user.ID); err != nil {
			if errors.Is(err, apperrors.Conflict("")) {
				res.ProductsSkipped++
				continue
			}
			return res, fmt.Errorf("seed product %s: %w", p.sku, err)
		}
		res.ProductsCreated++
	}

	log.Info("seed complete", "user_id", res.UserID, "created", res.ProductsCreated, "skipped", res.ProductsSkipped)
	return res, nil
}

func demoUser(ctx context.Context, auth *services.AuthService) (*models.PublicUser, error) {
	result, err := auth.Register(ctx, models.RegisterInput{Name: "Demo User", Email: DemoEmail, Password: DemoPassword})
	if errors.Is(err, apperrors.Conflict("")) {
		result, err = auth.Login(ctx, models.LoginInput{Email: DemoEmail, Password: DemoPassword})
	}
	if err != nil {
		return nil, fmt.Errorf("seed demo user: %w", err)
	}
	return &result.User, nil
}
