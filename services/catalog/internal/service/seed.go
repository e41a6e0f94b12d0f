package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pharmacy_shop/pkg/events"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/models"
)

var defaultCategories = []models.Category{
	{Name: "Cardiovascular", Description: "Heart and cardiovascular health medications"},
	{Name: "Antibiotics", Description: "Antibacterial medications"},
	{Name: "Pain Relief", Description: "Analgesics and anti-inflammatory medications"},
	{Name: "Vitamins", Description: "Nutritional supplements and vitamins"},
	{Name: "Diabetes", Description: "Diabetes management medications"},
	{Name: "Respiratory", Description: "Respiratory system medications"},
}

type sampleProduct struct {
	name, description, price, category, image string
	stock                                     int
}

var sampleProducts = []sampleProduct{
	{"Aspirin 100mg", "Anti-inflammatory and pain relief medication", "25.99", "Pain Relief", "/products/aspirin.jpg", 500},
	{"Metformin 500mg", "Type 2 diabetes management medication", "45.50", "Diabetes", "/products/metformin.jpg", 300},
	{"Vitamin D3 1000 IU", "Essential vitamin D supplement", "35.00", "Vitamins", "/products/vitamin-d.jpg", 800},
}

// SeedCatalog fills an empty catalog with the default categories and sample products.
// A catalog that already has categories is left alone.
func (s *CatalogService) SeedCatalog(ctx context.Context) error {
	n, err := s.Repo.CountCategories(ctx)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if n > 0 {
		return nil
	}

	ids := make(map[string]uint, len(defaultCategories))
	for _, c := range defaultCategories {
		c.Enabled = true
		if err := s.Repo.CreateCategory(ctx, &c); err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
		ids[c.Name] = c.ID
	}

	for _, sp := range sampleProducts {
		cid := ids[sp.category]
		p := models.Product{
			Name:          sp.name,
			Description:   sp.description,
			Price:         decimal.RequireFromString(sp.price),
			StockQuantity: sp.stock,
			Brand:         "AL-MAWRID",
			Images:        []string{sp.image},
			CategoryID:    &cid,
			RatingAvg:     4.5,
			Enabled:       true,
		}
		if err := s.Repo.CreateProduct(ctx, &p); err != nil {
			return fmt.Errorf("seed product %s: %w", sp.name, err)
		}
		s.afterWrite(ctx, p, events.ProductCreated)
	}

	logging.FromContext(ctx).Info("catalog_seeded", "categories", len(defaultCategories), "products", len(sampleProducts))
	return nil
}
