package repo

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy_shop/pkg/db"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/models"
)

type store interface {
	GetProduct(ctx context.Context, id uint, includeDisabled bool) (*models.Product, error)
	ListProducts(ctx context.Context, f ProductFilter) (int64, []models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id uint, fn func(p *models.Product) error) (*models.Product, error)
	ListCategories(ctx context.Context, includeDisabled bool) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint, includeDisabled bool) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, id uint, fn func(c *models.Category) error) (*models.Category, error)
	CountCategories(ctx context.Context) (int64, error)
}

func newGormRepo(t *testing.T) *GormRepo {
	t.Helper()
	gdb, err := db.Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(gdb) })

	r := NewGormRepo(gdb)
	require.NoError(t, r.Migrate(context.Background()))
	return r
}

func stores(t *testing.T) map[string]store {
	return map[string]store{
		"memory": NewMemoryRepo(),
		"gorm":   newGormRepo(t),
	}
}

func product(name string, price string, stock int, cat *uint) *models.Product {
	return &models.Product{
		Name:          name,
		Description:   name + " tablets",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Images:        []string{"/img/" + name},
		CategoryID:    cat,
		Enabled:       true,
	}
}

func TestStore_ProductListingFilters(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			pain := &models.Category{Name: "Pain Relief", Enabled: true}
			vit := &models.Category{Name: "Vitamins", Enabled: true}
			require.NoError(t, s.CreateCategory(ctx, pain))
			require.NoError(t, s.CreateCategory(ctx, vit))

			aspirin := product("Aspirin", "25.99", 500, &pain.ID)
			ibuprofen := product("Ibuprofen", "12.50", 10, &pain.ID)
			vitD := product("Vitamin D3", "35.00", 800, &vit.ID)
			for _, p := range []*models.Product{aspirin, ibuprofen, vitD} {
				require.NoError(t, s.CreateProduct(ctx, p))
			}

			_, err := s.UpdateProduct(ctx, ibuprofen.ID, func(p *models.Product) error {
				p.Enabled = false
				return nil
			})
			require.NoError(t, err)

			total, items, err := s.ListProducts(ctx, ProductFilter{})
			require.NoError(t, err)
			assert.EqualValues(t, 2, total)
			require.Len(t, items, 2)
			assert.Equal(t, aspirin.ID, items[0].ID)
			assert.True(t, decimal.RequireFromString("25.99").Equal(items[0].Price))
			assert.Equal(t, []string{"/img/Aspirin"}, items[0].Images)

			total, _, err = s.ListProducts(ctx, ProductFilter{IncludeDisabled: true})
			require.NoError(t, err)
			assert.EqualValues(t, 3, total)

			total, items, err = s.ListProducts(ctx, ProductFilter{CategoryID: &pain.ID})
			require.NoError(t, err)
			assert.EqualValues(t, 1, total)
			assert.Equal(t, "Aspirin", items[0].Name)

			total, items, err = s.ListProducts(ctx, ProductFilter{Search: "VITAMIN"})
			require.NoError(t, err)
			assert.EqualValues(t, 1, total)
			assert.Equal(t, vitD.ID, items[0].ID)

			total, items, err = s.ListProducts(ctx, ProductFilter{Offset: 1, Limit: 1})
			require.NoError(t, err)
			assert.EqualValues(t, 2, total)
			require.Len(t, items, 1)
			assert.Equal(t, vitD.ID, items[0].ID)

			_, items, err = s.ListProducts(ctx, ProductFilter{IDs: []uint{vitD.ID, ibuprofen.ID}})
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, vitD.ID, items[0].ID)

			_, err = s.GetProduct(ctx, ibuprofen.ID, false)
			assert.ErrorIs(t, err, ErrProductNotFound)
			got, err := s.GetProduct(ctx, ibuprofen.ID, true)
			require.NoError(t, err)
			assert.False(t, got.Enabled)
		})
	}
}

func TestStore_UpdateProductErrors(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.UpdateProduct(ctx, 42, func(*models.Product) error { return nil })
			assert.ErrorIs(t, err, ErrProductNotFound)

			p := product("Zinc", "5.00", 3, nil)
			require.NoError(t, s.CreateProduct(ctx, p))

			_, err = s.UpdateProduct(ctx, p.ID, func(p *models.Product) error {
				p.StockQuantity = 99
				return assert.AnError
			})
			assert.ErrorIs(t, err, assert.AnError)

			got, err := s.GetProduct(ctx, p.ID, false)
			require.NoError(t, err)
			assert.Equal(t, 3, got.StockQuantity, "failed update must not be persisted")
		})
	}
}

func TestStore_ConcurrentStockEdits(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p := product("Saline", "1.00", 0, nil)
			require.NoError(t, s.CreateProduct(ctx, p))

			const n = 20
			var wg sync.WaitGroup
			for range n {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := s.UpdateProduct(ctx, p.ID, func(p *models.Product) error {
						p.StockQuantity++
						return nil
					})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			got, err := s.GetProduct(ctx, p.ID, false)
			require.NoError(t, err)
			assert.Equal(t, n, got.StockQuantity)
		})
	}
}

func TestStore_Categories(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			n, err := s.CountCategories(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)

			c := &models.Category{Name: "Respiratory", Description: "Lungs", Enabled: true}
			require.NoError(t, s.CreateCategory(ctx, c))

			_, err = s.UpdateCategory(ctx, c.ID, func(c *models.Category) error {
				c.Enabled = false
				return nil
			})
			require.NoError(t, err)

			_, err = s.GetCategory(ctx, c.ID, false)
			assert.ErrorIs(t, err, ErrCategoryNotFound)

			visible, err := s.ListCategories(ctx, false)
			require.NoError(t, err)
			assert.Empty(t, visible)

			all, err := s.ListCategories(ctx, true)
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, "Lungs", all[0].Description)

			_, err = s.UpdateCategory(ctx, 999, func(*models.Category) error { return nil })
			assert.ErrorIs(t, err, ErrCategoryNotFound)
		})
	}
}

func TestMemoryRepo_ReturnsDetachedCopies(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepo()
	ctx := context.Background()
	p := product("Iron", "9.99", 7, nil)
	require.NoError(t, r.CreateProduct(ctx, p))

	got, err := r.GetProduct(ctx, p.ID, false)
	require.NoError(t, err)
	got.Images[0] = "mutated"
	got.StockQuantity = 0

	again, err := r.GetProduct(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "/img/Iron", again.Images[0])
	assert.Equal(t, 7, again.StockQuantity)
}
