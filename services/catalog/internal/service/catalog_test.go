package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy_shop/pkg/events"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/transport"
)

type fakeSearcher struct {
	indexed map[uint]models.Product
	ids     []uint
	err     error
}

func (f *fakeSearcher) IndexProduct(_ context.Context, p models.Product) error {
	if f.indexed == nil {
		f.indexed = map[uint]models.Product{}
	}
	f.indexed[p.ID] = p
	return nil
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ *uint, _, _ int) (int64, []uint, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	return int64(len(f.ids)), f.ids, nil
}

func newTestService() (*CatalogService, *events.Memory) {
	pub := &events.Memory{Producer: "catalog"}
	return &CatalogService{Repo: repo.NewMemoryRepo(), Events: pub}, pub
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func TestCatalogService_SeedCatalog_Idempotent(t *testing.T) {
	t.Parallel()

	svc, pub := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.SeedCatalog(ctx))
	require.NoError(t, svc.SeedCatalog(ctx))

	cats, err := svc.ListCategories(ctx, false)
	require.NoError(t, err)
	assert.Len(t, cats, 6)

	total, items, err := svc.ListProducts(ctx, ProductQuery{Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "Aspirin 100mg", items[0].Name)
	assert.Equal(t, "Pain Relief", items[0].CategoryName)
	assert.True(t, dec("25.99").Equal(items[0].Price))
	assert.Equal(t, 500, items[0].StockQuantity)

	assert.Len(t, pub.Events(), 3)
}

func TestCatalogService_CreateProduct_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  transport.CreateProductRequest
	}{
		{name: "empty name", req: transport.CreateProductRequest{Name: " ", Price: dec("1")}},
		{name: "negative price", req: transport.CreateProductRequest{Name: "X", Price: dec("-0.01")}},
		{name: "negative stock", req: transport.CreateProductRequest{Name: "X", Price: dec("1"), StockQuantity: -1}},
		{name: "discount over 100", req: transport.CreateProductRequest{Name: "X", Price: dec("1"), Discount: ptr(dec("100.5"))}},
		{name: "unknown category", req: transport.CreateProductRequest{Name: "X", Price: dec("1"), CategoryID: ptr(uint(77))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCatalogService_ProductLifecycle_PublishesEvents(t *testing.T) {
	t.Parallel()

	svc, pub := newTestService()
	search := &fakeSearcher{}
	svc.Search = search
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Antibiotics"})
	require.NoError(t, err)

	created, err := svc.CreateProduct(ctx, transport.CreateProductRequest{
		Name:          "Amoxicillin",
		Price:         dec("18.40"),
		Discount:      ptr(dec("10")),
		StockQuantity: 40,
		CategoryID:    &cat.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Antibiotics", created.CategoryName)
	assert.NotNil(t, created.Images)
	assert.Contains(t, search.indexed, created.ID)

	updated, err := svc.UpdateProduct(ctx, created.ID, transport.UpdateProductRequest{StockQuantity: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.StockQuantity)
	assert.Equal(t, "Amoxicillin", updated.Name)
	assert.True(t, dec("10").Equal(*updated.Discount))

	_, err = svc.UpdateProduct(ctx, created.ID, transport.UpdateProductRequest{Price: ptr(dec("-1"))})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.DeleteProduct(ctx, created.ID))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, created.ID), ErrNotFound)

	_, err = svc.GetProduct(ctx, created.ID, false)
	assert.ErrorIs(t, err, ErrNotFound)

	evs := pub.Events()
	require.Len(t, evs, 3)
	assert.Equal(t, events.ProductCreated, evs[0].Envelope.EventType)
	assert.Equal(t, events.ProductUpdated, evs[1].Envelope.EventType)
	assert.Equal(t, events.ProductDeleted, evs[2].Envelope.EventType)
	for _, ev := range evs {
		assert.Equal(t, events.TopicProductEvents, ev.Topic)
	}

	var payload ProductEvent
	require.NoError(t, json.Unmarshal(evs[1].Envelope.Payload, &payload))
	assert.Equal(t, created.ID, payload.ProductID)
	assert.Equal(t, 5, payload.StockQuantity)
}

func TestCatalogService_DeletedCategoryLeavesProductsUnnamed(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Respiratory"})
	require.NoError(t, err)
	p, err := svc.CreateProduct(ctx, transport.CreateProductRequest{Name: "Inhaler", Price: dec("60"), CategoryID: &cat.ID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	assert.ErrorIs(t, svc.DeleteCategory(ctx, cat.ID), ErrNotFound)

	got, err := svc.GetProduct(ctx, p.ID, false)
	require.NoError(t, err)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, cat.ID, *got.CategoryID)
	assert.Empty(t, got.CategoryName)
}

func TestCatalogService_SearchUsesIndexOrder(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.SeedCatalog(ctx))

	svc.Search = &fakeSearcher{ids: []uint{3, 1}}
	total, items, err := svc.ListProducts(ctx, ProductQuery{Search: "vit", Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.EqualValues(t, 3, items[0].ID)
	assert.EqualValues(t, 1, items[1].ID)
}

func TestCatalogService_SearchFallsBackToStore(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.SeedCatalog(ctx))

	svc.Search = &fakeSearcher{err: errors.New("connection refused")}
	total, items, err := svc.ListProducts(ctx, ProductQuery{Search: "diabetes", Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Metformin 500mg", items[0].Name)
}

func TestCatalogService_UpdateCategory(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, transport.CategoryRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	cat, err := svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Vitamins"})
	require.NoError(t, err)

	_, err = svc.UpdateCategory(ctx, cat.ID, transport.UpdateCategoryRequest{Name: ptr("  ")})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := svc.UpdateCategory(ctx, cat.ID, transport.UpdateCategoryRequest{Description: ptr("Supplements")})
	require.NoError(t, err)
	assert.Equal(t, "Vitamins", got.Name)
	assert.Equal(t, "Supplements", got.Description)

	_, err = svc.UpdateCategory(ctx, 404, transport.UpdateCategoryRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}
