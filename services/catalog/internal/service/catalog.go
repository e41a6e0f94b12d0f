package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pharmacy_shop/pkg/events"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/transport"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

var hundred = decimal.NewFromInt(100)

type Store interface {
	GetProduct(ctx context.Context, id uint, includeDisabled bool) (*models.Product, error)
	ListProducts(ctx context.Context, f repo.ProductFilter) (int64, []models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id uint, fn func(p *models.Product) error) (*models.Product, error)

	ListCategories(ctx context.Context, includeDisabled bool) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint, includeDisabled bool) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, id uint, fn func(c *models.Category) error) (*models.Category, error)
	CountCategories(ctx context.Context) (int64, error)
}

// Searcher is an optional full-text index over products.
type Searcher interface {
	IndexProduct(ctx context.Context, p models.Product) error
	Search(ctx context.Context, query string, categoryID *uint, from, size int) (int64, []uint, error)
}

type CatalogService struct {
	Repo   Store
	Search Searcher
	Events events.Publisher
}

type ProductQuery struct {
	CategoryID      *uint
	Search          string
	IncludeDisabled bool
	Offset          int
	Limit           int
}

type ProductEvent struct {
	ProductID     uint            `json:"productId"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Enabled       bool            `json:"enabled"`
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint, includeDisabled bool) (*transport.ProductResponse, error) {
	p, err := s.Repo.GetProduct(ctx, id, includeDisabled)
	if err != nil {
		return nil, notFound(err)
	}
	names, err := s.categoryNames(ctx)
	if err != nil {
		return nil, err
	}
	out := transport.Product(*p, names)
	return &out, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (int64, []transport.ProductResponse, error) {
	var (
		total int64
		items []models.Product
		err   error
	)
	if s.Search != nil && strings.TrimSpace(q.Search) != "" && !q.IncludeDisabled {
		total, items, err = s.searchProducts(ctx, q)
	} else {
		total, items, err = s.Repo.ListProducts(ctx, repo.ProductFilter{
			CategoryID:      q.CategoryID,
			Search:          q.Search,
			IncludeDisabled: q.IncludeDisabled,
			Offset:          q.Offset,
			Limit:           q.Limit,
		})
	}
	if err != nil {
		return 0, nil, err
	}

	names, err := s.categoryNames(ctx)
	if err != nil {
		return 0, nil, err
	}
	return total, transport.Products(items, names), nil
}

// searchProducts asks the index for ids and loads the rows from the store in index order.
func (s *CatalogService) searchProducts(ctx context.Context, q ProductQuery) (int64, []models.Product, error) {
	total, ids, err := s.Search.Search(ctx, q.Search, q.CategoryID, q.Offset, q.Limit)
	if err != nil {
		logging.FromContext(ctx).Warn("search_fallback", "reason", "index unavailable", "error", err)
		return s.Repo.ListProducts(ctx, repo.ProductFilter{
			CategoryID: q.CategoryID,
			Search:     q.Search,
			Offset:     q.Offset,
			Limit:      q.Limit,
		})
	}
	if len(ids) == 0 {
		return total, []models.Product{}, nil
	}

	_, rows, err := s.Repo.ListProducts(ctx, repo.ProductFilter{IDs: ids})
	if err != nil {
		return 0, nil, err
	}
	byID := make(map[uint]models.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	items := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			items = append(items, p)
		}
	}
	return total, items, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*transport.ProductResponse, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	p := models.Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		Discount:      req.Discount,
		StockQuantity: req.StockQuantity,
		Brand:         req.Brand,
		Images:        req.Images,
		CategoryID:    req.CategoryID,
		Enabled:       true,
	}
	err := s.checkCategory(ctx, p.CategoryID)
	if err == nil {
		err = validateProduct(&p)
	}
	if err != nil {
		l.Warn("create_product_error", "status", 400, "reason", err.Error())
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, p, events.ProductCreated)
	return s.GetProduct(ctx, p.ID, true)
}

// UpdateProduct applies the non-nil fields of req. Stock edits run under the store's
// row lock.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req transport.UpdateProductRequest) (*transport.ProductResponse, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product", "product_id", id)

	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		l.Warn("update_product_error", "status", 400, "reason", err.Error())
		return nil, err
	}

	// fn runs under the store lock and must not call back into the store.
	p, err := s.Repo.UpdateProduct(ctx, id, func(p *models.Product) error {
		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.Discount != nil {
			d := *req.Discount
			p.Discount = &d
		}
		if req.StockQuantity != nil {
			p.StockQuantity = *req.StockQuantity
		}
		if req.Brand != nil {
			p.Brand = *req.Brand
		}
		if req.Images != nil {
			p.Images = req.Images
		}
		if req.CategoryID != nil {
			cid := *req.CategoryID
			p.CategoryID = &cid
		}
		if req.Enabled != nil {
			p.Enabled = *req.Enabled
		}
		return validateProduct(p)
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			l.Warn("update_product_error", "status", 400, "reason", err.Error())
			return nil, err
		}
		return nil, notFound(err)
	}

	s.afterWrite(ctx, *p, events.ProductUpdated)
	return s.GetProduct(ctx, p.ID, true)
}

// DeleteProduct disables the product. Order history keeps referring to it.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	p, err := s.Repo.UpdateProduct(ctx, id, func(p *models.Product) error {
		if !p.Enabled {
			return repo.ErrProductNotFound
		}
		p.Enabled = false
		return nil
	})
	if err != nil {
		return notFound(err)
	}
	s.afterWrite(ctx, *p, events.ProductDeleted)
	return nil
}

func (s *CatalogService) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.Repo.GetCategory(ctx, *id, false); err != nil {
		if errors.Is(err, repo.ErrCategoryNotFound) {
			return fmt.Errorf("%w: category %d does not exist", ErrValidation, *id)
		}
		return err
	}
	return nil
}

func validateProduct(p *models.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if p.StockQuantity < 0 {
		return fmt.Errorf("%w: stockQuantity must be >= 0", ErrValidation)
	}
	if p.Discount != nil && (p.Discount.IsNegative() || p.Discount.GreaterThan(hundred)) {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrValidation)
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return nil
}

// afterWrite updates the search index and publishes the domain event. Failures are
// logged, the write itself already succeeded.
func (s *CatalogService) afterWrite(ctx context.Context, p models.Product, eventType string) {
	l := logging.FromContext(ctx)
	if s.Search != nil {
		if err := s.Search.IndexProduct(ctx, p); err != nil {
			l.Error("index_product_error", "product_id", p.ID, "error", err)
		}
	}
	if s.Events != nil {
		ev := ProductEvent{
			ProductID:     p.ID,
			Name:          p.Name,
			Price:         p.Price,
			StockQuantity: p.StockQuantity,
			Enabled:       p.Enabled,
		}
		key := strconv.FormatUint(uint64(p.ID), 10)
		if err := s.Events.Publish(ctx, events.TopicProductEvents, key, eventType, ev); err != nil {
			l.Error("publish_event_error", "event_type", eventType, "product_id", p.ID, "error", err)
		}
	}
}

func (s *CatalogService) categoryNames(ctx context.Context) (map[uint]string, error) {
	cats, err := s.Repo.ListCategories(ctx, false)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}

func notFound(err error) error {
	switch {
	case errors.Is(err, repo.ErrProductNotFound), errors.Is(err, repo.ErrCategoryNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return err
	}
}
