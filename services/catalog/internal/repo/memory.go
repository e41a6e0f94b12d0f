package repo

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/models"
)

type MemoryRepo struct {
	mu         sync.RWMutex
	products   map[uint]models.Product
	categories map[uint]models.Category
	nextProd   uint
	nextCat    uint
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		products:   make(map[uint]models.Product),
		categories: make(map[uint]models.Category),
		nextProd:   1,
		nextCat:    1,
	}
}

func (r *MemoryRepo) GetProduct(_ context.Context, id uint, includeDisabled bool) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok || (!p.Enabled && !includeDisabled) {
		return nil, ErrProductNotFound
	}
	p = cloneProduct(p)
	return &p, nil
}

func (r *MemoryRepo) ListProducts(_ context.Context, f ProductFilter) (int64, []models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if !f.IncludeDisabled && !p.Enabled {
			continue
		}
		if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
			continue
		}
		if f.IDs != nil && !slices.Contains(f.IDs, p.ID) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		matched = append(matched, cloneProduct(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	start := min(max(f.Offset, 0), len(matched))
	end := len(matched)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(matched))
	}
	return total, matched[start:end], nil
}

func (r *MemoryRepo) CreateProduct(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	p.ID = r.nextProd
	p.CreatedAt, p.UpdatedAt = now, now
	r.nextProd++
	r.products[p.ID] = cloneProduct(*p)
	return nil
}

func (r *MemoryRepo) UpdateProduct(_ context.Context, id uint, fn func(p *models.Product) error) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	p = cloneProduct(p)
	if err := fn(&p); err != nil {
		return nil, err
	}
	p.ID = id
	p.UpdatedAt = time.Now().UTC()
	r.products[id] = cloneProduct(p)
	return &p, nil
}

func (r *MemoryRepo) ListCategories(_ context.Context, includeDisabled bool) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		if c.Enabled || includeDisabled {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) GetCategory(_ context.Context, id uint, includeDisabled bool) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok || (!c.Enabled && !includeDisabled) {
		return nil, ErrCategoryNotFound
	}
	return &c, nil
}

func (r *MemoryRepo) CreateCategory(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	c.ID = r.nextCat
	c.CreatedAt, c.UpdatedAt = now, now
	r.nextCat++
	r.categories[c.ID] = *c
	return nil
}

func (r *MemoryRepo) UpdateCategory(_ context.Context, id uint, fn func(c *models.Category) error) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	if err := fn(&c); err != nil {
		return nil, err
	}
	c.ID = id
	c.UpdatedAt = time.Now().UTC()
	r.categories[id] = c
	return &c, nil
}

func (r *MemoryRepo) CountCategories(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.categories)), nil
}

// cloneProduct detaches the slice and pointer fields so callers never alias stored state.
func cloneProduct(p models.Product) models.Product {
	p.Images = slices.Clone(p.Images)
	if p.Discount != nil {
		d := *p.Discount
		p.Discount = &d
	}
	if p.CategoryID != nil {
		id := *p.CategoryID
		p.CategoryID = &id
	}
	return p
}
