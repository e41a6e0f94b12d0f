package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/transport"
)

func (s *CatalogService) ListCategories(ctx context.Context, includeDisabled bool) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx, includeDisabled)
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	c, err := s.Repo.GetCategory(ctx, id, false)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	c := models.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Image:       req.Image,
		Enabled:     true,
	}
	if c.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := s.Repo.CreateCategory(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, req transport.UpdateCategoryRequest) (*models.Category, error) {
	c, err := s.Repo.UpdateCategory(ctx, id, func(c *models.Category) error {
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return fmt.Errorf("%w: name is required", ErrValidation)
			}
			c.Name = name
		}
		if req.Description != nil {
			c.Description = *req.Description
		}
		if req.Image != nil {
			c.Image = *req.Image
		}
		if req.Enabled != nil {
			c.Enabled = *req.Enabled
		}
		return nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// DeleteCategory disables the category. Its products keep their categoryId and render
// without a category name.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	_, err := s.Repo.UpdateCategory(ctx, id, func(c *models.Category) error {
		if !c.Enabled {
			return repo.ErrCategoryNotFound
		}
		c.Enabled = false
		return nil
	})
	return notFound(err)
}
