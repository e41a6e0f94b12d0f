package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/models"
)

type CreateProductRequest struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	Discount      *decimal.Decimal `json:"discount"`
	StockQuantity int              `json:"stockQuantity"`
	Brand         string           `json:"brand"`
	Images        []string         `json:"images"`
	CategoryID    *uint            `json:"categoryId"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	Discount      *decimal.Decimal `json:"discount"`
	StockQuantity *int             `json:"stockQuantity"`
	Brand         *string          `json:"brand"`
	Images        []string         `json:"images"`
	CategoryID    *uint            `json:"categoryId"`
	Enabled       *bool            `json:"enabled"`
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Enabled     *bool   `json:"enabled"`
}

type ProductResponse struct {
	models.Product
	CategoryName string `json:"categoryName,omitempty"`
}

// Product attaches the category name when the category is still enabled.
func Product(p models.Product, categoryNames map[uint]string) ProductResponse {
	if p.Images == nil {
		p.Images = []string{}
	}
	out := ProductResponse{Product: p}
	if p.CategoryID != nil {
		out.CategoryName = categoryNames[*p.CategoryID]
	}
	return out
}

func Products(ps []models.Product, categoryNames map[uint]string) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, Product(p, categoryNames))
	}
	return out
}

type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type ProductPage struct {
	Data []ProductResponse `json:"data"`
	Meta Meta              `json:"meta"`
}
