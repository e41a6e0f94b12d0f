package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/service"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/transport"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		l.Warn("get_product_failed", "status", 400, "reason", "id is not a positive integer")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID")
	}

	product, err := h.Svc.GetProduct(ctx, id, false)
	if err != nil {
		return httpError(l, "get_product_failed", err, "Product not found")
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	return h.listProducts(c, false)
}

func (h *CatalogHTTP) AdminGetProducts(c echo.Context) error {
	return h.listProducts(c, true)
}

func (h *CatalogHTTP) listProducts(c echo.Context, includeDisabled bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page, offset, limit := util.Calculate(
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)

	q := service.ProductQuery{
		Search:          c.QueryParam("search"),
		IncludeDisabled: includeDisabled,
		Offset:          offset,
		Limit:           limit,
	}
	if raw := c.QueryParam("categoryId"); raw != "" {
		cid, ok := util.ParseID(raw)
		if !ok {
			l.Warn("get_products_error", "status", 400, "reason", "invalid categoryId")
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
		}
		q.CategoryID = &cid
	}

	total, items, err := h.Svc.ListProducts(ctx, q)
	if err != nil {
		l.Error("get_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products").SetInternal(err)
	}

	return c.JSON(http.StatusOK, transport.ProductPage{
		Data: items,
		Meta: transport.Meta{
			Page:       page,
			Size:       limit,
			Total:      total,
			TotalPages: util.TotalPages(total, limit),
			HasPrev:    page > 1,
			HasNext:    int64(offset+limit) < total,
		},
	})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	created, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return httpError(l, "product_create_error", err, "Product not found")
	}

	l.Info("create_product_success", "product_id", created.ID)
	return c.JSON(http.StatusCreated, created)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update_product")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		l.Warn("product_update_error", "status", 400, "reason", "id is not a positive integer")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID")
	}

	var req transport.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod, err := h.Svc.UpdateProduct(ctx, id, req)
	if err != nil {
		return httpError(l, "product_update_error", err, "Product not found")
	}

	l.Info("update_product_success", "product_id", id)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete_product")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		l.Warn("product_delete_error", "status", 400, "reason", "id is not a positive integer")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID")
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return httpError(l, "product_delete_error", err, "Product not found")
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "Product deleted successfully"})
}

func httpError(l *slog.Logger, event string, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", err.Error())
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", notFoundMsg, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, notFoundMsg).SetInternal(err)
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
	}
}
