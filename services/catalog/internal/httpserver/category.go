package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/transport"
	"github.com/Skotchmaster/pharmacy_shop/services/catalog/internal/util"
)

func (h *CatalogHTTP) GetCategories(c echo.Context) error {
	cats, err := h.Svc.ListCategories(c.Request().Context(), false)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list categories").SetInternal(err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) AdminGetCategories(c echo.Context) error {
	cats, err := h.Svc.ListCategories(c.Request().Context(), true)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list categories").SetInternal(err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get_category")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}
	cat, err := h.Svc.GetCategory(ctx, id)
	if err != nil {
		return httpError(l, "get_category_failed", err, "Category not found")
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_category")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("category_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return httpError(l, "category_create_error", err, "Category not found")
	}
	l.Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update_category")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}
	var req transport.UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("category_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	cat, err := h.Svc.UpdateCategory(ctx, id, req)
	if err != nil {
		return httpError(l, "category_update_error", err, "Category not found")
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete_category")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}
	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return httpError(l, "category_delete_error", err, "Category not found")
	}
	l.Info("delete_category_success", "category_id", id)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "Category deleted successfully"})
}
