package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	middleware "github.com/Skotchmaster/pharmacy_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/transport"
)

func (h *OrderHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	items, err := h.Svc.GetCart(ctx, id.UserID)
	if err != nil {
		return httpError(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *OrderHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	var req transport.CartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.AddToCart(ctx, id.UserID, req)
	if err != nil {
		return httpError(l, "add_to_cart_error", err)
	}
	l.Info("add_to_cart_success", "product_id", item.ProductID, "quantity", item.Quantity)
	return c.JSON(http.StatusCreated, item)
}

func (h *OrderHTTP) RemoveOneFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_one")

	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	productID, ok := parseID(c.Param("productId"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID")
	}

	deleted, item, err := h.Svc.RemoveOneFromCart(ctx, id.UserID, productID)
	if err != nil {
		return httpError(l, "remove_from_cart_error", err)
	}
	if deleted {
		return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "Item removed from cart"})
	}
	return c.JSON(http.StatusOK, item)
}

func (h *OrderHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	if err := h.Svc.ClearCart(ctx, id.UserID); err != nil {
		return httpError(l, "clear_cart_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.Checkout(ctx, id.UserID, req.Shipping)
	if err != nil {
		return httpError(l, "checkout_error", err)
	}
	l.Info("checkout_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}
