package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	middleware "github.com/Skotchmaster/pharmacy_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/service"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.PlaceOrder(ctx, id.UserID, req)
	if err != nil {
		return httpError(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) MyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.my_orders")

	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	orders, err := h.Svc.MyOrders(ctx, id.UserID)
	if err != nil {
		return httpError(l, "my_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		l.Warn("get_order_error", "status", 400, "reason", "id is not a positive integer")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order ID")
	}

	order, err := h.Svc.GetOrder(ctx, ident.UserID, ident.IsAdmin(), id)
	if err != nil {
		return httpError(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func parseID(s string) (uint, bool) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func httpError(l *slog.Logger, event string, err error) error {
	var stock *service.InsufficientStockError
	switch {
	case errors.As(err, &stock):
		l.Warn(event, "status", 400, "reason", "insufficient stock", "product_id", stock.ProductID,
			"requested", stock.Requested, "available", stock.Available)
		return echo.NewHTTPError(http.StatusBadRequest, "Insufficient stock for product "+stock.ProductName).SetInternal(err)
	case errors.Is(err, service.ErrProductNotFound):
		l.Warn(event, "status", 404, "reason", err.Error())
		return echo.NewHTTPError(http.StatusNotFound, "Product not found").SetInternal(err)
	case errors.Is(err, service.ErrOrderNotFound):
		l.Warn(event, "status", 404, "reason", err.Error())
		return echo.NewHTTPError(http.StatusNotFound, "Order not found").SetInternal(err)
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", err.Error())
		return echo.NewHTTPError(http.StatusNotFound, "Not found").SetInternal(err)
	case errors.Is(err, service.ErrInvalidStatus):
		l.Warn(event, "status", 400, "reason", err.Error())
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status").SetInternal(err)
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", err.Error())
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, service.ErrForbidden):
		l.Warn(event, "status", 403, "reason", err.Error())
		return echo.NewHTTPError(http.StatusForbidden, "Unauthorized").SetInternal(err)
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
	}
}
