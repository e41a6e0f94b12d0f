package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/analytics"
	"github.com/Skotchmaster/pharmacy_shop/services/order/internal/transport"
)

func (h *OrderHTTP) AdminListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	orders, err := h.Svc.ListOrders(ctx)
	if err != nil {
		return httpError(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) AdminGetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.get_order")

	id, ok := parseID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order ID")
	}
	order, err := h.Svc.GetOrder(ctx, 0, true, id)
	if err != nil {
		return httpError(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_order_status")

	id, ok := parseID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order ID")
	}
	var req transport.StatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.UpdateOrderStatus(ctx, id, req.Status)
	if err != nil {
		return httpError(l, "update_status_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) snapshot(c echo.Context, event string) (analytics.Snapshot, error) {
	ctx := c.Request().Context()
	s, err := h.Svc.Snapshot(ctx)
	if err != nil {
		return s, httpError(logging.FromContext(ctx).With("handler", "admin.dashboard"), event, err)
	}
	return s, nil
}

func (h *OrderHTTP) DashboardStats(c echo.Context) error {
	s, err := h.snapshot(c, "dashboard_stats_error")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analytics.Stats(s))
}

func (h *OrderHTTP) MonthlyRevenue(c echo.Context) error {
	s, err := h.snapshot(c, "monthly_revenue_error")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analytics.MonthlyRevenue(s))
}

func (h *OrderHTTP) TopProducts(c echo.Context) error {
	s, err := h.snapshot(c, "top_products_error")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analytics.TopProducts(s, queryInt(c, "limit")))
}

func (h *OrderHTTP) OrderStatusCounts(c echo.Context) error {
	s, err := h.snapshot(c, "order_status_error")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analytics.OrderStatusCounts(s))
}

func (h *OrderHTTP) LowStockProducts(c echo.Context) error {
	s, err := h.snapshot(c, "low_stock_error")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analytics.LowStockProducts(s, queryInt(c, "threshold")))
}

// queryInt returns 0 for a missing or unparsable parameter, which the analytics
// functions treat as their default.
func queryInt(c echo.Context, name string) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return v
}
