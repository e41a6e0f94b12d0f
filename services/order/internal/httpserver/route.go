package httpserver

import (
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/pharmacy_shop/pkg/middleware/auth"
)

type Deps struct {
	OrderHandler *OrderHTTP
	JWTSecret    []byte
}

func Register(e *echo.Echo, d *Deps) {
	guard := middleware.NewGuard(d.JWTSecret)
	h := d.OrderHandler

	orders := e.Group("/orders", guard.RequireAuth)
	orders.POST("", h.CreateOrder)
	orders.GET("/my-orders", h.MyOrders)
	orders.GET("/:id", h.GetOrder)

	cart := e.Group("/cart", guard.RequireAuth)
	cart.GET("", h.GetCart)
	cart.POST("/items", h.AddToCart)
	cart.DELETE("/items/:productId", h.RemoveOneFromCart)
	cart.DELETE("", h.ClearCart)
	cart.POST("/checkout", h.Checkout)

	admin := e.Group("/admin", guard.RequireAuth, guard.RequireAdmin)
	admin.GET("/orders", h.AdminListOrders)
	admin.GET("/orders/:id", h.AdminGetOrder)
	admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)

	dash := admin.Group("/dashboard")
	dash.GET("/stats", h.DashboardStats)
	dash.GET("/revenue/monthly", h.MonthlyRevenue)
	dash.GET("/products/top", h.TopProducts)
	dash.GET("/orders/status", h.OrderStatusCounts)
	dash.GET("/products/low-stock", h.LowStockProducts)
}
