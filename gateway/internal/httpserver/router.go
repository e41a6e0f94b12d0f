package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/gateway/internal/proxy"
)

// APIPrefix is stripped before forwarding, so /api/products reaches the catalog as
// /products.
const APIPrefix = "/api"

type Deps struct {
	Auth    *proxy.Upstream
	Catalog *proxy.Upstream
	Order   *proxy.Upstream
}

func Register(e *echo.Echo, d *Deps) {
	api := e.Group(APIPrefix)

	forward := func(u *proxy.Upstream, paths ...string) {
		for _, p := range paths {
			api.Any(p, u.Handler)
			api.Any(p+"/*", u.Handler)
		}
	}

	forward(d.Auth, "/auth", "/admin/users")
	forward(d.Catalog, "/products", "/categories", "/admin/products", "/admin/categories")
	forward(d.Order, "/orders", "/cart", "/admin/orders", "/admin/dashboard")
}
