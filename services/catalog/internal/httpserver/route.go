package httpserver

import (
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/pharmacy_shop/pkg/middleware/auth"
)

type Deps struct {
	CatalogHandler *CatalogHTTP
	JWTSecret      []byte
}

func Register(e *echo.Echo, d *Deps) {
	guard := middleware.NewGuard(d.JWTSecret)
	h := d.CatalogHandler

	products := e.Group("/products")
	products.GET("", h.GetProducts)
	products.GET("/:id", h.GetProduct)

	categories := e.Group("/categories")
	categories.GET("", h.GetCategories)
	categories.GET("/:id", h.GetCategory)

	admin := e.Group("/admin", guard.RequireAuth, guard.RequireAdmin)
	admin.GET("/products", h.AdminGetProducts)
	admin.POST("/products", h.CreateProduct)
	admin.PUT("/products/:id", h.UpdateProduct)
	admin.DELETE("/products/:id", h.DeleteProduct)

	admin.GET("/categories", h.AdminGetCategories)
	admin.POST("/categories", h.CreateCategory)
	admin.PUT("/categories/:id", h.UpdateCategory)
	admin.DELETE("/categories/:id", h.DeleteCategory)
}
