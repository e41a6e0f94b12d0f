package httpserver

import (
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/pharmacy_shop/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler  *AuthHTTP
	AdminHandler *AdminHTTP
	JWTSecret    []byte
}

func Register(e *echo.Echo, d *Deps) {
	guard := authmw.NewGuard(d.JWTSecret)

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.GET("/me", d.AuthHandler.Me, guard.RequireAuth)
	auth.POST("/logout", d.AuthHandler.LogOut, guard.RequireAuth)

	admin := e.Group("/admin/users", guard.RequireAuth, guard.RequireAdmin)
	admin.GET("", d.AdminHandler.ListUsers)
	admin.GET("/:id", d.AdminHandler.GetUser)
	admin.PATCH("/:id/enable", d.AdminHandler.SetEnabled)
	admin.PATCH("/:id/role", d.AdminHandler.SetRole)
}
