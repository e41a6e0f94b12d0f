package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	"github.com/Skotchmaster/pharmacy_shop/services/auth/internal/service"
	"github.com/Skotchmaster/pharmacy_shop/services/auth/internal/transport"
)

type AdminHTTP struct {
	Svc *service.AuthService
}

func (h *AdminHTTP) ListUsers(c echo.Context) error {
	users, err := h.Svc.ListUsers(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.Users(users))
}

func (h *AdminHTTP) GetUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	u, err := h.Svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.User(u))
}

func (h *AdminHTTP) SetEnabled(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := userID(c)
	if err != nil {
		return err
	}
	var req transport.EnableRequest
	if err := c.Bind(&req); err != nil || req.Enabled == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "enabled is required")
	}
	u, err := h.Svc.SetEnabled(ctx, id, *req.Enabled)
	if err != nil {
		return httpError(err)
	}
	logging.FromContext(ctx).Info("user_enabled_changed", "target_id", id, "enabled", u.Enabled)
	return c.JSON(http.StatusOK, transport.User(u))
}

func (h *AdminHTTP) SetRole(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := userID(c)
	if err != nil {
		return err
	}
	var req transport.RoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	u, err := h.Svc.SetRole(ctx, id, req.Role)
	if err != nil {
		return httpError(err)
	}
	logging.FromContext(ctx).Info("user_role_changed", "target_id", id, "role", u.Role)
	return c.JSON(http.StatusOK, transport.User(u))
}

func userID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return uint(id), nil
}
