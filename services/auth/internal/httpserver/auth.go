package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	authmw "github.com/Skotchmaster/pharmacy_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/pharmacy_shop/pkg/tokens"
	"github.com/Skotchmaster/pharmacy_shop/services/auth/internal/service"
	"github.com/Skotchmaster/pharmacy_shop/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Register(ctx, req.Email, req.Password, req.FullName)
	if err != nil {
		return httpError(err)
	}

	l.Info("register_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusCreated, authResponse(res, "User registered successfully"))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, authResponse(res, "Login successful"))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		l.Warn("refresh_error", "status", 400, "reason", "refresh token required")
		return echo.NewHTTPError(http.StatusBadRequest, "Refresh token required")
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, transport.RefreshResponse{
		Status:       "success",
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		AccessExp:    res.AccessExp.Unix(),
		RefreshExp:   res.RefreshExp.Unix(),
	})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, authmw.ReasonAuthRequired)
	}
	u, err := h.Svc.Me(c.Request().Context(), id.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.User(u))
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	var req transport.RefreshRequest
	_ = c.Bind(&req)

	if err := h.Svc.LogOut(ctx, req.RefreshToken); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot revoke refresh token").SetInternal(err)
	}

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "Logged out successfully",
	})
}

func authResponse(res *service.LoginResult, msg string) transport.AuthResponse {
	return transport.AuthResponse{
		Status:       "success",
		Message:      msg,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		AccessExp:    res.AccessExp.Unix(),
		RefreshExp:   res.RefreshExp.Unix(),
		User:         transport.User(res.User),
	}
}

func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "User with this email already exists").SetInternal(err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password").SetInternal(err)
	case errors.Is(err, service.ErrUserDisabled):
		return echo.NewHTTPError(http.StatusUnauthorized, "Account is disabled").SetInternal(err)
	case errors.Is(err, tokens.ErrTokenExpired):
		return echo.NewHTTPError(http.StatusUnauthorized, authmw.ReasonTokenExpired).SetInternal(err)
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token").SetInternal(err)
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
	}
}
