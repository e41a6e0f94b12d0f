package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	"github.com/Skotchmaster/pharmacy_shop/pkg/tokens"
)

const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// Rejection reasons reported by the guard.
const (
	ReasonNoToken          = "No token provided"
	ReasonInvalidToken     = "Invalid token"
	ReasonTokenExpired     = "Token expired"
	ReasonAuthRequired     = "Authentication required"
	ReasonInsufficientRole = "Admin access required"
)

type Identity struct {
	UserID uint
	Email  string
	Role   string
}

func (i Identity) IsAdmin() bool { return i.Role == tokens.RoleAdmin }

type Guard struct {
	JWTSecret []byte
}

func NewGuard(secret []byte) *Guard {
	return &Guard{JWTSecret: secret}
}

type ValidatorFunc func(id Identity) error

func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := bearerToken(c.Request())
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, ReasonNoToken)
		}

		claims, err := tokens.AccessClaimsFromToken(raw, g.JWTSecret)
		if err != nil {
			if errors.Is(err, tokens.ErrTokenExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, ReasonTokenExpired).SetInternal(err)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, ReasonInvalidToken).SetInternal(err)
		}

		setIdentity(c, Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role})
		return next(c)
	}
}

// RequireAdmin must run after RequireAuth.
func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return RequireIdentity(func(id Identity) error {
		if !id.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, ReasonInsufficientRole)
		}
		return nil
	})(next)
}

// RequireIdentity runs validator against the identity attached by RequireAuth.
func RequireIdentity(validator ValidatorFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, ReasonAuthRequired)
			}
			if validator != nil {
				if err := validator(id); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}

func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(CtxUserID).(uint)
	if !ok || id == 0 {
		return Identity{}, false
	}
	email, _ := c.Get(CtxEmail).(string)
	role, _ := c.Get(CtxRole).(string)
	return Identity{UserID: id, Email: email, Role: role}, true
}

func setIdentity(c echo.Context, id Identity) {
	c.Set(CtxUserID, id.UserID)
	c.Set(CtxEmail, id.Email)
	c.Set(CtxRole, id.Role)

	req := c.Request()
	l := logging.FromContext(req.Context()).With("user_id", id.UserID, "role", id.Role)
	c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
