package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	pkg_hash "github.com/Skotchmaster/pharmacy_shop/pkg/hash"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	"github.com/Skotchmaster/pharmacy_shop/pkg/tokens"
	"github.com/Skotchmaster/pharmacy_shop/services/auth/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/services/auth/internal/repo"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrConflict            = errors.New("conflict")
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserDisabled        = errors.New("user disabled")
)

const minPasswordLen = 6

// UserStore is the credential store.
type UserStore interface {
	CreateUserIfNotExists(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetEnabled(ctx context.Context, id uint, enabled bool) (*models.User, error)
	SetRole(ctx context.Context, id uint, role string) (*models.User, error)
}

// Revocations records consumed refresh-token ids. Revoke reports whether this call
// was the first to revoke jti.
type Revocations interface {
	Revoke(ctx context.Context, jti string, until time.Time) (bool, error)
}

type AuthService struct {
	Repo    UserStore
	Revoked Revocations
	Tokens  *tokens.Issuer

	// HashCost overrides the bcrypt cost, zero means the default.
	HashCost int
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	User         *models.User
}

func (h *AuthService) Register(ctx context.Context, email, password, fullName string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email = repo.NormalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	if err := validateRegistration(email, password, fullName); err != nil {
		l.Warn("register_error", "status", 400, "reason", err.Error())
		return nil, err
	}

	pwHash, err := h.hash(password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	user := models.User{
		Email:        email,
		PasswordHash: pwHash,
		FullName:     fullName,
		Role:         tokens.RoleUser,
		Enabled:      true,
	}

	if err := h.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 409, "reason", "user already exist")
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		l.Error("register_error", "status", 500, "reason", "internal Server Error", "error", err)
		return nil, err
	}

	return h.issue(&user)
}

func (h *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = repo.NormalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", email)

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := h.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}
	if !user.Enabled {
		l.Warn("login_failed", "status", 401, "reason", "user disabled")
		return nil, ErrUserDisabled
	}

	return h.issue(user)
}

// Refresh consumes refreshToken and issues a new pair for the user's current role and
// email. A refresh token is accepted only once.
func (h *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := h.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, tokens.ErrTokenExpired) {
			return nil, tokens.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	user, err := h.Repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "user gone", "user_id", claims.UserID)
			return nil, ErrUserDisabled
		}
		return nil, err
	}
	if !user.Enabled {
		l.Warn("refresh_failed", "status", 401, "reason", "user disabled", "user_id", user.ID)
		return nil, ErrUserDisabled
	}

	first, err := h.Revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	if !first {
		l.Warn("refresh_failed", "status", 401, "reason", "refresh token reused", "jti", claims.ID)
		return nil, fmt.Errorf("%w: token revoked", ErrInvalidRefreshToken)
	}

	return h.issue(user)
}

// LogOut revokes the refresh token if one is given. Unparseable tokens are ignored.
func (h *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := h.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil
	}
	if _, err := h.Revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		logging.FromContext(ctx).Error("logout_error", "status", 500, "reason", "cannot revoke refreshToken", "error", err)
		return err
	}
	return nil
}

func (h *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return h.GetUser(ctx, userID)
}

func (h *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	u, err := h.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}
	return u, nil
}

func (h *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return h.Repo.ListUsers(ctx)
}

func (h *AuthService) SetEnabled(ctx context.Context, id uint, enabled bool) (*models.User, error) {
	u, err := h.Repo.SetEnabled(ctx, id, enabled)
	if errors.Is(err, repo.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return u, err
}

func (h *AuthService) SetRole(ctx context.Context, id uint, role string) (*models.User, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role != tokens.RoleUser && role != tokens.RoleAdmin {
		return nil, fmt.Errorf("%w: role must be USER or ADMIN", ErrValidation)
	}
	u, err := h.Repo.SetRole(ctx, id, role)
	if errors.Is(err, repo.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return u, err
}

// SeedAdmin creates the administrator account if the email is not registered yet.
func (h *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	pwHash, err := h.hash(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:        email,
		PasswordHash: pwHash,
		FullName:     "Admin User",
		Role:         tokens.RoleAdmin,
		Enabled:      true,
	}
	err = h.Repo.CreateUserIfNotExists(ctx, &admin)
	if err != nil && !errors.Is(err, repo.ErrUserAlreadyExist) {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err == nil {
		logging.FromContext(ctx).Info("admin_seeded", "email", admin.Email)
	}
	return nil
}

func (h *AuthService) issue(u *models.User) (*LoginResult, error) {
	pair, err := h.Tokens.Issue(tokens.Subject{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		AccessExp:    pair.AccessExp,
		RefreshExp:   pair.RefreshExp,
		User:         u,
	}, nil
}

func (h *AuthService) hash(password string) (string, error) {
	if h.HashCost > 0 {
		return pkg_hash.HashPasswordCost(password, h.HashCost)
	}
	return pkg_hash.HashPassword(password)
}

func validateRegistration(email, password, fullName string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	if fullName == "" {
		return fmt.Errorf("%w: full name is required", ErrValidation)
	}
	return nil
}
