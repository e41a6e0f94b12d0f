package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/pharmacy_shop/pkg/tokens"
	"github.com/Skotchmaster/pharmacy_shop/services/auth/internal/repo"
)

func newTestAuthService() *AuthService {
	return &AuthService{
		Repo:    repo.NewMemoryRepo(),
		Revoked: repo.NewMemoryRevocations(),
		Tokens: &tokens.Issuer{
			AccessSecret:  []byte("test-jwt-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
		},
		HashCost: bcrypt.MinCost,
	}
}

func TestAuthService_Register_IssuesTokensForNewUser(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	res, err := svc.Register(context.Background(), "  Alice@Example.COM ", "secret1", "Alice")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, tokens.RoleUser, res.User.Role)
	assert.True(t, res.User.Enabled)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)

	claims, err := svc.Tokens.VerifyAccess(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, tokens.RoleUser, claims.Role)
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		fullName string
	}{
		{name: "empty email", email: "", password: "secret1", fullName: "A"},
		{name: "malformed email", email: "not-an-email", password: "secret1", fullName: "A"},
		{name: "display name form", email: "Bob <bob@example.com>", password: "secret1", fullName: "A"},
		{name: "short password", email: "a@b.co", password: "12345", fullName: "A"},
		{name: "missing full name", email: "a@b.co", password: "secret1", fullName: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := svc.Register(ctx, tt.email, tt.password, tt.fullName)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "dup@example.com", "secret1", "First")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "DUP@example.com", "secret2", "Second")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, "bob@example.com", "secret1", "Bob")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		res, err := svc.Login(ctx, "BOB@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, res.User.ID)
		assert.NotEmpty(t, res.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "bob@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost@example.com", "secret1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("empty fields", func(t *testing.T) {
		_, err := svc.Login(ctx, "", "")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("disabled", func(t *testing.T) {
		_, err := svc.SetEnabled(ctx, reg.User.ID, false)
		require.NoError(t, err)
		_, err = svc.Login(ctx, "bob@example.com", "secret1")
		assert.ErrorIs(t, err, ErrUserDisabled)
	})
}

func TestAuthService_Refresh_ReflectsCurrentRole(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, "carol@example.com", "secret1", "Carol")
	require.NoError(t, err)

	_, err = svc.SetRole(ctx, reg.User.ID, "admin")
	require.NoError(t, err)

	res, err := svc.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.Tokens.VerifyAccess(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tokens.RoleAdmin, claims.Role)
	assert.NotEqual(t, reg.RefreshToken, res.RefreshToken)
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, "dan@example.com", "secret1", "Dan")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)

	res, err := svc.Refresh(ctx, reg.RefreshToken)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_Refresh_ConcurrentReuseSucceedsOnce(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, "erin@example.com", "secret1", "Erin")
	require.NoError(t, err)

	const n = 10
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Refresh(ctx, reg.RefreshToken); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
}

func TestAuthService_Refresh_DisabledOrMissingUser(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, "frank@example.com", "secret1", "Frank")
	require.NoError(t, err)

	_, err = svc.SetEnabled(ctx, reg.User.ID, false)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, ErrUserDisabled)

	orphan, err := svc.Tokens.Issue(tokens.Subject{UserID: 999, Email: "x@example.com", Role: tokens.RoleUser})
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, orphan.RefreshToken)
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	res, err := svc.Refresh(context.Background(), "not-a-valid-jwt")

	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrInvalidRefreshToken))
}

func TestAuthService_Refresh_AccessTokenRejected(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	reg, err := svc.Register(context.Background(), "gina@example.com", "secret1", "Gina")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), reg.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_Refresh_Expired(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, "hal@example.com", "secret1", "Hal")
	require.NoError(t, err)

	later := time.Now().Add(8 * 24 * time.Hour)
	svc.Tokens.Now = func() time.Time { return later }

	_, err = svc.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, tokens.ErrTokenExpired)
}

func TestAuthService_LogOut_RevokesRefreshToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, "ivy@example.com", "secret1", "Ivy")
	require.NoError(t, err)

	require.NoError(t, svc.LogOut(ctx, reg.RefreshToken))

	_, err = svc.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_LogOut_EmptyToken_NoError(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	require.NoError(t, svc.LogOut(context.Background(), ""))
	require.NoError(t, svc.LogOut(context.Background(), "garbage"))
}

func TestAuthService_AdminOperations(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, "jay@example.com", "secret1", "Jay")
	require.NoError(t, err)

	_, err = svc.SetRole(ctx, reg.User.ID, "superuser")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetRole(ctx, 404, tokens.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SetEnabled(ctx, 404, true)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetUser(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "jay@example.com", users[0].Email)
}

func TestAuthService_SeedAdmin_Idempotent(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService()
	ctx := context.Background()

	require.NoError(t, svc.SeedAdmin(ctx, "admin@pharmacy.com", "admin123"))
	require.NoError(t, svc.SeedAdmin(ctx, "admin@pharmacy.com", "admin123"))

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, tokens.RoleAdmin, users[0].Role)

	res, err := svc.Login(ctx, "admin@pharmacy.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, tokens.RoleAdmin, res.User.Role)
}
