package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	ErrNoRefreshToken = errors.New("no refresh token")
	ErrSessionExpired = errors.New("session expired")
)

const (
	pathLogin    = "/auth/login"
	pathRegister = "/auth/register"
	pathRefresh  = "/auth/refresh"
	pathLogout   = "/auth/logout"
	pathMe       = "/auth/me"

	refreshTimeout = 10 * time.Second
)

// Client attaches the stored access token to every request and transparently
// refreshes it once when the server answers 401. Concurrent 401s share a single
// refresh call and each retries its own request afterwards.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      TokenStore

	refreshes singleflight.Group
}

func NewClient(baseURL string, store TokenStore) *Client {
	if store == nil {
		store = NewMemoryStore(Tokens{})
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		store: store,
	}
}

func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

func (c *Client) Tokens() Tokens { return c.store.Get() }

func isAuthEndpoint(path string) bool {
	return strings.HasSuffix(path, pathLogin) ||
		strings.HasSuffix(path, pathRegister) ||
		strings.HasSuffix(path, pathRefresh)
}

// Do sends req, retrying it at most once after a refresh. When the refresh fails the
// stored tokens are cleared and the original 401 response is returned.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := rewindable(req); err != nil {
		return nil, err
	}

	authEndpoint := isAuthEndpoint(req.URL.Path)
	used := ""
	if !authEndpoint {
		used = c.store.Get().AccessToken
		setBearer(req, used)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || authEndpoint {
		return resp, err
	}

	token, rerr := c.sharedRefresh(req.Context(), used)
	if rerr != nil {
		return resp, nil
	}
	drain(resp)

	retry, err := clone(req)
	if err != nil {
		return nil, err
	}
	setBearer(retry, token)
	return c.httpClient.Do(retry)
}

// sharedRefresh returns a fresh access token. If another caller already replaced the
// token this request used, that token is returned without a new round trip.
func (c *Client) sharedRefresh(ctx context.Context, used string) (string, error) {
	if cur := c.store.Get().AccessToken; cur != "" && cur != used {
		return cur, nil
	}
	v, err, _ := c.refreshes.Do("refresh", func() (any, error) {
		if cur := c.store.Get().AccessToken; cur != "" && cur != used {
			return cur, nil
		}
		// one caller's cancellation must not fail every waiter
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		res, err := c.Refresh(rctx)
		if err != nil {
			return "", err
		}
		return res.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

type RefreshResponse struct {
	Status       string `json:"status"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	AccessExp    int64  `json:"accessExp"`
	RefreshExp   int64  `json:"refreshExp"`
}

// Refresh exchanges the stored refresh token for a new pair. Any failure clears the
// stored tokens.
func (c *Client) Refresh(ctx context.Context) (*RefreshResponse, error) {
	refresh := c.store.Get().RefreshToken
	if refresh == "" {
		c.store.Clear()
		return nil, ErrNoRefreshToken
	}

	var out RefreshResponse
	if err := c.doJSON(ctx, http.MethodPost, pathRefresh, map[string]string{"refreshToken": refresh}, &out); err != nil {
		c.store.Clear()
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if out.AccessToken == "" {
		c.store.Clear()
		return nil, errors.New("refresh: empty access token")
	}
	c.store.Set(Tokens{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken})
	return &out, nil
}

// RefreshTokens stores refreshToken and exchanges it for a new pair.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	c.store.Set(Tokens{RefreshToken: refreshToken})
	return c.Refresh(ctx)
}

type User struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Enabled  bool   `json:"enabled"`
}

type AuthResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	AccessExp    int64  `json:"accessExp"`
	RefreshExp   int64  `json:"refreshExp"`
	User         User   `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.authenticate(ctx, pathLogin, map[string]string{"email": email, "password": password})
}

func (c *Client) Register(ctx context.Context, email, password, fullName string) (*AuthResponse, error) {
	return c.authenticate(ctx, pathRegister, map[string]string{"email": email, "password": password, "fullName": fullName})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	c.store.Set(Tokens{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken})
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.doJSON(ctx, http.MethodGet, pathMe, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout revokes the refresh token server side and always forgets local tokens.
func (c *Client) Logout(ctx context.Context) error {
	refresh := c.store.Get().RefreshToken
	err := c.doJSON(ctx, http.MethodPost, pathLogout, map[string]string{"refreshToken": refresh}, nil)
	c.store.Clear()
	return err
}

// JSON sends in as a JSON body (when non-nil) and decodes the response into out.
func (c *Client) JSON(ctx context.Context, method, path string, in, out any) error {
	return c.doJSON(ctx, method, path, in, out)
}

type APIError struct {
	StatusCode int
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		if resp.StatusCode == http.StatusUnauthorized && !isAuthEndpoint(path) {
			return fmt.Errorf("%w: %w", ErrSessionExpired, apiErr)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func setBearer(req *http.Request, token string) {
	if token == "" {
		req.Header.Del("Authorization")
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// rewindable makes sure the body can be replayed for the retry.
func rewindable(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	b, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return fmt.Errorf("buffer request body: %w", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(b))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}
	return nil
}

func clone(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		b, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		retry.Body = b
	}
	return retry, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
