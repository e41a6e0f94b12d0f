package proxy

import (
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
)

type Upstream struct {
	Name    string
	Target  *url.URL
	handler *httputil.ReverseProxy
}

// New builds a reverse proxy to target that removes stripPrefix from the request
// path. timeout bounds the wait for upstream response headers.
func New(name, target, stripPrefix string, timeout time.Duration) (*Upstream, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("upstream " + name + ": url needs scheme and host")
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:          200,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	p := httputil.NewSingleHostReverseProxy(u)
	p.Transport = transport

	origDirector := p.Director
	p.Director = func(req *http.Request) {
		originalHost := req.Host
		originalProto := "http"
		if req.TLS != nil {
			originalProto = "https"
		} else if xf := req.Header.Get("X-Forwarded-Proto"); xf != "" {
			originalProto = xf
		}

		if stripPrefix != "" {
			req.URL.Path = trimPrefix(req.URL.Path, stripPrefix)
			if req.URL.RawPath != "" {
				req.URL.RawPath = trimPrefix(req.URL.RawPath, stripPrefix)
			}
		}
		origDirector(req)

		if req.Header.Get("X-Forwarded-Proto") == "" {
			req.Header.Set("X-Forwarded-Proto", originalProto)
		}
		if req.Header.Get("X-Forwarded-Host") == "" && originalHost != "" {
			req.Header.Set("X-Forwarded-Host", originalHost)
		}
	}

	// The gateway owns CORS and the request id; drop the upstream copies so browsers
	// never see the headers twice.
	p.ModifyResponse = func(res *http.Response) error {
		for k := range res.Header {
			if strings.HasPrefix(k, "Access-Control-") || k == http.CanonicalHeaderKey(echo.HeaderXRequestID) {
				res.Header.Del(k)
			}
		}
		return nil
	}

	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logging.FromContext(r.Context()).Error("proxy_error", "upstream", name, "status", 502, "error", err)
		w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"status":"error","message":"upstream unavailable"}`))
	}

	p.FlushInterval = 100 * time.Millisecond

	return &Upstream{Name: name, Target: u, handler: p}, nil
}

// Handler forwards the request, passing the gateway's request id upstream.
func (u *Upstream) Handler(c echo.Context) error {
	if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
		c.Request().Header.Set(echo.HeaderXRequestID, rid)
	}
	u.handler.ServeHTTP(c.Response(), c.Request())
	return nil
}

func trimPrefix(path, prefix string) string {
	out := strings.TrimPrefix(path, prefix)
	if out == "" {
		return "/"
	}
	return out
}
