// Package providers contains one client per upstream data source. Each
// client fetches and normalizes a single provider's response shape, and each
// is independently failable: "no data" degrades to an empty result while
// "unreachable or refusing service" surfaces as an error.
package providers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/celestiatrack/skyfeed/internal/logging"
)

// DefaultTimeout is the per-request timeout applied when none is configured.
// Upstream calls are sequential and blocking, so one slow provider must not
// hold an aggregation indefinitely.
const DefaultTimeout = 12 * time.Second

// StatusError is returned for non-2xx upstream responses that are not
// absorbed by the adapter contract.
type StatusError struct {
	Provider string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Provider, e.Code)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// IsForbidden reports whether err is an upstream 401 or 403.
func IsForbidden(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == http.StatusForbidden || se.Code == http.StatusUnauthorized
}

// httpBase holds the pieces every provider client shares.
type httpBase struct {
	client  *http.Client
	baseURL string
	log     *logging.Logger
}

// Option configures a provider client.
type Option func(*httpBase)

// WithBaseURL overrides the provider endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(b *httpBase) { b.baseURL = u }
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(b *httpBase) { b.client = newHTTPClient(d) }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(b *httpBase) { b.client = c }
}

// WithLogger sets the logger used for degraded-response warnings.
func WithLogger(l *logging.Logger) Option {
	return func(b *httpBase) { b.log = l }
}

func newBase(defaultURL string, opts ...Option) httpBase {
	b := httpBase{
		baseURL: defaultURL,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.client == nil {
		b.client = newHTTPClient(DefaultTimeout)
	}
	return b
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// getJSON performs a GET request and decodes the body into dst. Non-2xx
// responses come back as *StatusError; callers apply their own absorb or
// surface policy per status code.
func (b *httpBase) getJSON(ctx context.Context, provider, url string, header http.Header, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "skyfeed/"+versionString)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{Provider: provider, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", provider, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("parse %s response: %w", provider, err)
	}
	return nil
}

// versionString mirrors internal/version.Version without importing it, to
// keep this package dependency-light for tests.
const versionString = "1.0.0"

// dateOnly formats a time as an ISO calendar date.
func dateOnly(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// defaultWindow fills in the provider-wide default query range when the
// caller passes zero times: roughly one year back to three years ahead.
// Larger spans trip 403-class rejections on several upstreams.
func defaultWindow(from, to time.Time) (time.Time, time.Time) {
	now := time.Now().UTC()
	if from.IsZero() {
		from = now.AddDate(-1, 0, 0)
	}
	if to.IsZero() {
		to = now.AddDate(3, 0, 0)
	}
	return from, to
}

// basicAuthHeader builds a Basic authorization header.
func basicAuthHeader(user, pass string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(user+":"+pass)))
	return h
}

// pickString returns the first non-empty string value among the given keys.
func pickString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
