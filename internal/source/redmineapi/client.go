// Package redmineapi implements the report source over Redmine's REST API.
package redmineapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to one Redmine server.
type Client struct {
	cfg      Config
	http     *http.Client
	log      zerolog.Logger
	observer Observer
}

// NewClient creates a Client. A nil observer discards call events.
func NewClient(cfg Config, log zerolog.Logger, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}, //nolint:gosec // opt-in for self-signed servers
			},
		},
		log:      log,
		observer: observer,
	}
}

func (c *Client) apiURL(path string, q url.Values) string {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// statusError is a non-2xx answer.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("redmine returned status %d: %s", e.status, e.body)
}

func (e *statusError) retryable() bool {
	return e.status == http.StatusTooManyRequests || e.status >= 500
}

// getJSON fetches path and decodes the body into out, retrying transport
// errors, 429 and 5xx answers with exponential backoff.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	if c.cfg.BaseURL == "" {
		return errors.New("redmine: empty base url")
	}
	start := time.Now()
	u := c.apiURL(path, q)

	var (
		lastErr  error
		status   int
		attempts = 1 + c.cfg.MaxRetries
		tried    int
	)
	for i := 0; i < attempts; i++ {
		tried++
		var wait time.Duration
		status, wait, lastErr = c.do(ctx, u, out)
		if lastErr == nil {
			c.observer.OnCallComplete(CallEvent{
				Path:      path,
				Status:    status,
				Attempts:  tried,
				LatencyMs: time.Since(start).Milliseconds(),
				Success:   true,
			})
			return nil
		}

		var se *statusError
		if errors.As(lastErr, &se) && !se.retryable() {
			break
		}
		if ctx.Err() != nil || i == attempts-1 {
			break
		}

		if wait == 0 {
			wait = c.cfg.Backoff * time.Duration(1<<i)
		}
		c.log.Debug().Err(lastErr).Str("path", path).Dur("wait", wait).Msg("retrying redmine call")
		if err := sleepCtx(ctx, wait); err != nil {
			lastErr = err
			break
		}
	}

	c.observer.OnCallComplete(CallEvent{
		Path:      path,
		Status:    status,
		Attempts:  tried,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   false,
		ErrorCode: errorCode(lastErr),
	})
	return classify(ctx, lastErr, tried)
}

// do performs one attempt. It returns the status, a server-requested
// retry delay, and any error.
func (c *Client) do(ctx context.Context, u string, out any) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Redmine-API-Key", c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, retryAfter(resp.Header.Get("Retry-After")),
			&statusError{status: resp.StatusCode, body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, 0, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, 0, nil
}

func classify(ctx context.Context, err error, attempts int) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		// Drop the context error from the chain so callers do not mistake
		// the client timeout for their own deadline.
		err = fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var se *statusError
	if errors.As(err, &se) {
		switch se.status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
	}
	if attempts > 1 {
		return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, attempts, err)
	}
	return err
}

func errorCode(err error) string {
	var se *statusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "TIMEOUT"
	case errors.Is(err, context.Canceled):
		return "CANCELED"
	case errors.As(err, &se):
		return "HTTP_" + strconv.Itoa(se.status)
	default:
		return "TRANSPORT"
	}
}

// retryAfter parses a Retry-After header given in seconds, capped at one
// minute.
func retryAfter(v string) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0
	}
	d := time.Duration(n) * time.Second
	if d > time.Minute {
		d = time.Minute
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// fetchAll walks every page of a list endpoint and returns the items stored
// under key. Endpoints that are not paginated omit total_count and end the
// walk after the first response.
func fetchAll[T any](ctx context.Context, c *Client, path string, q url.Values, key string) ([]T, error) {
	if q == nil {
		q = url.Values{}
	}
	limit := c.cfg.pageSize()
	var out []T
	for offset := 0; ; {
		q.Set("offset", strconv.Itoa(offset))
		q.Set("limit", strconv.Itoa(limit))

		var raw map[string]json.RawMessage
		if err := c.getJSON(ctx, path, q, &raw); err != nil {
			return nil, err
		}
		var items []T
		if body, ok := raw[key]; ok {
			if err := json.Unmarshal(body, &items); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", key, err)
			}
		}
		out = append(out, items...)

		body, paged := raw["total_count"]
		if !paged || len(items) == 0 {
			return out, nil
		}
		var total int
		if err := json.Unmarshal(body, &total); err != nil {
			return nil, fmt.Errorf("decoding total_count: %w", err)
		}
		offset += len(items)
		if offset >= total {
			return out, nil
		}
	}
}
