// Package reviewsapi is a typed HTTP client for the reviews service.
package reviewsapi

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/adapters/observability"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
)

const (
	service    = "reviews_api"
	maxRetries = 4
)

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("reviews api: invalid base URL %q", base)
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- errors ----

// ErrNotFound matches domain.ErrNotFound under errors.Is.
var ErrNotFound = fmt.Errorf("reviews api: %w", domain.ErrNotFound)

// FieldError mirrors one entry of the service's 400 body.
type FieldError struct {
	Field    string `json:"field"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

// ValidationError is returned for a 400 response.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "reviews api: invalid request: " + strings.Join(parts, "; ")
}

// StatusError carries any other non-success response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("reviews api: status %d: %s", e.Status, e.Body)
}

// ---- Public API ----

func (c *Client) CreateReview(ctx context.Context, in domain.ReviewInput) (domain.Review, error) {
	var out domain.Review
	return out, c.do(ctx, http.MethodPost, "/reviews", "/reviews", in, &out)
}

func (c *Client) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	var out domain.Review
	return out, c.do(ctx, http.MethodGet, "/reviews/"+strconv.FormatInt(id, 10), "/reviews/{id}", nil, &out)
}

func (c *Client) UpdateReview(ctx context.Context, id int64, p domain.ReviewPatch) (domain.Review, error) {
	var out domain.Review
	return out, c.do(ctx, http.MethodPut, "/reviews/"+strconv.FormatInt(id, 10), "/reviews/{id}", patchBody(p), &out)
}

func (c *Client) DeleteReview(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/reviews/"+strconv.FormatInt(id, 10), "/reviews/{id}", nil, nil)
}

func (c *Client) ListReviews(ctx context.Context, f domain.ReviewFilter) (domain.ReviewsPage, error) {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(f.PageSize))
	}
	if f.Rating != nil {
		q.Set("rating", strconv.Itoa(*f.Rating))
	}
	if f.Author != nil {
		q.Set("author", *f.Author)
	}
	if f.Search != nil {
		q.Set("search", *f.Search)
	}
	path := "/reviews"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out domain.ReviewsPage
	return out, c.do(ctx, http.MethodGet, path, "/reviews", nil, &out)
}

func (c *Client) Authors(ctx context.Context) ([]string, error) {
	var out struct {
		Authors []string `json:"authors"`
	}
	err := c.do(ctx, http.MethodGet, "/authors", "/authors", nil, &out)
	return out.Authors, err
}

// patchBody sends only present fields.
func patchBody(p domain.ReviewPatch) map[string]any {
	m := map[string]any{}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Content != nil {
		m["content"] = *p.Content
	}
	if p.Rating != nil {
		m["rating"] = *p.Rating
	}
	if p.Author != nil {
		m["author"] = *p.Author
	}
	return m
}

// ---- Internals ----

// do performs one call with client-side rate limiting, retries, and JSON decode into out.
// GET/PUT/DELETE retry on transport errors, 429 and transient 5xx. POST is not
// idempotent and only retries on 429, honoring Retry-After when provided.
func (c *Client) do(ctx context.Context, method, path, endpoint string, in, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		payload = b
	}
	idempotent := method != http.MethodPost
	label := method + " " + endpoint

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		// build a fresh request each attempt
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "reviews-client/1.0")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, label, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if idempotent && i < maxRetries-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(service, label, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated:
			defer resp.Body.Close()
			if out == nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				return nil
			}
			return json.NewDecoder(resp.Body).Decode(out)

		case http.StatusNoContent:
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusBadRequest:
			var verr ValidationError
			err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&verr)
			resp.Body.Close()
			if err != nil {
				return &StatusError{Status: resp.StatusCode}
			}
			return &verr

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			retryable := resp.StatusCode == http.StatusTooManyRequests || idempotent
			wait := retryAfter(resp)
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			lastErr = &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
			if !retryable {
				return lastErr
			}
			if wait == 0 {
				wait = backoff(i)
			}
			if i < maxRetries-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 100ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
