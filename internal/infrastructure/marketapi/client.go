// Package marketapi is the HTTP client for the marketplace REST backend. It
// attaches the session's bearer token to every call and translates transport
// and HTTP failures into domain errors.
package marketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmconnect/marketplace-gateway/internal/api/metrics"
	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultAnalyticsTimeout = 60 * time.Second
	maxErrorBody            = 64 << 10
)

// Config captures the settings for reaching the market API.
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	AnalyticsTimeout time.Duration
	// MaxRetryWait bounds the Retry-After hint honoured for the single retry
	// after a 429. Zero disables the retry.
	MaxRetryWait time.Duration
}

// Client implements ports.MarketAPI over HTTP.
type Client struct {
	baseURL          string
	http             *http.Client
	timeout          time.Duration
	analyticsTimeout time.Duration
	maxRetryWait     time.Duration
	log              zerolog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

var _ ports.MarketAPI = (*Client)(nil)

// New builds a Client. Default timeouts are applied when none are provided.
func New(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	analytics := cfg.AnalyticsTimeout
	if analytics <= 0 {
		analytics = defaultAnalyticsTimeout
	}

	return &Client{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		http:             &http.Client{},
		timeout:          timeout,
		analyticsTimeout: analytics,
		maxRetryWait:     cfg.MaxRetryWait,
		log:              log,
		sleep:            sleepCtx,
	}
}

// call describes one market API request. endpoint is the route template
// used as metric label.
type call struct {
	method   string
	path     string
	endpoint string
	token    string
	body     any
	timeout  time.Duration
}

// do executes c and decodes a 2xx body into out (when non-nil). A 429 with a
// Retry-After hint no longer than maxRetryWait is retried once.
func (cl *Client) do(ctx context.Context, c call, out any) error {
	var payload []byte
	if c.body != nil {
		b, err := json.Marshal(c.body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", c.endpoint, err)
		}
		payload = b
	}

	timeout := c.timeout
	if timeout <= 0 {
		timeout = cl.timeout
	}

	for attempt := 0; ; attempt++ {
		start := time.Now()
		body, err := cl.roundTrip(ctx, c, payload, timeout)
		metrics.UpstreamRequestDuration.
			WithLabelValues(c.endpoint, resultLabel(err)).
			Observe(time.Since(start).Seconds())

		if err == nil {
			if out == nil || len(bytes.TrimSpace(body)) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return domain.NewError(domain.KindServer, "invalid response from market api", err)
			}
			return nil
		}

		wait := domain.RetryAfterOf(err)
		if attempt > 0 || domain.KindOf(err) != domain.KindRateLimited || wait <= 0 || wait > cl.maxRetryWait {
			return err
		}

		metrics.UpstreamRetriesTotal.WithLabelValues(c.endpoint).Inc()
		cl.log.Debug().Str("endpoint", c.endpoint).Dur("retry_after", wait).Msg("market api rate limited, retrying once")
		if serr := cl.sleep(ctx, wait); serr != nil {
			return err
		}
	}
}

func (cl *Client) roundTrip(ctx context.Context, c call, payload []byte, timeout time.Duration) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, c.method, cl.baseURL+c.path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", c.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := cl.http.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, translateStatus(resp.StatusCode, resp.Header, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}
	return body, nil
}

// transportError classifies failures where no HTTP response was received.
func transportError(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return domain.NewError(domain.KindTimeout,
			"Request timeout - the server is taking too long to respond. Please try again.", err)
	}
	return domain.NewError(domain.KindNetwork,
		"Network error - please check your internet connection and try again", err)
}

// errorBody is the error payload the market API sends.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// translateStatus maps a non-2xx response to the domain taxonomy.
func translateStatus(status int, h http.Header, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	upstream := eb.text()

	e := &domain.Error{Status: status}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind, e.Message = domain.KindUnauthorized, "Session expired - please login again"
	case status == http.StatusForbidden:
		e.Kind, e.Message = domain.KindForbidden, "Access denied - you do not have permission to perform this action"
	case status == http.StatusNotFound:
		e.Kind, e.Message = domain.KindNotFound, "Resource not found - please check your request"
	case status == http.StatusTooManyRequests:
		e.Kind = domain.KindRateLimited
		e.RetryAfter = parseRetryAfter(h.Get("Retry-After"), time.Now())
		if e.RetryAfter > 0 {
			e.Message = fmt.Sprintf("Rate limit exceeded. Please try again after %d seconds", int(e.RetryAfter.Round(time.Second)/time.Second))
		} else {
			e.Message = "Rate limit exceeded. Please try again later"
		}
	case status == http.StatusServiceUnavailable:
		e.Kind = domain.KindServer
		if strings.Contains(upstream, "model is overloaded") {
			e.Message = "AI service is currently busy. Please try again in a few minutes."
		} else {
			e.Message = "AI services are currently unavailable. Please try again later."
		}
	case status >= 500:
		e.Kind = domain.KindServer
		if strings.Contains(upstream, "Gemini AI") {
			e.Message = "AI service is experiencing issues. Please try again later."
		} else {
			e.Message = "Server error - please try again later"
		}
	default:
		e.Kind = domain.KindValidation
		e.Message = upstream
		if e.Message == "" {
			e.Message = fmt.Sprintf("request rejected by market api (%d)", status)
		}
	}
	return e
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return string(domain.KindOf(err))
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
