// Package httpclient provides the paced HTTP client owned by each provider
// client. It enforces a minimum inter-request interval and a rolling
// per-minute cap, independent of the crawl-level rate limiter stacked on
// top of it.
package httpclient

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/cesargomez89/discograph/internal/constants"
	"github.com/cesargomez89/discograph/internal/domain"
	"github.com/cesargomez89/discograph/internal/ratelimit"
)

// Client wraps an http.Client with provider-local pacing and transient
// status classification.
type Client struct {
	httpClient *http.Client
	pacer      *rate.Limiter
	perMinute  *ratelimit.Limiter
}

// New creates a paced client. minInterval <= 0 disables interval pacing;
// perMinute <= 0 disables the rolling per-minute cap. A nil httpClient
// gets sane connection pool defaults and the standard per-request timeout.
func New(httpClient *http.Client, minInterval time.Duration, perMinute int) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}

	c := &Client{httpClient: httpClient}
	if minInterval > 0 {
		c.pacer = rate.NewLimiter(rate.Every(minInterval), 1)
	}
	if perMinute > 0 {
		c.perMinute = ratelimit.New(perMinute, time.Minute)
	}
	return c
}

// Do executes the request after both pacing layers clear. Responses with
// status 429 or 5xx are closed and reported as a TransientError so the
// retry layer can back off; transport errors pass through unchanged.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if c.perMinute != nil {
		if err := c.perMinute.Acquire(ctx); err != nil {
			return nil, err
		}
	}
	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		_ = resp.Body.Close()
		c.applyRetryAfter(resp)
		return nil, &domain.TransientError{Op: req.Method + " " + req.URL.Host, Status: resp.StatusCode}
	}

	return resp, nil
}

// applyRetryAfter burns the pacer's token at the end of a server-requested
// cooldown so the next attempt does not arrive early.
func (c *Client) applyRetryAfter(resp *http.Response) {
	if c.pacer == nil {
		return
	}
	if wait := parseRetryAfter(resp); wait > 0 {
		c.pacer.ReserveN(time.Now().Add(wait), 1)
	}
}

// Close releases idle connections; the client must not be used afterwards.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func parseRetryAfter(resp *http.Response) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(ra); err == nil {
		return time.Until(t)
	}
	return 0
}
