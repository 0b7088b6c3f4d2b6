package musicbrainz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tagsync/internal/shared"
)

// 1. Constants and types

const (
	defaultBaseURL      = "https://musicbrainz.org/ws/2"
	defaultCoverURL     = "https://coverartarchive.org"
	defaultTimeout      = 15 * time.Second
	defaultRateInterval = 1100 * time.Millisecond // just over the 1 req/s the service asks for
	defaultPollInterval = 100 * time.Millisecond
	defaultWaitCeiling  = 20 * time.Second
	defaultMaxRetries   = 3

	// searchLimit caps how many recordings one search pulls back.
	searchLimit = 25

	// maxRedirectHops bounds manual Location following on cover downloads.
	maxRedirectHops = 5

	// retrySleepTicks * PollInterval is the pause between search attempts.
	retrySleepTicks = 10
)

// errCancelled marks a wait that ended because the caller's cancellation
// predicate flipped. It never escapes the package: cancelled operations
// return empty results, not errors.
var errCancelled = errors.New("operation cancelled")

// Config holds the remote client's tunables. Poll interval and wait ceiling
// are configurable so tests can shrink them.
type Config struct {
	BaseURL      string        `json:"base_url"`
	CoverURL     string        `json:"cover_url"`
	Contact      string        `json:"contact"`
	Timeout      time.Duration `json:"timeout"`
	RateInterval time.Duration `json:"rate_interval"`
	PollInterval time.Duration `json:"poll_interval"`
	WaitCeiling  time.Duration `json:"wait_ceiling"`
	MaxRetries   int           `json:"max_retries"`
	Debug        bool          `json:"debug"`
}

// Client talks to a MusicBrainz-compatible catalog and its cover archive.
// One limiter serializes all outgoing requests for the instance.
type Client struct {
	httpClient  *http.Client
	config      Config
	rateLimiter *rate.Limiter
}

// 2. Constructor and configuration

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:      defaultBaseURL,
		CoverURL:     defaultCoverURL,
		Timeout:      defaultTimeout,
		RateInterval: defaultRateInterval,
		PollInterval: defaultPollInterval,
		WaitCeiling:  defaultWaitCeiling,
		MaxRetries:   defaultMaxRetries,
		Debug:        false,
	}
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with custom configuration. Redirects
// are not auto-followed; the cover path walks Location headers itself so
// the hop count stays bounded.
func NewClientWithConfig(config Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		config:      config,
		rateLimiter: rate.NewLimiter(rate.Every(config.RateInterval), 1),
	}
}

// SetDebug enables or disables debug logging for the client.
func (c *Client) SetDebug(debug bool) {
	c.config.Debug = debug
}

// GetConfig returns the current client configuration.
func (c *Client) GetConfig() Config {
	return c.config
}

func (c *Client) userAgent() string {
	if c.config.Contact == "" {
		return shared.ClientTag
	}
	return fmt.Sprintf("%s ( %s )", shared.ClientTag, c.config.Contact)
}

func (c *Client) apiURL(path string) string {
	return strings.TrimSuffix(c.config.BaseURL, "/") + "/" + path
}

// 3. Bounded execution

// await runs fn in its own goroutine and waits for it to finish, polling
// the cancellation predicate every PollInterval and giving up after
// WaitCeiling. On cancellation or timeout the worker's context is cancelled
// and the worker is reaped before returning, so no goroutine outlives the
// call. Cancellation yields errCancelled, the deadline ErrWaitTimeout.
func (c *Client) await(ctx context.Context, cancelled func() bool, fn func(ctx context.Context) error) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(runCtx) }()

	poll := time.NewTicker(c.config.PollInterval)
	defer poll.Stop()
	deadline := time.NewTimer(c.config.WaitCeiling)
	defer deadline.Stop()

	for {
		select {
		case err := <-done:
			return err
		case <-poll.C:
			if cancelled != nil && cancelled() {
				cancel()
				<-done
				return errCancelled
			}
		case <-deadline.C:
			cancel()
			<-done
			return shared.ErrWaitTimeout
		case <-ctx.Done():
			cancel()
			<-done
			return errCancelled
		}
	}
}

// sleepCancellable pauses between retry attempts in short slices, checking
// the cancellation predicate each tick. It reports false when the pause was
// cut short by cancellation.
func (c *Client) sleepCancellable(ctx context.Context, cancelled func() bool) bool {
	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()
	for i := 0; i < retrySleepTicks; i++ {
		select {
		case <-ticker.C:
			if cancelled != nil && cancelled() {
				return false
			}
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// 4. Core HTTP methods

// get makes one rate-limited GET and returns the body. Network timeouts
// and non-200 statuses become HTTPError values so callers can classify
// them with IsRetryableHTTPError.
func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "application/json")

	shared.DebugPrint(c.config.Debug, "GET %s", fullURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, &shared.HTTPError{
				StatusCode: http.StatusRequestTimeout,
				Status:     "Request Timeout",
				Message:    err.Error(),
			}
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := string(body)
		if len(message) > 200 {
			message = message[:200] + "..."
		}
		return nil, &shared.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    message,
		}
	}
	return body, nil
}
