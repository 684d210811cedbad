// Package fetcher retrieves raw page HTML either directly over HTTP or
// through the Zyte rendering API, falling back from the latter to the
// former.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/pevans/technews/config"
	"github.com/pevans/technews/logger"
	"github.com/pevans/technews/metrics"
)

// Mode selects the retrieval path for a single Fetch call.
type Mode int

const (
	// ModeDefault uses the process-wide remote toggle.
	ModeDefault Mode = iota
	// ModeDirect forces a direct HTTP request.
	ModeDirect
	// ModeRemote prefers the remote rendering API.
	ModeRemote
)

// Options configures a Fetcher.
type Options struct {
	UserAgents     []string
	UseRemote      bool
	RemoteAPIKey   string
	RemoteEndpoint string
	DirectTimeout  time.Duration
	RemoteTimeout  time.Duration
	MinDelay       time.Duration
	MaxDelay       time.Duration
}

// OptionsFromConfig derives fetcher options from the runtime configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		UserAgents:     cfg.Scraping.UserAgents,
		UseRemote:      cfg.Zyte.Enabled,
		RemoteAPIKey:   cfg.Zyte.APIKey,
		RemoteEndpoint: cfg.Zyte.Endpoint,
		DirectTimeout:  cfg.Scraping.DirectTimeout,
		RemoteTimeout:  cfg.Scraping.RemoteTimeout,
		MinDelay:       cfg.Scraping.MinDelay,
		MaxDelay:       cfg.Scraping.MaxDelay,
	}
}

// Fetcher retrieves page content. It is not safe for concurrent use with
// WithUserAgents, which is expected to be called while wiring sources.
type Fetcher struct {
	opts    Options
	direct  *http.Client
	remote  *http.Client
	log     logger.Logger
	metrics *metrics.Metrics

	// sleep pauses after each successful direct request.
	sleep func(ctx context.Context, d time.Duration)
}

// New creates a fetcher. Zero timeouts default to 30s (direct) and 60s
// (remote); an empty user-agent pool uses config.DefaultUserAgents.
func New(opts Options, log logger.Logger, m *metrics.Metrics) *Fetcher {
	if opts.DirectTimeout <= 0 {
		opts.DirectTimeout = 30 * time.Second
	}
	if opts.RemoteTimeout <= 0 {
		opts.RemoteTimeout = 60 * time.Second
	}
	if len(opts.UserAgents) == 0 {
		opts.UserAgents = config.DefaultUserAgents
	}

	return &Fetcher{
		opts:    opts,
		direct:  &http.Client{Timeout: opts.DirectTimeout},
		remote:  &http.Client{Timeout: opts.RemoteTimeout},
		log:     log,
		metrics: m,
		sleep:   sleepContext,
	}
}

// WithUserAgents returns a copy of the fetcher that draws user agents from
// agents instead. An empty pool returns f unchanged.
func (f *Fetcher) WithUserAgents(agents []string) *Fetcher {
	if len(agents) == 0 {
		return f
	}
	c := *f
	c.opts.UserAgents = agents
	return &c
}

// Fetch returns the HTML at url. When the remote API is selected and
// configured it is tried first; any remote failure falls back to a direct
// request. An error is returned only when every path failed.
func (f *Fetcher) Fetch(ctx context.Context, url string, mode Mode) (string, error) {
	useRemote := f.opts.UseRemote
	switch mode {
	case ModeDirect:
		useRemote = false
	case ModeRemote:
		useRemote = true
	}

	if useRemote && f.opts.RemoteAPIKey != "" {
		html, err := f.FetchRemote(ctx, url)
		if err == nil {
			f.metrics.Fetch(metrics.PathRemote, metrics.OutcomeSuccess)
			f.log.Info("fetched via remote API", logger.String("url", url))
			return html, nil
		}

		f.metrics.Fetch(metrics.PathRemote, metrics.OutcomeFallback)
		switch {
		case errors.Is(err, ErrUnauthorized):
			f.log.Warn("remote API authentication failed, falling back to direct request",
				logger.String("url", url))
		case errors.Is(err, ErrNoContent):
			f.log.Warn("remote API returned no content, falling back to direct request",
				logger.String("url", url))
		default:
			f.log.Error("remote API error, falling back to direct request",
				logger.String("url", url), logger.Error(err))
		}
	}

	html, err := f.FetchDirect(ctx, url)
	if err != nil {
		f.metrics.Fetch(metrics.PathDirect, metrics.OutcomeFailure)
		f.log.Error("failed to fetch page", logger.String("url", url), logger.Error(err))
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	f.metrics.Fetch(metrics.PathDirect, metrics.OutcomeSuccess)
	f.log.Info("fetched directly", logger.String("url", url))
	return html, nil
}

// FetchDirect issues a GET with a random user agent and browser-like
// headers. Any non-2xx status is an error. A successful request is followed
// by a random delay between MinDelay and MaxDelay.
func (f *Fetcher) FetchDirect(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.randomUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.direct.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	f.sleep(ctx, f.politeDelay())

	return string(body), nil
}

func (f *Fetcher) randomUserAgent() string {
	return f.opts.UserAgents[rand.IntN(len(f.opts.UserAgents))]
}

// politeDelay picks a uniformly random delay in [MinDelay, MaxDelay].
func (f *Fetcher) politeDelay() time.Duration {
	spread := f.opts.MaxDelay - f.opts.MinDelay
	if spread <= 0 {
		return max(f.opts.MinDelay, 0)
	}
	return f.opts.MinDelay + rand.N(spread+1)
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
