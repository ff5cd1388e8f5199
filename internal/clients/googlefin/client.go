// Package googlefin provides a client for scraping fundamentals from the
// Google Finance quote page.
//
// The page is unstructured markup whose layout and label text may drift
// silently. Extraction failures therefore degrade to nil metrics; only
// transport-level failures are errors.
package googlefin

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/nmisra/folio/internal/cache"
	"github.com/nmisra/folio/internal/common"
	"github.com/nmisra/folio/internal/interfaces"
	"github.com/nmisra/folio/internal/models"
)

const (
	DefaultBaseURL   = "https://www.google.com/finance"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Selectors for the label/value sibling rows of the "About"/key-stats panel.
// These class names are generated and have drifted before — keep them in one
// place.
const (
	rowSelector   = ".gyFHrc"
	labelSelector = ".mfs7Fc"
	valueSelector = ".P6K39c"
)

var (
	peLabel  = regexp.MustCompile(`(?i)\bP/?E\b`)
	epsLabel = regexp.MustCompile(`(?i)\bEPS\b|Earnings per share`)
)

// FundamentalsError represents a transport-level fundamentals failure. It is
// never cached and surfaces as a snapshot warning rather than aborting the
// build.
type FundamentalsError struct {
	Symbol      string
	ExchangeTag string
	Cause       error
}

func (e *FundamentalsError) Error() string {
	return fmt.Sprintf("google finance fundamentals failed for %s:%s: %v", e.Symbol, e.ExchangeTag, e.Cause)
}

func (e *FundamentalsError) Unwrap() error {
	return e.Cause
}

// Client implements the FundamentalsClient interface.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	cache      *cache.QuoteCache
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header sent with page requests
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new Google Finance fundamentals client. quoteCache may
// be nil, in which case every call fetches the page.
func NewClient(quoteCache *cache.QuoteCache, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: common.BrowserUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		cache:   quoteCache,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetFundamentals retrieves P/E ratio and latest earnings-per-share for one
// symbol under a provider exchange tag, consulting the quote cache first.
// Successful results — including all-nil extraction — are cached under the
// TTL.
func (c *Client) GetFundamentals(ctx context.Context, symbol, exchangeTag string) (*models.Fundamentals, error) {
	key := cache.FundamentalsKey(symbol, exchangeTag)
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			if f, ok := cached.(models.Fundamentals); ok {
				c.logger.Debug().Str("symbol", symbol).Str("exchange", exchangeTag).Msg("Fundamentals cache hit")
				return &f, nil
			}
		}
	}

	fundamentals, err := c.fetch(ctx, symbol, exchangeTag)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(key, *fundamentals)
	}
	return fundamentals, nil
}

func (c *Client) fetch(ctx context.Context, symbol, exchangeTag string) (*models.Fundamentals, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FundamentalsError{Symbol: symbol, ExchangeTag: exchangeTag, Cause: fmt.Errorf("rate limit wait: %w", err)}
	}

	reqURL := fmt.Sprintf("%s/quote/%s:%s", c.baseURL, symbol, exchangeTag)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FundamentalsError{Symbol: symbol, ExchangeTag: exchangeTag, Cause: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	c.logger.Debug().Str("symbol", symbol).Str("exchange", exchangeTag).Msg("Google Finance page request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Str("exchange", exchangeTag).Dur("elapsed", elapsed).Msg("Google Finance request failed")
		return nil, &FundamentalsError{Symbol: symbol, ExchangeTag: exchangeTag, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().Str("symbol", symbol).Str("exchange", exchangeTag).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Google Finance non-2xx response")
		return nil, &FundamentalsError{Symbol: symbol, ExchangeTag: exchangeTag, Cause: fmt.Errorf("responded with %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FundamentalsError{Symbol: symbol, ExchangeTag: exchangeTag, Cause: fmt.Errorf("failed to parse document: %w", err)}
	}

	fundamentals := extract(doc)
	fundamentals.Symbol = symbol
	fundamentals.ExchangeTag = exchangeTag

	if fundamentals.PERatio == nil && fundamentals.LatestEarnings == nil {
		// Distinct from "metric not available": either the page genuinely
		// lacks both rows or the markup drifted under us. Flagged so drift
		// is observable without an error kind.
		c.logger.Warn().Str("symbol", symbol).Str("exchange", exchangeTag).Dur("elapsed", elapsed).Msg("Google Finance extraction yielded no metrics")
	} else {
		c.logger.Info().Str("symbol", symbol).Str("exchange", exchangeTag).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Google Finance page call")
	}

	return fundamentals, nil
}

// extract walks the repeated label/value sibling rows. Only the first match
// of each label wins when multiple are present.
func extract(doc *goquery.Document) *models.Fundamentals {
	fundamentals := &models.Fundamentals{}

	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		label := trimmedText(row.Find(labelSelector).First())
		value := trimmedText(row.Find(valueSelector).First())

		if fundamentals.PERatio == nil && peLabel.MatchString(label) {
			fundamentals.PERatio = common.ParseNumericText(value)
		}
		if fundamentals.LatestEarnings == nil && epsLabel.MatchString(label) {
			fundamentals.LatestEarnings = common.ParseNumericText(value)
		}
	})

	return fundamentals
}

func trimmedText(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}

// Ensure Client implements FundamentalsClient
var _ interfaces.FundamentalsClient = (*Client)(nil)
