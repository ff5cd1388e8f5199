// Package yahoo provides a client for the Yahoo Finance quote API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nmisra/folio/internal/cache"
	"github.com/nmisra/folio/internal/common"
	"github.com/nmisra/folio/internal/interfaces"
	"github.com/nmisra/folio/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// QuoteError represents a provider-level quote failure: network error,
// unknown symbol, or malformed payload. It carries the symbol so the
// assembler can surface a provider-qualified warning. Failures are never
// cached.
type QuoteError struct {
	Symbol string
	Cause  error
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("yahoo quote failed for %s: %v", e.Symbol, e.Cause)
}

func (e *QuoteError) Unwrap() error {
	return e.Cause
}

// Client implements the QuoteClient interface against the Yahoo quote API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	cache      *cache.QuoteCache
	now        func() time.Time
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

// NewClient creates a new Yahoo quote client. quoteCache may be nil, in which
// case every call goes to the provider.
func NewClient(quoteCache *cache.QuoteCache, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		cache:   quoteCache,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// quoteResponse mirrors the quote API envelope. Result entries are kept raw
// because the payload is only partially shaped — fields are validated one by
// one rather than trusted.
type quoteResponse struct {
	QuoteResponse struct {
		Result []json.RawMessage `json:"result"`
		Error  interface{}       `json:"error"`
	} `json:"quoteResponse"`
}

// quoteResult holds the fields we read, each tolerant of wrong types.
type quoteResult struct {
	RegularMarketPrice maybeFloat  `json:"regularMarketPrice"`
	RegularMarketTime  maybeTime   `json:"regularMarketTime"`
	Currency           maybeString `json:"currency"`
}

// maybeFloat decodes a JSON number, leaving nil for absent or wrong-typed
// values. "Field present but not numeric" and "field absent" both mean no
// price — not a fetch failure.
type maybeFloat struct {
	value *float64
}

func (m *maybeFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		m.value = &num
	}
	return nil
}

// maybeString decodes a JSON string, leaving "" for anything else.
type maybeString struct {
	value string
}

func (m *maybeString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m.value = s
	}
	return nil
}

// maybeTime normalizes provider timestamps, which arrive either as
// seconds-since-epoch or as a clock-time string, to a single absolute UTC
// representation.
type maybeTime struct {
	value *time.Time
}

func (m *maybeTime) UnmarshalJSON(data []byte) error {
	var epoch int64
	if err := json.Unmarshal(data, &epoch); err == nil {
		t := time.Unix(epoch, 0).UTC()
		m.value = &t
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if t, perr := time.Parse(layout, s); perr == nil {
				t = t.UTC()
				m.value = &t
				return nil
			}
		}
	}
	return nil
}

// GetQuote retrieves the latest traded price, timestamp and currency for one
// symbol, consulting the quote cache first. Successful results — including
// explicit "no price" results — are cached under the TTL.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	key := cache.QuoteKey(symbol)
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			if quote, ok := cached.(models.Quote); ok {
				c.logger.Debug().Str("symbol", symbol).Msg("Yahoo quote cache hit")
				return &quote, nil
			}
		}
	}

	quote, err := c.fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(key, *quote)
	}
	return quote, nil
}

func (c *Client) fetch(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &QuoteError{Symbol: symbol, Cause: fmt.Errorf("rate limit wait: %w", err)}
	}

	params := url.Values{}
	params.Set("symbols", symbol)
	reqURL := fmt.Sprintf("%s/v7/finance/quote?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &QuoteError{Symbol: symbol, Cause: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", common.BrowserUserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("symbol", symbol).Msg("Yahoo quote API request")

	start := c.now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Dur("elapsed", elapsed).Msg("Yahoo quote request failed")
		return nil, &QuoteError{Symbol: symbol, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Str("symbol", symbol).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Yahoo quote non-OK response")
		return nil, &QuoteError{Symbol: symbol, Cause: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var envelope quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &QuoteError{Symbol: symbol, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}

	if len(envelope.QuoteResponse.Result) == 0 {
		return nil, &QuoteError{Symbol: symbol, Cause: fmt.Errorf("symbol not found or invalid response")}
	}

	var result quoteResult
	if err := json.Unmarshal(envelope.QuoteResponse.Result[0], &result); err != nil {
		return nil, &QuoteError{Symbol: symbol, Cause: fmt.Errorf("failed to decode quote result: %w", err)}
	}

	quote := &models.Quote{
		Symbol:      symbol,
		Price:       result.RegularMarketPrice.value,
		LastUpdated: result.RegularMarketTime.value,
		Currency:    strings.ToUpper(result.Currency.value),
	}

	event := c.logger.Info().Str("symbol", symbol).Int("status", resp.StatusCode).Dur("elapsed", elapsed)
	if quote.Price != nil {
		event = event.Float64("price", *quote.Price)
	} else {
		event = event.Bool("price_missing", true)
	}
	event.Msg("Yahoo quote API call")

	return quote, nil
}

// Ensure Client implements QuoteClient
var _ interfaces.QuoteClient = (*Client)(nil)
