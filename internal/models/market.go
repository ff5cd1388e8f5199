package models

import "time"

// Quote holds a live price result from the quote provider.
//
// A nil Price means the provider answered but had no usable price for the
// symbol — distinct from a fetch failure, which never produces a Quote.
type Quote struct {
	Symbol      string     `json:"symbol"`
	Price       *float64   `json:"price"`
	LastUpdated *time.Time `json:"lastUpdated"`
	Currency    string     `json:"currency,omitempty"`
}

// Fundamentals holds valuation metrics extracted from the fundamentals
// provider. Either field may be nil when the source page lacked the metric
// or its value was unparsable.
type Fundamentals struct {
	Symbol         string   `json:"symbol"`
	ExchangeTag    string   `json:"exchangeTag"`
	PERatio        *float64 `json:"peRatio"`
	LatestEarnings *float64 `json:"latestEarnings"`
}

// PriceSource tags how a holding's snapshot price was resolved.
type PriceSource string

const (
	PriceSourceLive     PriceSource = "live"     // freshly fetched this build
	PriceSourceFallback PriceSource = "fallback" // previously known value reused
	PriceSourceUnknown  PriceSource = "unknown"  // no price available at all
)

// ResolvedPrice is the outcome of the fetched → stale → unknown resolution
// chain. Value is nil exactly when Source is PriceSourceUnknown.
type ResolvedPrice struct {
	Value  *float64
	Source PriceSource
}
