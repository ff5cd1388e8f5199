// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/nmisra/folio/internal/models"
)

// QuoteClient provides access to the live-quote provider
type QuoteClient interface {
	// GetQuote retrieves the latest traded price, timestamp and currency
	// for one provider symbol (e.g. "INFY.NS"), consulting the shared
	// quote cache first. A provider-level failure returns an error and is
	// never cached; a well-formed response with no usable price returns a
	// Quote with a nil price.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// FundamentalsClient provides access to the fundamentals provider
type FundamentalsClient interface {
	// GetFundamentals retrieves P/E ratio and latest earnings-per-share for
	// one symbol under a provider exchange tag (e.g. "INFY", "NSE"),
	// consulting the shared quote cache first. Extraction failures degrade
	// to nil fields; only transport-level failures return an error.
	GetFundamentals(ctx context.Context, symbol, exchangeTag string) (*models.Fundamentals, error)
}
