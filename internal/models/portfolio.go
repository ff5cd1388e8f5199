// Package models defines data structures for Folio
package models

import (
	"time"
)

// Exchange identifies which of the two supported markets a holding trades on
type Exchange string

const (
	ExchangeNSE Exchange = "NSE"
	ExchangeBSE Exchange = "BSE"
)

// GoogleExchangeTag returns the exchange tag the fundamentals provider uses.
// The two providers encode the same exchange differently: BSE is "BOM" on
// Google Finance but ".BO" as a Yahoo symbol suffix.
func (e Exchange) GoogleExchangeTag() string {
	if e == ExchangeBSE {
		return "BOM"
	}
	return "NSE"
}

// YahooSuffix returns the symbol suffix the live-quote provider uses.
func (e Exchange) YahooSuffix() string {
	if e == ExchangeBSE {
		return ".BO"
	}
	return ".NS"
}

// Holding represents one normalized portfolio position.
//
// PurchasePrice, Quantity and Investment are fixed at normalization time and
// never mutate; investment = purchasePrice × quantity is the canonical cost
// basis. CMP, PresentValue, GainLoss, PERatio, LatestEarnings and LastUpdated
// are refreshed on every snapshot build and are nil when unknown.
type Holding struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	PurchasePrice   float64    `json:"purchasePrice"`
	Quantity        float64    `json:"quantity"`
	Investment      float64    `json:"investment"`
	PortfolioWeight float64    `json:"portfolioWeight"`
	ExchangeCode    string     `json:"exchangeCode"`
	Exchange        Exchange   `json:"exchange"`
	YahooSymbol     string     `json:"yahooSymbol"`
	GoogleSymbol    string     `json:"googleSymbol"`
	GoogleExchange  string     `json:"googleExchange"`
	CMP             *float64   `json:"cmp"`
	PresentValue    *float64   `json:"presentValue"`
	GainLoss        *float64   `json:"gainLoss"`
	PERatio         *float64   `json:"peRatio"`
	LatestEarnings  *float64   `json:"latestEarnings"`
	Sector          string     `json:"sector"`
	LastUpdated     *time.Time `json:"lastUpdated"`
}

// SectorSummary aggregates holdings sharing a sector label. Derived entirely
// from holdings at aggregation time; never stored independently of a snapshot.
type SectorSummary struct {
	Sector       string  `json:"sector"`
	Investment   float64 `json:"investment"`
	PresentValue float64 `json:"presentValue"`
	GainLoss     float64 `json:"gainLoss"`
	Allocation   float64 `json:"allocation"` // share of total investment, percent
}

// Totals holds portfolio-wide sums.
type Totals struct {
	Investment   float64 `json:"investment"`
	PresentValue float64 `json:"presentValue"`
	GainLoss     float64 `json:"gainLoss"`
}

// Snapshot is one complete, immutable result of refreshing all holdings.
// Stocks preserve the order of the static definition; Sectors are emitted in
// first-seen order. Warnings describe non-fatal fetch failures encountered
// during this build — an empty list signals a fully successful refresh.
type Snapshot struct {
	BuildID     string          `json:"buildId"`
	Stocks      []Holding       `json:"stocks"`
	Sectors     []SectorSummary `json:"sectors"`
	Totals      Totals          `json:"totals"`
	Warnings    []string        `json:"warnings"`
	LastUpdated time.Time       `json:"lastUpdated"`
}
