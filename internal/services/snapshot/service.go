// Package snapshot assembles point-in-time portfolio snapshots from the
// static holdings set and live market data.
package snapshot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nmisra/folio/internal/common"
	"github.com/nmisra/folio/internal/interfaces"
	"github.com/nmisra/folio/internal/models"
)

// ErrNoHoldings is returned when assembly is attempted with an empty
// holdings set. An empty portfolio never produces an empty-but-"successful"
// snapshot.
var ErrNoHoldings = errors.New("no holdings to assemble")

// DefaultMaxConcurrent bounds the per-holding fan-out so the provider
// endpoints are not hammered when the holdings file grows.
const DefaultMaxConcurrent = 8

// Service implements SnapshotService.
type Service struct {
	quotes        interfaces.QuoteClient
	fundamentals  interfaces.FundamentalsClient
	logger        *common.Logger
	maxConcurrent int
	now           func() time.Time // injectable clock for testing
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithMaxConcurrent bounds the number of holdings refreshed in parallel
func WithMaxConcurrent(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// NewService creates a new snapshot service.
func NewService(quotes interfaces.QuoteClient, fundamentals interfaces.FundamentalsClient, logger *common.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		quotes:        quotes,
		fundamentals:  fundamentals,
		logger:        logger,
		maxConcurrent: DefaultMaxConcurrent,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// holdingResult carries one holding's refreshed record and any non-fatal
// fetch warnings, keyed by input position so output order is deterministic.
type holdingResult struct {
	holding  models.Holding
	warnings []string
}

// BuildSnapshot refreshes every holding concurrently and returns one
// immutable snapshot. Each holding's price and fundamentals fetches run
// concurrently with each other; a failure of either is recorded as a warning
// and never prevents the other fetch, any sibling holding, or the snapshot
// itself.
func (s *Service) BuildSnapshot(ctx context.Context, holdings []models.Holding) (*models.Snapshot, error) {
	if len(holdings) == 0 {
		return nil, ErrNoHoldings
	}

	start := s.now()
	s.logger.Info().Int("holdings", len(holdings)).Msg("Building portfolio snapshot")

	results := make([]holdingResult, len(holdings))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.maxConcurrent)

	for i, h := range holdings {
		wg.Add(1)
		go func(i int, h models.Holding) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = s.refreshHolding(ctx, h)
		}(i, h)
	}
	wg.Wait()

	stocks := make([]models.Holding, len(holdings))
	warnings := []string{}
	var totalInvestment, totalPresentValue float64

	for i, res := range results {
		stocks[i] = res.holding
		warnings = append(warnings, res.warnings...)

		presentValue := res.holding.Investment
		if res.holding.PresentValue != nil {
			presentValue = *res.holding.PresentValue
		}
		totalInvestment += res.holding.Investment
		totalPresentValue += presentValue
	}

	snap := &models.Snapshot{
		BuildID: uuid.NewString(),
		Stocks:  stocks,
		Sectors: AggregateSectors(stocks, totalInvestment),
		Totals: models.Totals{
			Investment:   common.Round2(totalInvestment),
			PresentValue: common.Round2(totalPresentValue),
			GainLoss:     common.Round2(totalPresentValue - totalInvestment),
		},
		Warnings:    warnings,
		LastUpdated: s.now(),
	}

	s.logger.Info().
		Str("build_id", snap.BuildID).
		Int("holdings", len(snap.Stocks)).
		Int("sectors", len(snap.Sectors)).
		Int("warnings", len(snap.Warnings)).
		Float64("total_value", snap.Totals.PresentValue).
		Dur("elapsed", s.now().Sub(start)).
		Msg("Portfolio snapshot complete")

	return snap, nil
}

// refreshHolding fetches live data for one holding and merges it into a copy
// of the record. Fetch failures are contained here — each becomes exactly
// one warning string naming the provider and symbol.
func (s *Service) refreshHolding(ctx context.Context, h models.Holding) holdingResult {
	var (
		quote        *models.Quote
		quoteErr     error
		fundamentals *models.Fundamentals
		fundErr      error
		wg           sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		quote, quoteErr = s.quotes.GetQuote(ctx, h.YahooSymbol)
	}()
	go func() {
		defer wg.Done()
		fundamentals, fundErr = s.fundamentals.GetFundamentals(ctx, h.GoogleSymbol, h.GoogleExchange)
	}()
	wg.Wait()

	res := holdingResult{holding: h}

	if quoteErr != nil {
		s.logger.Warn().Err(quoteErr).Str("symbol", h.YahooSymbol).Msg("Quote fetch failed — using fallback price")
		res.warnings = append(res.warnings, quoteErr.Error())
	}
	if fundErr != nil {
		s.logger.Warn().Err(fundErr).Str("symbol", h.GoogleSymbol).Msg("Fundamentals fetch failed — keeping stale metrics")
		res.warnings = append(res.warnings, fundErr.Error())
	}

	var fetchedPrice *float64
	if quote != nil {
		fetchedPrice = quote.Price
	}

	resolved := ResolvePrice(h, fetchedPrice)
	res.holding.CMP = resolved.Value
	res.holding.PresentValue, res.holding.GainLoss = DeriveMetrics(h, resolved)

	if fundamentals != nil && fundamentals.PERatio != nil {
		res.holding.PERatio = fundamentals.PERatio
	}
	if fundamentals != nil && fundamentals.LatestEarnings != nil {
		res.holding.LatestEarnings = fundamentals.LatestEarnings
	}
	if quote != nil && quote.LastUpdated != nil {
		res.holding.LastUpdated = quote.LastUpdated
	}

	return res
}

// Ensure Service implements SnapshotService
var _ interfaces.SnapshotService = (*Service)(nil)
