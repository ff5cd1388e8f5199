package snapshot

import (
	"github.com/nmisra/folio/internal/common"
	"github.com/nmisra/folio/internal/models"
)

// ResolvePrice applies the fetched → stale → unknown resolution chain for a
// holding's market price. The tagged result lets callers distinguish fresh
// data from a reused fallback.
func ResolvePrice(holding models.Holding, fetched *float64) models.ResolvedPrice {
	if fetched != nil {
		return models.ResolvedPrice{Value: fetched, Source: models.PriceSourceLive}
	}
	if holding.CMP != nil {
		return models.ResolvedPrice{Value: holding.CMP, Source: models.PriceSourceFallback}
	}
	return models.ResolvedPrice{Value: nil, Source: models.PriceSourceUnknown}
}

// DeriveMetrics computes present value and gain/loss for a holding from a
// resolved price. With no resolved price both metrics are nil — "unknown" is
// represented distinctly from zero. Rounding is applied here, once; the
// values are never re-rounded downstream.
func DeriveMetrics(holding models.Holding, resolved models.ResolvedPrice) (presentValue, gainLoss *float64) {
	if resolved.Value == nil {
		return nil, nil
	}

	pv := common.Round2(*resolved.Value * holding.Quantity)
	gl := common.Round2(pv - holding.Investment)
	return &pv, &gl
}
