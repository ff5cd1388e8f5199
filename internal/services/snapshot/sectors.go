package snapshot

import (
	"strings"

	"github.com/nmisra/folio/internal/common"
	"github.com/nmisra/folio/internal/models"
)

// AggregateSectors groups holdings by sector label and sums investment,
// present value, gain/loss and allocation. Sectors are emitted in first-seen
// order over the input sequence, not alphabetically.
//
// A holding with no present value contributes its own investment instead, so
// an unpriced holding does not distort its sector as a total loss.
// totalInvestment is the portfolio-wide cost basis used for allocation; a
// zero total yields zero allocations rather than a division fault.
func AggregateSectors(holdings []models.Holding, totalInvestment float64) []models.SectorSummary {
	type sectorTotals struct {
		investment   float64
		presentValue float64
	}

	order := make([]string, 0)
	totals := make(map[string]*sectorTotals)

	for _, h := range holdings {
		sector := strings.TrimSpace(h.Sector)

		st, ok := totals[sector]
		if !ok {
			st = &sectorTotals{}
			totals[sector] = st
			order = append(order, sector)
		}

		presentValue := h.Investment
		if h.PresentValue != nil {
			presentValue = *h.PresentValue
		}

		st.investment += h.Investment
		st.presentValue += presentValue
	}

	summaries := make([]models.SectorSummary, 0, len(order))
	for _, sector := range order {
		st := totals[sector]

		investment := common.Round2(st.investment)
		presentValue := common.Round2(st.presentValue)

		allocation := 0.0
		if totalInvestment != 0 {
			allocation = common.Round2(st.investment / totalInvestment * 100)
		}

		summaries = append(summaries, models.SectorSummary{
			Sector:       sector,
			Investment:   investment,
			PresentValue: presentValue,
			// Derived from the already-rounded sector totals so the row is
			// internally consistent, avoiding sum-then-round drift.
			GainLoss:   common.Round2(presentValue - investment),
			Allocation: allocation,
		})
	}

	return summaries
}
