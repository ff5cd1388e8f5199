// Package holdings loads the static holdings definition and normalizes it
// into the canonical in-memory record set the snapshot assembler works from.
package holdings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/nmisra/folio/internal/common"
	"github.com/nmisra/folio/internal/interfaces"
	"github.com/nmisra/folio/internal/models"
)

// ErrInvalidHolding marks structurally malformed input: a holding record
// missing its display name, sector, or exchange code. This aborts the whole
// load — it is a startup-time fatal condition, not a per-snapshot one.
var ErrInvalidHolding = errors.New("invalid holding record")

var numericCode = regexp.MustCompile(`^\d+$`)

// flexNumber accepts JSON numbers, numeric strings with thousands
// separators ("1,234.50"), and null. Unparsable text decodes to nil rather
// than failing the load.
type flexNumber struct {
	value *float64
}

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.value = &num
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.value = common.ParseNumericText(s)
		return nil
	}
	f.value = nil
	return nil
}

// flexString accepts JSON strings and bare numbers; the exchange code column
// holds alphabetic NSE tickers and numeric BSE scrip codes interchangeably.
type flexString struct {
	value string
}

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.value = s
		return nil
	}
	f.value = strings.TrimSpace(string(data))
	return nil
}

// rawHolding mirrors one record of the holdings definition file.
type rawHolding struct {
	Particulars    string     `json:"Particulars"`
	PurchasePrice  flexNumber `json:"Purchase Price"`
	Qty            flexNumber `json:"Qty"`
	Investment     flexNumber `json:"Investment"`
	PortfolioPct   flexNumber `json:"Portfolio (%)"`
	Code           flexString `json:"NSE/BSE"`
	CMP            flexNumber `json:"CMP"`
	PresentValue   flexNumber `json:"Present value"`
	GainLoss       flexNumber `json:"Gain/Loss"`
	PERatio        flexNumber `json:"P/E (TTM)"`
	LatestEarnings flexNumber `json:"Latest Earnings"`
	Sector         string     `json:"Sector"`
}

// rawSector mirrors one record of the sector-summary seed list.
type rawSector struct {
	Sector       string     `json:"Sector"`
	Investment   flexNumber `json:"Investment"`
	PresentValue flexNumber `json:"Present value"`
	GainLoss     flexNumber `json:"Gain/Loss"`
}

type rawPortfolio struct {
	Stocks  []rawHolding `json:"stocks"`
	Sectors []rawSector  `json:"sectors"`
}

// symbolSet holds the provider identifiers derived from one exchange code.
// Both providers encode the exchange differently, so each symbol is derived
// independently from the same source code.
type symbolSet struct {
	code           string
	exchange       models.Exchange
	yahooSymbol    string
	googleSymbol   string
	googleExchange string
}

// normalizeCode classifies an exchange code and derives both providers'
// symbols. A purely numeric code is a BSE scrip number; anything else is an
// NSE ticker.
func normalizeCode(code string) symbolSet {
	sanitized := strings.ToUpper(strings.Join(strings.Fields(code), ""))

	exchange := models.ExchangeNSE
	if numericCode.MatchString(sanitized) {
		exchange = models.ExchangeBSE
	}

	return symbolSet{
		code:           sanitized,
		exchange:       exchange,
		yahooSymbol:    sanitized + exchange.YahooSuffix(),
		googleSymbol:   sanitized,
		googleExchange: exchange.GoogleExchangeTag(),
	}
}

func valueOrZero(f flexNumber) float64 {
	if f.value == nil {
		return 0
	}
	return *f.value
}

// normalize converts one raw record into a canonical Holding. Purchase price
// and quantity default to zero when absent so totals stay well-defined;
// investment is derived from them and is exact (no rounding at this stage).
func normalize(raw rawHolding) (models.Holding, error) {
	name := strings.TrimSpace(raw.Particulars)
	sector := strings.TrimSpace(raw.Sector)
	code := strings.TrimSpace(raw.Code.value)

	if name == "" || sector == "" || code == "" {
		return models.Holding{}, fmt.Errorf("%w: name=%q sector=%q code=%q",
			ErrInvalidHolding, name, sector, code)
	}

	syms := normalizeCode(code)

	purchasePrice := valueOrZero(raw.PurchasePrice)
	quantity := valueOrZero(raw.Qty)

	return models.Holding{
		ID:              syms.code + "-" + string(syms.exchange),
		Name:            name,
		PurchasePrice:   purchasePrice,
		Quantity:        quantity,
		Investment:      purchasePrice * quantity,
		PortfolioWeight: valueOrZero(raw.PortfolioPct),
		ExchangeCode:    syms.code,
		Exchange:        syms.exchange,
		YahooSymbol:     syms.yahooSymbol,
		GoogleSymbol:    syms.googleSymbol,
		GoogleExchange:  syms.googleExchange,
		CMP:             raw.CMP.value,
		PresentValue:    raw.PresentValue.value,
		GainLoss:        raw.GainLoss.value,
		PERatio:         raw.PERatio.value,
		LatestEarnings:  raw.LatestEarnings.value,
		Sector:          sector,
		LastUpdated:     nil,
	}, nil
}

// Source is the normalized holdings set read once at process start.
type Source struct {
	holdings        []models.Holding
	sectorSeed      []models.SectorSummary
	totalInvestment float64
}

// Load reads and normalizes the holdings definition at path.
func Load(path string, logger *common.Logger) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings file %s: %w", path, err)
	}
	src, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings from %s: %w", path, err)
	}

	logger.Info().
		Str("path", path).
		Int("holdings", len(src.holdings)).
		Float64("total_investment", src.totalInvestment).
		Msg("Holdings loaded")

	return src, nil
}

// Parse normalizes a holdings definition document.
func Parse(data []byte) (*Source, error) {
	var raw rawPortfolio
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse holdings definition: %w", err)
	}

	src := &Source{
		holdings: make([]models.Holding, 0, len(raw.Stocks)),
	}

	for i, rh := range raw.Stocks {
		h, err := normalize(rh)
		if err != nil {
			return nil, fmt.Errorf("holding %d: %w", i, err)
		}
		src.holdings = append(src.holdings, h)
		src.totalInvestment += h.Investment
	}

	// The seed list is superseded by computed aggregates at snapshot time;
	// it is retained only as pre-fetch display data.
	for _, rs := range raw.Sectors {
		sector := strings.TrimSpace(rs.Sector)
		if sector == "" {
			continue
		}
		src.sectorSeed = append(src.sectorSeed, models.SectorSummary{
			Sector:       sector,
			Investment:   valueOrZero(rs.Investment),
			PresentValue: valueOrZero(rs.PresentValue),
			GainLoss:     valueOrZero(rs.GainLoss),
			Allocation:   0,
		})
	}

	return src, nil
}

// Holdings returns the normalized holdings in definition order.
func (s *Source) Holdings() []models.Holding {
	return s.holdings
}

// SectorSeed returns the static sector-summary seed list.
func (s *Source) SectorSeed() []models.SectorSummary {
	return s.sectorSeed
}

// TotalInvestment returns the summed cost basis across all holdings.
func (s *Source) TotalInvestment() float64 {
	return s.totalInvestment
}

// HoldingByID returns the holding with the given id, or false.
func (s *Source) HoldingByID(id string) (models.Holding, bool) {
	for _, h := range s.holdings {
		if h.ID == id {
			return h, true
		}
	}
	return models.Holding{}, false
}

// Ensure Source implements HoldingsSource
var _ interfaces.HoldingsSource = (*Source)(nil)
