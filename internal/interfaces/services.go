package interfaces

import (
	"context"

	"github.com/nmisra/folio/internal/models"
)

// HoldingsSource supplies the normalized holdings set the assembler works
// from. Implementations are read-once at process start; the returned slice
// must not be mutated by callers.
type HoldingsSource interface {
	// Holdings returns the normalized holdings in definition order.
	Holdings() []models.Holding

	// TotalInvestment returns the summed cost basis across all holdings.
	TotalInvestment() float64
}

// SnapshotService builds point-in-time portfolio snapshots
type SnapshotService interface {
	// BuildSnapshot refreshes live data for every holding and returns one
	// immutable snapshot. Per-fetch failures degrade to warnings; the only
	// error is an empty holdings set.
	BuildSnapshot(ctx context.Context, holdings []models.Holding) (*models.Snapshot, error)
}
