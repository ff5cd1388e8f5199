package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmisra/folio/internal/common"
	"github.com/nmisra/folio/internal/models"
)

func TestAggregateSectors_FirstSeenOrder(t *testing.T) {
	holdings := []models.Holding{
		{Sector: "IT", Investment: 1000},
		{Sector: "Banking", Investment: 2000},
		{Sector: "IT", Investment: 500},
		{Sector: "Pharma", Investment: 300},
	}

	summaries := AggregateSectors(holdings, 3800)

	require.Len(t, summaries, 3)
	assert.Equal(t, "IT", summaries[0].Sector)
	assert.Equal(t, "Banking", summaries[1].Sector)
	assert.Equal(t, "Pharma", summaries[2].Sector)
	assert.Equal(t, 1500.0, summaries[0].Investment)
}

func TestAggregateSectors_InvestmentSubstitutedForUnknownValue(t *testing.T) {
	holdings := []models.Holding{
		{Sector: "IT", Investment: 1000, PresentValue: common.Float64Ptr(1200)},
		{Sector: "IT", Investment: 500}, // unpriced
	}

	summaries := AggregateSectors(holdings, 1500)

	require.Len(t, summaries, 1)
	assert.Equal(t, 1700.0, summaries[0].PresentValue, "unpriced holding contributes its investment, not zero")
	assert.Equal(t, 200.0, summaries[0].GainLoss)
}

func TestAggregateSectors_AllocationPercentages(t *testing.T) {
	holdings := []models.Holding{
		{Sector: "IT", Investment: 1000},
		{Sector: "Banking", Investment: 2000},
	}

	summaries := AggregateSectors(holdings, 3000)

	require.Len(t, summaries, 2)
	assert.Equal(t, 33.33, summaries[0].Allocation)
	assert.Equal(t, 66.67, summaries[1].Allocation)
}

func TestAggregateSectors_ZeroTotalInvestment(t *testing.T) {
	holdings := []models.Holding{
		{Sector: "IT", Investment: 0},
	}

	summaries := AggregateSectors(holdings, 0)

	require.Len(t, summaries, 1)
	assert.Equal(t, 0.0, summaries[0].Allocation)
}

func TestAggregateSectors_PartitionsEveryHolding(t *testing.T) {
	holdings := []models.Holding{
		{Sector: "IT", Investment: 1000.25},
		{Sector: "Banking", Investment: 2000.50},
		{Sector: " IT ", Investment: 499.75}, // label whitespace folds into IT
	}

	summaries := AggregateSectors(holdings, 3500.50)

	require.Len(t, summaries, 2)
	var sum float64
	for _, s := range summaries {
		sum += s.Investment
	}
	assert.Equal(t, 3500.50, sum, "sector investments must partition the portfolio total")
}

func TestAggregateSectors_Empty(t *testing.T) {
	summaries := AggregateSectors(nil, 0)
	assert.Empty(t, summaries)
	assert.NotNil(t, summaries)
}
