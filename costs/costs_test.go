package costs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockFetcher_Deterministic(t *testing.T) {
	a := NewMockFetcher(42)
	b := NewMockFetcher(42)

	recordsA, err := a.Fetch(context.Background(), []string{"us-east-1", "eu-west-1"})
	require.NoError(t, err)
	recordsB, err := b.Fetch(context.Background(), []string{"us-east-1", "eu-west-1"})
	require.NoError(t, err)

	assert.Equal(t, recordsA, recordsB)
	assert.Len(t, recordsA, 2*len(mockServices))
}

func TestMockFetcher_SeedChangesAmounts(t *testing.T) {
	a, err := NewMockFetcher(1).Fetch(context.Background(), []string{"us-east-1"})
	require.NoError(t, err)
	b, err := NewMockFetcher(2).Fetch(context.Background(), []string{"us-east-1"})
	require.NoError(t, err)

	assert.NotEqual(t, Total(a), Total(b))
}

func TestMockFetcher_AmountsWithinBands(t *testing.T) {
	records, err := NewMockFetcher(7).Fetch(context.Background(), []string{"us-west-2"})
	require.NoError(t, err)

	bands := make(map[string]costBand, len(mockServices))
	for _, band := range mockServices {
		bands[band.service] = band
	}
	for _, r := range records {
		band, ok := bands[r.Service]
		require.True(t, ok, "unexpected service %s", r.Service)
		assert.GreaterOrEqual(t, r.Amount, band.low)
		assert.LessOrEqual(t, r.Amount, band.high)
		assert.Equal(t, "USD", r.Currency)
	}
}

func TestMonthToDate(t *testing.T) {
	start, end := monthToDate(time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-08-01", start)
	assert.Equal(t, "2026-08-15", end)

	// First of the month falls back to the previous month.
	start, end = monthToDate(time.Date(2026, 9, 1, 0, 30, 0, 0, time.UTC))
	assert.Equal(t, "2026-08-01", start)
	assert.Equal(t, "2026-09-01", end)
}

func TestTotal(t *testing.T) {
	records, err := NewMockFetcher(3).Fetch(context.Background(), []string{"us-east-1"})
	require.NoError(t, err)

	var want float64
	for _, r := range records {
		want += r.Amount
	}
	assert.InDelta(t, want, Total(records), 0.0001)
	assert.Zero(t, Total(nil))
}
