// Package costs fetches account spend for the best-effort cost stage of
// a scan. The stage never fails a scan: callers treat fetch errors as a
// degraded stage and continue with an empty record set.
package costs

import (
	"context"

	"github.com/finlens/finlens/types"
)

// Fetcher returns month-to-date spend grouped by service and region.
// Implementations filter to the requested regions; global spend (no
// region dimension) is always included.
type Fetcher interface {
	Fetch(ctx context.Context, regions []string) ([]types.CostRecord, error)
}

// Total sums the amounts of a record set.
func Total(records []types.CostRecord) float64 {
	var total float64
	for _, r := range records {
		total += r.Amount
	}
	return total
}
