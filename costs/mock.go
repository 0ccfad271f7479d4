package costs

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/finlens/finlens/types"
)

// costBand is the plausible monthly spend range for one service line.
type costBand struct {
	service   string
	low, high float64
}

var mockServices = []costBand{
	{"Amazon EC2", 500, 3000},
	{"Amazon RDS", 200, 1500},
	{"Amazon S3", 50, 500},
	{"Amazon EBS", 100, 800},
	{"AWS Lambda", 10, 200},
	{"Amazon CloudFront", 50, 300},
	{"Amazon Route 53", 5, 50},
	{"AWS Data Transfer", 100, 600},
}

// MockFetcher produces deterministic spend figures for the configured
// seed, so repeated scans in mock mode yield stable cost stages.
type MockFetcher struct {
	seed int64
	now  func() time.Time
}

func NewMockFetcher(seed int64) *MockFetcher {
	return &MockFetcher{seed: seed, now: time.Now}
}

func (f *MockFetcher) Fetch(_ context.Context, regions []string) ([]types.CostRecord, error) {
	start, end := monthToDate(f.now().UTC())

	records := make([]types.CostRecord, 0, len(regions)*len(mockServices))
	for _, region := range regions {
		rng := f.rng(region)
		for _, band := range mockServices {
			amount := band.low + rng.Float64()*(band.high-band.low)
			records = append(records, types.CostRecord{
				Service:     band.service,
				Region:      region,
				Amount:      math.Round(amount*100) / 100,
				Currency:    "USD",
				PeriodStart: start,
				PeriodEnd:   end,
			})
		}
	}
	return records, nil
}

func (f *MockFetcher) rng(region string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(region))
	return rand.New(rand.NewSource(int64(h.Sum64()) ^ f.seed))
}
