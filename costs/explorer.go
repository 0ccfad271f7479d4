package costs

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/finlens/finlens/types"
)

// ExplorerFetcher reads month-to-date unblended cost from the AWS Cost
// Explorer API. Cost Explorer is a global service and is always queried
// through us-east-1 regardless of the scanned regions.
type ExplorerFetcher struct {
	client *costexplorer.Client
}

func NewExplorerFetcher(ctx context.Context) (*ExplorerFetcher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion("us-east-1"))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &ExplorerFetcher{client: costexplorer.NewFromConfig(cfg)}, nil
}

func (f *ExplorerFetcher) Fetch(ctx context.Context, regions []string) ([]types.CostRecord, error) {
	start, end := monthToDate(time.Now().UTC())

	out, err := f.client.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start),
			End:   aws.String(end),
		},
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
		GroupBy: []cetypes.GroupDefinition{
			{Type: cetypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
			{Type: cetypes.GroupDefinitionTypeDimension, Key: aws.String("REGION")},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get cost and usage: %w", err)
	}

	wanted := make(map[string]bool, len(regions))
	for _, r := range regions {
		wanted[r] = true
	}

	var records []types.CostRecord
	for _, result := range out.ResultsByTime {
		for _, group := range result.Groups {
			if len(group.Keys) < 2 {
				continue
			}
			service, region := group.Keys[0], group.Keys[1]
			if region != "" && len(wanted) > 0 && !wanted[region] {
				continue
			}
			metric, ok := group.Metrics["UnblendedCost"]
			if !ok {
				continue
			}
			amount, err := strconv.ParseFloat(aws.ToString(metric.Amount), 64)
			if err != nil {
				continue
			}
			if region == "" {
				region = types.GlobalRegion
			}
			records = append(records, types.CostRecord{
				Service:     service,
				Region:      region,
				Amount:      math.Round(amount*10000) / 10000,
				Currency:    aws.ToString(metric.Unit),
				PeriodStart: start,
				PeriodEnd:   end,
			})
		}
	}
	return records, nil
}

// monthToDate returns the first of the current month and today as
// Cost Explorer date strings. On the first of the month the window
// would be empty, so it slides back to cover the previous month.
func monthToDate(now time.Time) (string, string) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if start.Format("2006-01-02") == now.Format("2006-01-02") {
		prev := now.AddDate(0, 0, -1)
		start = time.Date(prev.Year(), prev.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return start.Format("2006-01-02"), now.Format("2006-01-02")
}
