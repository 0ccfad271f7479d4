package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const metricsLookback = 7 * 24 * time.Hour

// averageMetric fetches the 7-day average of one CloudWatch metric for
// one dimension. Returns ok=false when no datapoints exist, so callers
// can distinguish "no data" from a true zero.
func averageMetric(ctx context.Context, cw *cloudwatch.Client, namespace, metricName, dimensionName, dimensionValue string) (float64, bool) {
	end := time.Now()
	start := end.Add(-metricsLookback)

	out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(namespace),
		MetricName: aws.String(metricName),
		Dimensions: []cwtypes.Dimension{{
			Name:  aws.String(dimensionName),
			Value: aws.String(dimensionValue),
		}},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(86400),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
	})
	if err != nil || len(out.Datapoints) == 0 {
		return 0, false
	}

	var sum float64
	for _, dp := range out.Datapoints {
		if dp.Average != nil {
			sum += *dp.Average
		}
	}
	return sum / float64(len(out.Datapoints)), true
}

// sumMetric fetches the 7-day sum of one CloudWatch metric.
func sumMetric(ctx context.Context, cw *cloudwatch.Client, namespace, metricName, dimensionName, dimensionValue string) (float64, bool) {
	end := time.Now()
	start := end.Add(-metricsLookback)

	out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(namespace),
		MetricName: aws.String(metricName),
		Dimensions: []cwtypes.Dimension{{
			Name:  aws.String(dimensionName),
			Value: aws.String(dimensionValue),
		}},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(86400),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticSum},
	})
	if err != nil || len(out.Datapoints) == 0 {
		return 0, false
	}

	var sum float64
	for _, dp := range out.Datapoints {
		if dp.Sum != nil {
			sum += *dp.Sum
		}
	}
	return sum, true
}
