package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/finlens/finlens/types"
)

func (p *Provider) discoverFunctions(ctx context.Context, c *regionClients, region string) ([]types.Resource, error) {
	var resources []types.Resource

	paginator := lambda.NewListFunctionsPaginator(c.lambda, &lambda.ListFunctionsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list functions: %w", err)
		}
		for _, fn := range page.Functions {
			name := aws.ToString(fn.FunctionName)
			raw := map[string]any{
				"function_name": name,
				"memory_mb":     int(aws.ToInt32(fn.MemorySize)),
				"timeout_sec":   int(aws.ToInt32(fn.Timeout)),
				"has_dlq":       fn.DeadLetterConfig != nil && fn.DeadLetterConfig.TargetArn != nil,
				"tracing_enabled": fn.TracingConfig != nil &&
					fn.TracingConfig.Mode == lambdatypes.TracingModeActive,
			}

			if modified := aws.ToString(fn.LastModified); modified != "" {
				if ts, err := time.Parse("2006-01-02T15:04:05.000-0700", modified); err == nil {
					raw["last_modified_days"] = int(time.Since(ts).Hours() / 24)
				}
			}

			if invocations, ok := sumMetric(ctx, c.cw, "AWS/Lambda", "Invocations", "FunctionName", name); ok {
				// Extrapolate the 7-day sum to a 30-day figure.
				raw["invocations_30d"] = invocations / 7 * 30
			}
			if duration, ok := averageMetric(ctx, c.cw, "AWS/Lambda", "Duration", "FunctionName", name); ok {
				raw["avg_duration_ms"] = duration
			}

			resources = append(resources, types.Resource{
				ID:     name,
				Type:   types.TypeLambda,
				Region: region,
				Name:   name,
				Tags:   p.functionTags(ctx, c, aws.ToString(fn.FunctionArn)),
				Raw:    raw,
			})
		}
	}
	return resources, nil
}

func (p *Provider) functionTags(ctx context.Context, c *regionClients, arn string) map[string]string {
	out, err := c.lambda.ListTags(ctx, &lambda.ListTagsInput{Resource: aws.String(arn)})
	if err != nil {
		return nil
	}
	return out.Tags
}
