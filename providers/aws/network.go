package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/finlens/finlens/types"
)

func (p *Provider) discoverLoadBalancers(ctx context.Context, c *regionClients, region string) ([]types.Resource, error) {
	var resources []types.Resource

	paginator := elbv2.NewDescribeLoadBalancersPaginator(c.elb, &elbv2.DescribeLoadBalancersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe load balancers: %w", err)
		}
		for _, lb := range page.LoadBalancers {
			arn := aws.ToString(lb.LoadBalancerArn)
			name := aws.ToString(lb.LoadBalancerName)

			listeners, err := c.elb.DescribeListeners(ctx, &elbv2.DescribeListenersInput{
				LoadBalancerArn: aws.String(arn),
			})
			listenerCount := 0
			if err == nil {
				listenerCount = len(listeners.Listeners)
			}

			lbType := strings.ToUpper(string(lb.Type))
			raw := map[string]any{
				"lb_type":        lbType,
				"listener_count": listenerCount,
			}

			// Request metrics only exist for ALBs; NLBs track flows.
			if lb.Type == elbv2types.LoadBalancerTypeEnumApplication {
				if dim, ok := metricDimension(arn); ok {
					if requests, ok := sumMetric(ctx, c.cw, "AWS/ApplicationELB", "RequestCount", "LoadBalancer", dim); ok {
						raw["avg_request_count_per_day"] = requests / 7
					}
				}
			}

			state := ""
			if lb.State != nil {
				state = string(lb.State.Code)
			}
			resources = append(resources, types.Resource{
				ID:     name,
				Type:   types.TypeLB,
				Region: region,
				Name:   name,
				State:  state,
				Raw:    raw,
			})
		}
	}
	return resources, nil
}

// metricDimension extracts the CloudWatch dimension value from a load
// balancer ARN (the part after ":loadbalancer/").
func metricDimension(arn string) (string, bool) {
	const marker = ":loadbalancer/"
	idx := strings.Index(arn, marker)
	if idx < 0 {
		return "", false
	}
	return arn[idx+len(marker):], true
}
