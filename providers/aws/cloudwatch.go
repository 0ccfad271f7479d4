package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"github.com/finlens/finlens/types"
)

func (p *Provider) discoverLogGroupsAndAlarms(ctx context.Context, c *regionClients, region string) ([]types.Resource, error) {
	resources, err := p.discoverLogGroups(ctx, c, region)
	if err != nil {
		return nil, err
	}
	alarms, err := p.discoverAlarms(ctx, c, region)
	if err != nil {
		return nil, err
	}
	return append(resources, alarms...), nil
}

func (p *Provider) discoverLogGroups(ctx context.Context, c *regionClients, region string) ([]types.Resource, error) {
	var resources []types.Resource

	paginator := cloudwatchlogs.NewDescribeLogGroupsPaginator(c.cwlogs, &cloudwatchlogs.DescribeLogGroupsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe log groups: %w", err)
		}
		for _, group := range page.LogGroups {
			name := aws.ToString(group.LogGroupName)
			raw := map[string]any{
				"log_group_name": name,
				"has_retention":  group.RetentionInDays != nil,
			}
			if group.StoredBytes != nil {
				raw["size_mb"] = float64(*group.StoredBytes) / (1024 * 1024)
			}

			resources = append(resources, types.Resource{
				ID:     name,
				Type:   types.TypeCloudWatch,
				Region: region,
				Name:   name,
				Raw:    raw,
			})
		}
	}
	return resources, nil
}

func (p *Provider) discoverAlarms(ctx context.Context, c *regionClients, region string) ([]types.Resource, error) {
	var resources []types.Resource

	paginator := cloudwatch.NewDescribeAlarmsPaginator(c.cw, &cloudwatch.DescribeAlarmsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe alarms: %w", err)
		}
		for _, alarm := range page.MetricAlarms {
			name := aws.ToString(alarm.AlarmName)
			raw := map[string]any{
				"alarm_name":  name,
				"state":       string(alarm.StateValue),
				"has_actions": len(alarm.AlarmActions) > 0,
			}
			if alarm.StateUpdatedTimestamp != nil {
				raw["last_state_change_days"] = int(time.Since(*alarm.StateUpdatedTimestamp).Hours() / 24)
			}

			resources = append(resources, types.Resource{
				ID:     name,
				Type:   types.TypeCloudWatch,
				Region: region,
				Name:   name,
				State:  string(alarm.StateValue),
				Raw:    raw,
			})
		}
	}
	return resources, nil
}
