package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/finlens/finlens/types"
)

func (p *Provider) discoverDatabases(ctx context.Context, c *regionClients, region string) ([]types.Resource, error) {
	var resources []types.Resource

	paginator := rds.NewDescribeDBInstancesPaginator(c.rds, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe db instances: %w", err)
		}
		for _, db := range page.DBInstances {
			id := aws.ToString(db.DBInstanceIdentifier)
			raw := map[string]any{
				"instance_class":              aws.ToString(db.DBInstanceClass),
				"storage_encrypted":           aws.ToBool(db.StorageEncrypted),
				"publicly_accessible":         aws.ToBool(db.PubliclyAccessible),
				"storage_autoscaling_enabled": db.MaxAllocatedStorage != nil,
			}

			state := aws.ToString(db.DBInstanceStatus)
			if state == "available" {
				if conns, ok := averageMetric(ctx, c.cw, "AWS/RDS", "DatabaseConnections", "DBInstanceIdentifier", id); ok {
					raw["avg_connections"] = conns
				}
				if cpu, ok := averageMetric(ctx, c.cw, "AWS/RDS", "CPUUtilization", "DBInstanceIdentifier", id); ok {
					raw["avg_cpu_percent"] = cpu
				}
			}

			tags := make(map[string]string, len(db.TagList))
			for _, t := range db.TagList {
				tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
			}

			resources = append(resources, types.Resource{
				ID:     id,
				Type:   types.TypeRDS,
				Region: region,
				Name:   id,
				State:  state,
				Tags:   tags,
				Raw:    raw,
			})
		}
	}
	return resources, nil
}
