package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"

	"github.com/finlens/finlens/types"
)

func (p *Provider) discoverCloudFront(ctx context.Context) ([]types.Resource, error) {
	var resources []types.Resource

	paginator := cloudfront.NewListDistributionsPaginator(p.cfClient, &cloudfront.ListDistributionsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list distributions: %w", err)
		}
		if page.DistributionList == nil {
			continue
		}
		for _, dist := range page.DistributionList.Items {
			id := aws.ToString(dist.Id)
			domain := aws.ToString(dist.DomainName)

			raw := map[string]any{
				"domain_name": domain,
				"has_waf":     aws.ToString(dist.WebACLId) != "",
			}

			if dist.DefaultCacheBehavior != nil {
				raw["https_only"] = dist.DefaultCacheBehavior.ViewerProtocolPolicy != cftypes.ViewerProtocolPolicyAllowAll
			}
			if dist.Restrictions != nil && dist.Restrictions.GeoRestriction != nil {
				raw["has_geo_restriction"] = dist.Restrictions.GeoRestriction.RestrictionType != cftypes.GeoRestrictionTypeNone
			}

			// Logging config is only visible through the full config.
			if cfg, err := p.cfClient.GetDistributionConfig(ctx, &cloudfront.GetDistributionConfigInput{
				Id: dist.Id,
			}); err == nil && cfg.DistributionConfig != nil && cfg.DistributionConfig.Logging != nil {
				raw["logging_enabled"] = aws.ToBool(cfg.DistributionConfig.Logging.Enabled)
			}

			resources = append(resources, types.Resource{
				ID:     id,
				Type:   types.TypeCloudFront,
				Region: types.GlobalRegion,
				Name:   domain,
				State:  aws.ToString(dist.Status),
				Raw:    raw,
			})
		}
	}
	return resources, nil
}
