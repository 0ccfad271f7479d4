package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/finlens/finlens/types"
)

func (p *Provider) discoverBuckets(ctx context.Context, c *regionClients, region string) ([]types.Resource, error) {
	out, err := c.s3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	var resources []types.Resource
	for _, bucket := range out.Buckets {
		name := aws.ToString(bucket.Name)

		// Buckets are account-global but live in one region. Only
		// report them for the region they belong to so the task matrix
		// does not duplicate them.
		loc, err := c.s3.GetBucketLocation(ctx, &s3.GetBucketLocationInput{Bucket: bucket.Name})
		if err != nil {
			continue
		}
		bucketRegion := string(loc.LocationConstraint)
		if bucketRegion == "" {
			bucketRegion = "us-east-1"
		}
		if bucketRegion != region {
			continue
		}

		resources = append(resources, types.Resource{
			ID:     name,
			Type:   types.TypeS3,
			Region: region,
			Name:   name,
			Tags:   p.bucketTags(ctx, c, name),
			Raw:    p.bucketAttributes(ctx, c, name),
		})
	}
	return resources, nil
}

func (p *Provider) bucketAttributes(ctx context.Context, c *regionClients, name string) map[string]any {
	raw := map[string]any{}

	if pab, err := c.s3.GetPublicAccessBlock(ctx, &s3.GetPublicAccessBlockInput{Bucket: aws.String(name)}); err == nil && pab.PublicAccessBlockConfiguration != nil {
		cfg := pab.PublicAccessBlockConfiguration
		raw["public_access_blocked"] = aws.ToBool(cfg.BlockPublicAcls) &&
			aws.ToBool(cfg.BlockPublicPolicy) &&
			aws.ToBool(cfg.IgnorePublicAcls) &&
			aws.ToBool(cfg.RestrictPublicBuckets)
	} else {
		raw["public_access_blocked"] = false
	}

	versioning, err := c.s3.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: aws.String(name)})
	raw["versioning_enabled"] = err == nil && versioning.Status == s3types.BucketVersioningStatusEnabled

	// Missing encryption config returns an error from the API.
	_, err = c.s3.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{Bucket: aws.String(name)})
	raw["encryption_enabled"] = err == nil

	_, err = c.s3.GetBucketLifecycleConfiguration(ctx, &s3.GetBucketLifecycleConfigurationInput{Bucket: aws.String(name)})
	raw["has_lifecycle_policy"] = err == nil

	return raw
}

func (p *Provider) bucketTags(ctx context.Context, c *regionClients, name string) map[string]string {
	out, err := c.s3.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(name)})
	if err != nil {
		return nil
	}
	tags := make(map[string]string, len(out.TagSet))
	for _, t := range out.TagSet {
		tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return tags
}
