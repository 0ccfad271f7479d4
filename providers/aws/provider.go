// Package aws implements resource discovery against real AWS accounts
// using the v2 SDK. One client set is kept per region; IAM and
// CloudFront are global and share a single client.
package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/finlens/finlens/providers"
	"github.com/finlens/finlens/types"
)

func init() {
	providers.Register("aws", func(ctx context.Context, cfg providers.Config) (providers.Provider, error) {
		return New(ctx, cfg.Region)
	})
}

// regionClients holds the per-region service clients.
type regionClients struct {
	ec2    *ec2.Client
	elb    *elasticloadbalancingv2.Client
	rds    *rds.Client
	s3     *s3.Client
	lambda *lambda.Client
	cw     *cloudwatch.Client
	cwlogs *cloudwatchlogs.Client
}

// Provider discovers resources through the AWS SDK.
type Provider struct {
	base aws.Config

	mu      sync.Mutex
	regions map[string]*regionClients

	iamClient *iam.Client
	cfClient  *cloudfront.Client
}

// New creates an AWS provider using the default credential chain.
func New(ctx context.Context, defaultRegion string) (*Provider, error) {
	base, err := config.LoadDefaultConfig(ctx, config.WithRegion(defaultRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Provider{
		base:      base,
		regions:   make(map[string]*regionClients),
		iamClient: iam.NewFromConfig(base),
		cfClient:  cloudfront.NewFromConfig(base),
	}, nil
}

func (p *Provider) Name() string { return "aws" }

func (p *Provider) Supports(t types.ResourceType) bool {
	_, err := types.ParseResourceType(string(t))
	return err == nil
}

func (p *Provider) clients(region string) *regionClients {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.regions[region]; ok {
		return c
	}

	cfg := p.base.Copy()
	cfg.Region = region
	c := &regionClients{
		ec2:    ec2.NewFromConfig(cfg),
		elb:    elasticloadbalancingv2.NewFromConfig(cfg),
		rds:    rds.NewFromConfig(cfg),
		s3:     s3.NewFromConfig(cfg),
		lambda: lambda.NewFromConfig(cfg),
		cw:     cloudwatch.NewFromConfig(cfg),
		cwlogs: cloudwatchlogs.NewFromConfig(cfg),
	}
	p.regions[region] = c
	return c
}

func (p *Provider) Discover(ctx context.Context, region string, t types.ResourceType) ([]types.Resource, error) {
	switch t {
	case types.TypeIAM:
		return p.discoverIAM(ctx)
	case types.TypeCloudFront:
		return p.discoverCloudFront(ctx)
	}

	c := p.clients(region)
	switch t {
	case types.TypeEC2:
		return p.discoverInstances(ctx, c, region)
	case types.TypeEBS:
		return p.discoverVolumes(ctx, c, region)
	case types.TypeS3:
		return p.discoverBuckets(ctx, c, region)
	case types.TypeRDS:
		return p.discoverDatabases(ctx, c, region)
	case types.TypeEIP:
		return p.discoverAddresses(ctx, c, region)
	case types.TypeSnapshot:
		return p.discoverSnapshots(ctx, c, region)
	case types.TypeLB:
		return p.discoverLoadBalancers(ctx, c, region)
	case types.TypeNAT:
		return p.discoverNATGateways(ctx, c, region)
	case types.TypeLambda:
		return p.discoverFunctions(ctx, c, region)
	case types.TypeCloudWatch:
		return p.discoverLogGroupsAndAlarms(ctx, c, region)
	}
	return nil, fmt.Errorf("aws provider does not support %s", t)
}
