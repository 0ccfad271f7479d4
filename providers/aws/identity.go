package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/finlens/finlens/types"
)

func (p *Provider) discoverIAM(ctx context.Context) ([]types.Resource, error) {
	resources := []types.Resource{p.rootAccount(ctx)}

	paginator := iam.NewListUsersPaginator(p.iamClient, &iam.ListUsersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		for _, user := range page.Users {
			resources = append(resources, p.describeUser(ctx, aws.ToString(user.UserName), user.PasswordLastUsed))
		}
	}
	return resources, nil
}

func (p *Provider) rootAccount(ctx context.Context) types.Resource {
	raw := map[string]any{"is_root": true}

	if summary, err := p.iamClient.GetAccountSummary(ctx, &iam.GetAccountSummaryInput{}); err == nil {
		raw["has_mfa"] = summary.SummaryMap["AccountMFAEnabled"] == 1
	}

	return types.Resource{
		ID:     "root",
		Type:   types.TypeIAM,
		Region: types.GlobalRegion,
		Name:   "root",
		Raw:    raw,
	}
}

func (p *Provider) describeUser(ctx context.Context, username string, passwordLastUsed *time.Time) types.Resource {
	raw := map[string]any{"username": username}

	if passwordLastUsed != nil {
		raw["last_activity_days"] = int(time.Since(*passwordLastUsed).Hours() / 24)
	}

	if keys, err := p.iamClient.ListAccessKeys(ctx, &iam.ListAccessKeysInput{
		UserName: aws.String(username),
	}); err == nil {
		var oldest int
		for _, key := range keys.AccessKeyMetadata {
			if key.CreateDate == nil {
				continue
			}
			age := int(time.Since(*key.CreateDate).Hours() / 24)
			if age > oldest {
				oldest = age
			}
		}
		if oldest > 0 {
			raw["key_age_days"] = oldest
		}
	}

	if mfa, err := p.iamClient.ListMFADevices(ctx, &iam.ListMFADevicesInput{
		UserName: aws.String(username),
	}); err == nil {
		raw["has_mfa"] = len(mfa.MFADevices) > 0
	}

	// A login profile means console access.
	_, err := p.iamClient.GetLoginProfile(ctx, &iam.GetLoginProfileInput{
		UserName: aws.String(username),
	})
	raw["has_console_access"] = err == nil

	if policies, err := p.iamClient.ListAttachedUserPolicies(ctx, &iam.ListAttachedUserPoliciesInput{
		UserName: aws.String(username),
	}); err == nil {
		for _, policy := range policies.AttachedPolicies {
			if aws.ToString(policy.PolicyArn) == "arn:aws:iam::aws:policy/AdministratorAccess" {
				raw["has_wildcard_policy"] = true
				break
			}
		}
	}

	return types.Resource{
		ID:     username,
		Type:   types.TypeIAM,
		Region: types.GlobalRegion,
		Name:   username,
		Raw:    raw,
	}
}
