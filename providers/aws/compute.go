package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/finlens/finlens/types"
)

func tagMap(tags []ec2types.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		m[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return m
}

func (p *Provider) discoverInstances(ctx context.Context, c *regionClients, region string) ([]types.Resource, error) {
	var resources []types.Resource

	paginator := ec2.NewDescribeInstancesPaginator(c.ec2, &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe instances: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				state := ""
				if inst.State != nil {
					state = string(inst.State.Name)
				}
				if state == string(ec2types.InstanceStateNameTerminated) {
					continue
				}

				id := aws.ToString(inst.InstanceId)
				raw := map[string]any{
					"instance_type": string(inst.InstanceType),
				}
				if inst.PublicIpAddress != nil {
					raw["public_ip"] = aws.ToString(inst.PublicIpAddress)
				}
				if inst.LaunchTime != nil {
					raw["launch_days_ago"] = int(time.Since(*inst.LaunchTime).Hours() / 24)
				}

				tags := tagMap(inst.Tags)
				if _, inASG := tags["aws:autoscaling:groupName"]; inASG {
					raw["in_asg"] = true
				}

				if state == string(ec2types.InstanceStateNameRunning) {
					if cpu, ok := averageMetric(ctx, c.cw, "AWS/EC2", "CPUUtilization", "InstanceId", id); ok {
						raw["avg_cpu_percent"] = cpu
					}
					raw["open_ports"] = p.openIngressPorts(ctx, c, inst.SecurityGroups)
				}

				resources = append(resources, types.Resource{
					ID:     id,
					Type:   types.TypeEC2,
					Region: region,
					Name:   tags["Name"],
					State:  state,
					Tags:   tags,
					Raw:    raw,
				})
			}
		}
	}
	return resources, nil
}

// openIngressPorts returns ports any attached security group opens to
// the whole internet.
func (p *Provider) openIngressPorts(ctx context.Context, c *regionClients, groups []ec2types.GroupIdentifier) []int {
	if len(groups) == 0 {
		return nil
	}
	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, aws.ToString(g.GroupId))
	}

	out, err := c.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{GroupIds: ids})
	if err != nil {
		return nil
	}

	seen := map[int]bool{}
	var ports []int
	for _, sg := range out.SecurityGroups {
		for _, perm := range sg.IpPermissions {
			worldOpen := false
			for _, r := range perm.IpRanges {
				if aws.ToString(r.CidrIp) == "0.0.0.0/0" {
					worldOpen = true
					break
				}
			}
			if !worldOpen || perm.FromPort == nil {
				continue
			}
			port := int(*perm.FromPort)
			if !seen[port] {
				seen[port] = true
				ports = append(ports, port)
			}
		}
	}
	return ports
}

func (p *Provider) discoverVolumes(ctx context.Context, c *regionClients, region string) ([]types.Resource, error) {
	var resources []types.Resource

	paginator := ec2.NewDescribeVolumesPaginator(c.ec2, &ec2.DescribeVolumesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe volumes: %w", err)
		}
		for _, vol := range page.Volumes {
			tags := tagMap(vol.Tags)
			resources = append(resources, types.Resource{
				ID:     aws.ToString(vol.VolumeId),
				Type:   types.TypeEBS,
				Region: region,
				Name:   tags["Name"],
				State:  string(vol.State),
				Tags:   tags,
				Raw: map[string]any{
					"size_gb":     int(aws.ToInt32(vol.Size)),
					"volume_type": string(vol.VolumeType),
					"encrypted":   aws.ToBool(vol.Encrypted),
				},
			})
		}
	}
	return resources, nil
}

func (p *Provider) discoverAddresses(ctx context.Context, c *regionClients, region string) ([]types.Resource, error) {
	out, err := c.ec2.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{})
	if err != nil {
		return nil, fmt.Errorf("describe addresses: %w", err)
	}

	resources := make([]types.Resource, 0, len(out.Addresses))
	for _, addr := range out.Addresses {
		tags := tagMap(addr.Tags)
		resources = append(resources, types.Resource{
			ID:     aws.ToString(addr.AllocationId),
			Type:   types.TypeEIP,
			Region: region,
			Name:   tags["Name"],
			Tags:   tags,
			Raw: map[string]any{
				"associated": addr.AssociationId != nil,
				"public_ip":  aws.ToString(addr.PublicIp),
			},
		})
	}
	return resources, nil
}

func (p *Provider) discoverSnapshots(ctx context.Context, c *regionClients, region string) ([]types.Resource, error) {
	// AMI-backed snapshots are not orphan candidates; collect image
	// snapshot IDs first so rule evaluation can tell them apart.
	amiSnapshots := map[string]string{}
	images, err := c.ec2.DescribeImages(ctx, &ec2.DescribeImagesInput{
		Owners: []string{"self"},
	})
	if err == nil {
		for _, img := range images.Images {
			for _, bdm := range img.BlockDeviceMappings {
				if bdm.Ebs != nil && bdm.Ebs.SnapshotId != nil {
					amiSnapshots[aws.ToString(bdm.Ebs.SnapshotId)] = aws.ToString(img.ImageId)
				}
			}
		}
	}

	var resources []types.Resource
	paginator := ec2.NewDescribeSnapshotsPaginator(c.ec2, &ec2.DescribeSnapshotsInput{
		OwnerIds: []string{"self"},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe snapshots: %w", err)
		}
		for _, snap := range page.Snapshots {
			id := aws.ToString(snap.SnapshotId)
			raw := map[string]any{
				"size_gb": int(aws.ToInt32(snap.VolumeSize)),
			}
			if snap.StartTime != nil {
				raw["age_days"] = int(time.Since(*snap.StartTime).Hours() / 24)
			}
			if ami, ok := amiSnapshots[id]; ok {
				raw["ami_id"] = ami
			}

			tags := tagMap(snap.Tags)
			resources = append(resources, types.Resource{
				ID:     id,
				Type:   types.TypeSnapshot,
				Region: region,
				Name:   tags["Name"],
				State:  string(snap.State),
				Tags:   tags,
				Raw:    raw,
			})
		}
	}
	return resources, nil
}

func (p *Provider) discoverNATGateways(ctx context.Context, c *regionClients, region string) ([]types.Resource, error) {
	var resources []types.Resource

	paginator := ec2.NewDescribeNatGatewaysPaginator(c.ec2, &ec2.DescribeNatGatewaysInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe nat gateways: %w", err)
		}
		for _, nat := range page.NatGateways {
			if nat.State != ec2types.NatGatewayStateAvailable {
				continue
			}
			id := aws.ToString(nat.NatGatewayId)
			raw := map[string]any{}
			if bytes, ok := sumMetric(ctx, c.cw, "AWS/NATGateway", "BytesOutToDestination", "NatGatewayId", id); ok {
				raw["data_transfer_gb"] = bytes / (1024 * 1024 * 1024)
			}

			tags := tagMap(nat.Tags)
			resources = append(resources, types.Resource{
				ID:     id,
				Type:   types.TypeNAT,
				Region: region,
				Name:   tags["Name"],
				State:  string(nat.State),
				Tags:   tags,
				Raw:    raw,
			})
		}
	}
	return resources, nil
}
