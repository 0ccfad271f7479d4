// Package mock generates a deterministic synthetic fleet for demos and
// tests. The same seed, region, and resource type always produce the
// same resources, so repeated scans diff cleanly.
package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/finlens/finlens/providers"
	"github.com/finlens/finlens/types"
)

func init() {
	providers.Register("mock", func(_ context.Context, cfg providers.Config) (providers.Provider, error) {
		return &Provider{seed: cfg.Seed}, nil
	})
}

// Provider is the deterministic mock fleet.
type Provider struct {
	seed int64
}

// New returns a mock provider with the given seed.
func New(seed int64) *Provider {
	return &Provider{seed: seed}
}

func (p *Provider) Name() string { return "mock" }

func (p *Provider) Supports(t types.ResourceType) bool {
	_, err := types.ParseResourceType(string(t))
	return err == nil
}

// rng derives a stable generator for one (region, type) cell.
func (p *Provider) rng(region string, t types.ResourceType) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(region))
	h.Write([]byte{0})
	h.Write([]byte(t))
	return rand.New(rand.NewSource(p.seed ^ int64(h.Sum64())))
}

func (p *Provider) Discover(_ context.Context, region string, t types.ResourceType) ([]types.Resource, error) {
	rng := p.rng(region, t)

	switch t {
	case types.TypeEC2:
		return p.instances(rng, region), nil
	case types.TypeEBS:
		return p.volumes(rng, region), nil
	case types.TypeS3:
		return p.buckets(rng, region), nil
	case types.TypeRDS:
		return p.databases(rng, region), nil
	case types.TypeEIP:
		return p.addresses(rng, region), nil
	case types.TypeSnapshot:
		return p.snapshots(rng, region), nil
	case types.TypeLB:
		return p.loadBalancers(rng, region), nil
	case types.TypeNAT:
		return p.natGateways(rng, region), nil
	case types.TypeLambda:
		return p.functions(rng, region), nil
	case types.TypeIAM:
		return p.identities(rng), nil
	case types.TypeCloudFront:
		return p.distributions(rng), nil
	case types.TypeCloudWatch:
		return p.logGroupsAndAlarms(rng, region), nil
	}
	return nil, fmt.Errorf("mock provider does not support %s", t)
}

var (
	environments  = []string{"prod", "staging", "dev", ""}
	owners        = []string{"platform", "data", "web", ""}
	projects      = []string{"api", "etl", "site", ""}
	instanceTypes = []string{"t3.medium", "t3.large", "m5.large", "m5.xlarge", "c5.xlarge", "r5.xlarge"}
)

func tags(rng *rand.Rand) map[string]string {
	t := map[string]string{}
	if env := environments[rng.Intn(len(environments))]; env != "" {
		t["Environment"] = env
	}
	if owner := owners[rng.Intn(len(owners))]; owner != "" {
		t["Owner"] = owner
	}
	if project := projects[rng.Intn(len(projects))]; project != "" {
		t["Project"] = project
	}
	return t
}

func (p *Provider) instances(rng *rand.Rand, region string) []types.Resource {
	count := 4 + rng.Intn(5)
	resources := make([]types.Resource, 0, count)
	for i := 0; i < count; i++ {
		state := "running"
		if rng.Float64() < 0.25 {
			state = "stopped"
		}
		itype := instanceTypes[rng.Intn(len(instanceTypes))]
		raw := map[string]any{
			"instance_type":   itype,
			"avg_cpu_percent": rng.Float64() * 80,
			"in_asg":          rng.Float64() < 0.4,
			"launch_days_ago": rng.Intn(500),
			"ri_candidate":    rng.Float64() < 0.3,
		}
		if rng.Float64() < 0.3 {
			raw["public_ip"] = fmt.Sprintf("54.%d.%d.%d", rng.Intn(255), rng.Intn(255), rng.Intn(255))
		}
		if rng.Float64() < 0.2 {
			raw["open_ports"] = []int{22}
		}
		resources = append(resources, types.Resource{
			ID:     fmt.Sprintf("i-%s%08x", regionToken(region), rng.Uint32()),
			Type:   types.TypeEC2,
			Region: region,
			Name:   fmt.Sprintf("%s-node-%d", region, i),
			State:  state,
			Tags:   tags(rng),
			Raw:    raw,
		})
	}
	return resources
}

func (p *Provider) volumes(rng *rand.Rand, region string) []types.Resource {
	count := 3 + rng.Intn(4)
	resources := make([]types.Resource, 0, count)
	for i := 0; i < count; i++ {
		state := "in-use"
		if rng.Float64() < 0.3 {
			state = "available"
		}
		vtype := "gp3"
		if rng.Float64() < 0.4 {
			vtype = "gp2"
		}
		resources = append(resources, types.Resource{
			ID:     fmt.Sprintf("vol-%s%08x", regionToken(region), rng.Uint32()),
			Type:   types.TypeEBS,
			Region: region,
			State:  state,
			Tags:   tags(rng),
			Raw: map[string]any{
				"size_gb":     8 * (1 + rng.Intn(50)),
				"volume_type": vtype,
				"encrypted":   rng.Float64() < 0.7,
			},
		})
	}
	return resources
}

func (p *Provider) buckets(rng *rand.Rand, region string) []types.Resource {
	count := 2 + rng.Intn(3)
	resources := make([]types.Resource, 0, count)
	for i := 0; i < count; i++ {
		resources = append(resources, types.Resource{
			ID:     fmt.Sprintf("%s-bucket-%04x", region, rng.Uint32()&0xffff),
			Type:   types.TypeS3,
			Region: region,
			Tags:   tags(rng),
			Raw: map[string]any{
				"public_access_blocked": rng.Float64() < 0.85,
				"versioning_enabled":    rng.Float64() < 0.5,
				"encryption_enabled":    rng.Float64() < 0.8,
				"has_lifecycle_policy":  rng.Float64() < 0.4,
				"last_accessed_days":    rng.Intn(200),
			},
		})
	}
	return resources
}

func (p *Provider) databases(rng *rand.Rand, region string) []types.Resource {
	classes := []string{"db.t3.medium", "db.m5.large", "db.r5.xlarge", "db.m5.xlarge"}
	count := 1 + rng.Intn(3)
	resources := make([]types.Resource, 0, count)
	for i := 0; i < count; i++ {
		resources = append(resources, types.Resource{
			ID:     fmt.Sprintf("db-%s-%d", region, i),
			Type:   types.TypeRDS,
			Region: region,
			State:  "available",
			Tags:   tags(rng),
			Raw: map[string]any{
				"instance_class":              classes[rng.Intn(len(classes))],
				"avg_connections":             rng.Float64() * 40,
				"avg_cpu_percent":             rng.Float64() * 60,
				"storage_encrypted":           rng.Float64() < 0.8,
				"publicly_accessible":         rng.Float64() < 0.1,
				"storage_autoscaling_enabled": rng.Float64() < 0.6,
			},
		})
	}
	return resources
}

func (p *Provider) addresses(rng *rand.Rand, region string) []types.Resource {
	count := 1 + rng.Intn(3)
	resources := make([]types.Resource, 0, count)
	for i := 0; i < count; i++ {
		resources = append(resources, types.Resource{
			ID:     fmt.Sprintf("eipalloc-%s%08x", regionToken(region), rng.Uint32()),
			Type:   types.TypeEIP,
			Region: region,
			Tags:   tags(rng),
			Raw:    map[string]any{"associated": rng.Float64() < 0.6},
		})
	}
	return resources
}

func (p *Provider) snapshots(rng *rand.Rand, region string) []types.Resource {
	count := 2 + rng.Intn(4)
	resources := make([]types.Resource, 0, count)
	for i := 0; i < count; i++ {
		raw := map[string]any{
			"age_days": rng.Intn(200),
			"size_gb":  8 * (1 + rng.Intn(20)),
		}
		if rng.Float64() < 0.4 {
			raw["ami_id"] = fmt.Sprintf("ami-%08x", rng.Uint32())
		}
		resources = append(resources, types.Resource{
			ID:     fmt.Sprintf("snap-%s%08x", regionToken(region), rng.Uint32()),
			Type:   types.TypeSnapshot,
			Region: region,
			Tags:   tags(rng),
			Raw:    raw,
		})
	}
	return resources
}

func (p *Provider) loadBalancers(rng *rand.Rand, region string) []types.Resource {
	count := 1 + rng.Intn(2)
	resources := make([]types.Resource, 0, count)
	for i := 0; i < count; i++ {
		lbType := "ALB"
		if rng.Float64() < 0.3 {
			lbType = "NLB"
		}
		listeners := rng.Intn(3)
		resources = append(resources, types.Resource{
			ID:     fmt.Sprintf("lb-%s-%d", region, i),
			Type:   types.TypeLB,
			Region: region,
			Name:   fmt.Sprintf("%s-%s-%d", region, lbType, i),
			Tags:   tags(rng),
			Raw: map[string]any{
				"lb_type":                   lbType,
				"listener_count":            listeners,
				"avg_request_count_per_day": rng.Float64() * 5000,
			},
		})
	}
	return resources
}

func (p *Provider) natGateways(rng *rand.Rand, region string) []types.Resource {
	count := rng.Intn(2) + 1
	resources := make([]types.Resource, 0, count)
	for i := 0; i < count; i++ {
		resources = append(resources, types.Resource{
			ID:     fmt.Sprintf("nat-%s%08x", regionToken(region), rng.Uint32()),
			Type:   types.TypeNAT,
			Region: region,
			Tags:   tags(rng),
			Raw:    map[string]any{"data_transfer_gb": rng.Float64() * 50},
		})
	}
	return resources
}

func (p *Provider) functions(rng *rand.Rand, region string) []types.Resource {
	memories := []int{128, 256, 512, 1024, 2048}
	count := 2 + rng.Intn(4)
	resources := make([]types.Resource, 0, count)
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("%s-fn-%d", region, i)
		invocations := float64(rng.Intn(50000))
		if rng.Float64() < 0.2 {
			invocations = 0
		}
		resources = append(resources, types.Resource{
			ID:     name,
			Type:   types.TypeLambda,
			Region: region,
			Name:   name,
			Tags:   tags(rng),
			Raw: map[string]any{
				"function_name":      name,
				"invocations_30d":    invocations,
				"memory_mb":          memories[rng.Intn(len(memories))],
				"timeout_sec":        []int{3, 30, 60, 900}[rng.Intn(4)],
				"avg_duration_ms":    rng.Float64() * 3000,
				"last_modified_days": rng.Intn(120),
				"has_dlq":            rng.Float64() < 0.4,
				"tracing_enabled":    rng.Float64() < 0.3,
			},
		})
	}
	return resources
}

func (p *Provider) identities(rng *rand.Rand) []types.Resource {
	resources := []types.Resource{{
		ID:     "root",
		Type:   types.TypeIAM,
		Region: types.GlobalRegion,
		Raw: map[string]any{
			"is_root":            true,
			"has_mfa":            rng.Float64() < 0.7,
			"last_activity_days": rng.Intn(365),
		},
	}}

	names := []string{"deploy-bot", "data-analyst", "old-contractor", "ci-runner"}
	count := 2 + rng.Intn(3)
	for i := 0; i < count && i < len(names); i++ {
		resources = append(resources, types.Resource{
			ID:     names[i],
			Type:   types.TypeIAM,
			Region: types.GlobalRegion,
			Raw: map[string]any{
				"username":            names[i],
				"last_activity_days":  rng.Intn(200),
				"key_age_days":        rng.Intn(300),
				"has_wildcard_policy": rng.Float64() < 0.15,
				"has_console_access":  rng.Float64() < 0.5,
				"has_mfa":             rng.Float64() < 0.6,
			},
		})
	}
	return resources
}

func (p *Provider) distributions(rng *rand.Rand) []types.Resource {
	count := 1 + rng.Intn(2)
	resources := make([]types.Resource, 0, count)
	for i := 0; i < count; i++ {
		domain := fmt.Sprintf("d%08x.cloudfront.net", rng.Uint32())
		resources = append(resources, types.Resource{
			ID:     fmt.Sprintf("E%08X", rng.Uint32()),
			Type:   types.TypeCloudFront,
			Region: types.GlobalRegion,
			Name:   domain,
			Raw: map[string]any{
				"domain_name":         domain,
				"has_waf":             rng.Float64() < 0.4,
				"https_only":          rng.Float64() < 0.7,
				"has_geo_restriction": rng.Float64() < 0.2,
				"requests_30d":        float64(rng.Intn(1000000)),
				"logging_enabled":     rng.Float64() < 0.5,
			},
		})
	}
	return resources
}

func (p *Provider) logGroupsAndAlarms(rng *rand.Rand, region string) []types.Resource {
	var resources []types.Resource

	lgCount := 2 + rng.Intn(3)
	for i := 0; i < lgCount; i++ {
		name := fmt.Sprintf("/aws/lambda/%s-fn-%d", region, i)
		resources = append(resources, types.Resource{
			ID:     name,
			Type:   types.TypeCloudWatch,
			Region: region,
			Name:   name,
			Tags:   tags(rng),
			Raw: map[string]any{
				"log_group_name": name,
				"has_retention":  rng.Float64() < 0.5,
				"size_mb":        rng.Float64() * 5000,
			},
		})
	}

	states := []string{"OK", "ALARM", "INSUFFICIENT_DATA"}
	alarmCount := 1 + rng.Intn(3)
	for i := 0; i < alarmCount; i++ {
		name := fmt.Sprintf("%s-alarm-%d", region, i)
		resources = append(resources, types.Resource{
			ID:     name,
			Type:   types.TypeCloudWatch,
			Region: region,
			Name:   name,
			Tags:   tags(rng),
			Raw: map[string]any{
				"alarm_name":             name,
				"state":                  states[rng.Intn(len(states))],
				"last_state_change_days": rng.Intn(30),
				"has_actions":            rng.Float64() < 0.7,
			},
		})
	}
	return resources
}

func regionToken(region string) string {
	if len(region) >= 2 {
		return region[:2]
	}
	return region
}
