package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/finlens/types"
)

func findingByRule(findings []Finding, ruleID string) *Finding {
	for i := range findings {
		if findings[i].RuleID == ruleID {
			return &findings[i]
		}
	}
	return nil
}

func TestCatalog_CoversAllTypes(t *testing.T) {
	for _, rt := range types.AllResourceTypes() {
		assert.True(t, HasRules(rt), "no catalog entry for %s", rt)
	}
}

func TestEvaluate_StoppedInstance(t *testing.T) {
	r := types.Resource{
		ID:     "i-0abc",
		Type:   types.TypeEC2,
		Region: "us-east-1",
		State:  "stopped",
		Tags:   map[string]string{"Environment": "prod", "Owner": "platform", "Project": "api"},
		Raw:    map[string]any{"instance_type": "m5.large"},
	}
	findings := Evaluate(r)

	f := findingByRule(findings, "EC2-001")
	require.NotNil(t, f)
	assert.Equal(t, types.SeverityMedium, f.Severity)

	// Stopped instances report no CPU metrics and must not be flagged idle.
	assert.Nil(t, findingByRule(findings, "EC2-002"))
}

func TestEvaluate_IdleInstance(t *testing.T) {
	r := types.Resource{
		ID:    "i-0idle",
		Type:  types.TypeEC2,
		State: "running",
		Tags:  map[string]string{"Environment": "prod", "Owner": "platform", "Project": "api"},
		Raw: map[string]any{
			"instance_type":   "m5.large",
			"avg_cpu_percent": 2.0,
			"in_asg":          true,
		},
	}
	findings := Evaluate(r)

	f := findingByRule(findings, "EC2-002")
	require.NotNil(t, f)
	assert.Equal(t, types.SeverityHigh, f.Severity)
}

func TestEvaluate_HealthyInstance(t *testing.T) {
	r := types.Resource{
		ID:    "i-0busy",
		Type:  types.TypeEC2,
		State: "running",
		Tags:  map[string]string{"Environment": "prod", "Owner": "platform", "Project": "api"},
		Raw: map[string]any{
			"instance_type":   "m5.large",
			"avg_cpu_percent": 60.0,
			"in_asg":          true,
		},
	}
	for _, f := range Evaluate(r) {
		assert.NotEqual(t, types.SeverityHigh, f.Severity, "unexpected %s", f.RuleID)
		assert.NotEqual(t, types.SeverityCritical, f.Severity, "unexpected %s", f.RuleID)
	}
}

func TestEvaluate_MissingCPUDefaultsBusy(t *testing.T) {
	r := types.Resource{
		ID:    "i-0nocpu",
		Type:  types.TypeEC2,
		State: "running",
		Tags:  map[string]string{"Environment": "prod", "Owner": "x", "Project": "y"},
		Raw:   map[string]any{"instance_type": "m5.xlarge", "in_asg": true},
	}
	findings := Evaluate(r)
	assert.Nil(t, findingByRule(findings, "EC2-002"))
	assert.Nil(t, findingByRule(findings, "EC2-005"))
}

func TestEvaluate_PublicBucket(t *testing.T) {
	r := types.Resource{
		ID:   "logs-bucket",
		Type: types.TypeS3,
		Tags: map[string]string{"Environment": "prod", "Owner": "x", "Project": "y"},
		Raw: map[string]any{
			"public_access_blocked": false,
			"versioning_enabled":    true,
			"encryption_enabled":    true,
			"has_lifecycle_policy":  true,
		},
	}
	findings := Evaluate(r)

	f := findingByRule(findings, "S3-001")
	require.NotNil(t, f)
	assert.Equal(t, types.SeverityCritical, f.Severity)
}

func TestEvaluate_BucketMissingBlockFlagNotFlagged(t *testing.T) {
	r := types.Resource{
		ID:   "other-bucket",
		Type: types.TypeS3,
		Raw: map[string]any{
			"versioning_enabled":   true,
			"encryption_enabled":   true,
			"has_lifecycle_policy": true,
		},
	}
	assert.Nil(t, findingByRule(Evaluate(r), "S3-001"))
}

func TestEvaluate_UnattachedVolume(t *testing.T) {
	r := types.Resource{
		ID:    "vol-0aaa",
		Type:  types.TypeEBS,
		State: "available",
		Raw:   map[string]any{"size_gb": 100, "volume_type": "gp3", "encrypted": true},
	}
	findings := Evaluate(r)

	f := findingByRule(findings, "EBS-001")
	require.NotNil(t, f)
	assert.Equal(t, types.SeverityHigh, f.Severity)
	assert.Contains(t, f.Message, "$10.00/month")
}

func TestEvaluate_RDSNotAvailableSkipsMetrics(t *testing.T) {
	r := types.Resource{
		ID:    "db-stopped",
		Type:  types.TypeRDS,
		State: "stopped",
		Raw:   map[string]any{"avg_connections": 0.0, "instance_class": "db.r5.xlarge"},
	}
	findings := Evaluate(r)
	assert.Nil(t, findingByRule(findings, "RDS-001"))
	assert.Nil(t, findingByRule(findings, "RDS-002"))
}

func TestEvaluate_SecurityGroupOpenPorts(t *testing.T) {
	r := types.Resource{
		ID:    "i-0ssh",
		Type:  types.TypeEC2,
		State: "running",
		Tags:  map[string]string{"Environment": "prod", "Owner": "x", "Project": "y"},
		Raw: map[string]any{
			"instance_type":   "m5.large",
			"avg_cpu_percent": 50.0,
			"in_asg":          true,
			"open_ports":      []any{float64(22), float64(3389)},
		},
	}
	findings := Evaluate(r)

	require.NotNil(t, findingByRule(findings, "SG-001"))
	require.NotNil(t, findingByRule(findings, "SG-002"))
	assert.Equal(t, types.SeverityCritical, findingByRule(findings, "SG-001").Severity)
}

func TestEvaluate_TagChecksSkippedForGlobal(t *testing.T) {
	r := types.Resource{
		ID:   "audit-user",
		Type: types.TypeIAM,
		Raw:  map[string]any{"last_activity_days": 120, "has_mfa": true},
	}
	findings := Evaluate(r)
	assert.Nil(t, findingByRule(findings, "TAG-001"))
	require.NotNil(t, findingByRule(findings, "IAM-001"))
}

func TestEvaluate_RootAccountRules(t *testing.T) {
	r := types.Resource{
		ID:   "root",
		Type: types.TypeIAM,
		Raw: map[string]any{
			"is_root":            true,
			"has_mfa":            false,
			"last_activity_days": 10,
		},
	}
	findings := Evaluate(r)

	require.NotNil(t, findingByRule(findings, "IAM-002"))
	require.NotNil(t, findingByRule(findings, "IAM-005"))
	// User rules never fire for the root identity.
	assert.Nil(t, findingByRule(findings, "IAM-001"))
}

func TestEvaluate_EmptyTagValues(t *testing.T) {
	r := types.Resource{
		ID:    "vol-0tags",
		Type:  types.TypeEBS,
		State: "in-use",
		Tags:  map[string]string{"Environment": "", "Owner": "team", "Project": "app"},
		Raw:   map[string]any{"volume_type": "gp3", "encrypted": true},
	}
	findings := Evaluate(r)

	require.NotNil(t, findingByRule(findings, "TAG-001"))
	require.NotNil(t, findingByRule(findings, "TAG-002"))
}

func TestEvaluate_CloudWatchKinds(t *testing.T) {
	lg := types.Resource{
		ID:   "/aws/lambda/ingest",
		Type: types.TypeCloudWatch,
		Tags: map[string]string{"Environment": "prod", "Owner": "x", "Project": "y"},
		Raw: map[string]any{
			"log_group_name": "/aws/lambda/ingest",
			"has_retention":  false,
			"size_mb":        2048.0,
		},
	}
	require.NotNil(t, findingByRule(Evaluate(lg), "CW-001"))

	alarm := types.Resource{
		ID:   "cpu-high",
		Type: types.TypeCloudWatch,
		Tags: map[string]string{"Environment": "prod", "Owner": "x", "Project": "y"},
		Raw: map[string]any{
			"alarm_name":             "cpu-high",
			"state":                  "INSUFFICIENT_DATA",
			"last_state_change_days": 14,
			"has_actions":            false,
		},
	}
	findings := Evaluate(alarm)
	require.NotNil(t, findingByRule(findings, "CW-002"))
	require.NotNil(t, findingByRule(findings, "CW-003"))
}

func TestFrameworksFor(t *testing.T) {
	assert.Equal(t, []string{FrameworkFinOps}, FrameworksFor("EC2-001"))
	assert.Equal(t, []string{FrameworkGovernance}, FrameworksFor("NOT-A-RULE"))
}

func TestFrameworkMap_CoversCatalogOutput(t *testing.T) {
	// Every rule the catalog can emit must have a framework mapping.
	resources := []types.Resource{
		{ID: "i-1", Type: types.TypeEC2, State: "stopped"},
		{ID: "i-2", Type: types.TypeEC2, State: "running", Raw: map[string]any{
			"instance_type": "m5.xlarge", "avg_cpu_percent": 1.0,
			"public_ip": "1.2.3.4", "ri_candidate": true, "launch_days_ago": 400,
			"open_ports": []any{float64(22), float64(3389)},
		}},
		{ID: "vol-1", Type: types.TypeEBS, State: "available", Raw: map[string]any{
			"size_gb": 10, "encrypted": false, "volume_type": "gp2"}},
		{ID: "b-1", Type: types.TypeS3, Raw: map[string]any{
			"public_access_blocked": false, "last_accessed_days": 120}},
		{ID: "db-1", Type: types.TypeRDS, State: "available", Raw: map[string]any{
			"instance_class": "db.r5.xlarge", "avg_cpu_percent": 5.0,
			"avg_connections": 1.0, "storage_encrypted": false, "publicly_accessible": true}},
		{ID: "eip-1", Type: types.TypeEIP, Raw: map[string]any{"associated": false}},
		{ID: "snap-1", Type: types.TypeSnapshot, Raw: map[string]any{"age_days": 60, "size_gb": 10}},
		{ID: "lb-1", Type: types.TypeLB, Raw: map[string]any{"listener_count": 0}},
		{ID: "lb-2", Type: types.TypeLB, Raw: map[string]any{
			"listener_count": 2, "avg_request_count_per_day": 1.0}},
		{ID: "nat-1", Type: types.TypeNAT, Raw: map[string]any{"data_transfer_gb": 0.1}},
		{ID: "fn-1", Type: types.TypeLambda, Raw: map[string]any{
			"invocations_30d": 0.0, "last_modified_days": 60, "timeout_sec": 900,
			"has_dlq": false, "tracing_enabled": false}},
		{ID: "fn-2", Type: types.TypeLambda, Raw: map[string]any{
			"invocations_30d": 1000.0, "memory_mb": 2048, "avg_duration_ms": 100.0,
			"timeout_sec": 3, "has_dlq": true, "tracing_enabled": true}},
		{ID: "u-1", Type: types.TypeIAM, Raw: map[string]any{
			"last_activity_days": 120, "key_age_days": 200,
			"has_wildcard_policy": true, "has_console_access": true, "has_mfa": false}},
		{ID: "root", Type: types.TypeIAM, Raw: map[string]any{
			"is_root": true, "has_mfa": false, "last_activity_days": 5}},
		{ID: "cf-1", Type: types.TypeCloudFront, Raw: map[string]any{
			"has_waf": false, "https_only": false, "requests_30d": 0.0}},
		{ID: "lg-1", Type: types.TypeCloudWatch, Raw: map[string]any{
			"log_group_name": "lg", "has_retention": false, "size_mb": 100.0}},
		{ID: "al-1", Type: types.TypeCloudWatch, Raw: map[string]any{
			"alarm_name": "al", "state": "INSUFFICIENT_DATA",
			"last_state_change_days": 10, "has_actions": false}},
	}

	seen := map[string]bool{}
	for _, r := range resources {
		for _, f := range Evaluate(r) {
			seen[f.RuleID] = true
			_, mapped := frameworkMap[f.RuleID]
			assert.True(t, mapped, "rule %s has no framework mapping", f.RuleID)
		}
	}
	// Sanity: the probe fleet exercises a broad slice of the catalog.
	assert.Greater(t, len(seen), 35)
}
