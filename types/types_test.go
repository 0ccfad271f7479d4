package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityRank_Ordering(t *testing.T) {
	assert.Less(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityLow.Rank())
	assert.Equal(t, 4, Severity("BOGUS").Rank())
	assert.False(t, Severity("BOGUS").Valid())
}

func TestParseResourceType(t *testing.T) {
	rt, err := ParseResourceType("EC2")
	require.NoError(t, err)
	assert.Equal(t, TypeEC2, rt)

	_, err = ParseResourceType("ec2")
	assert.Error(t, err)
}

func TestResourceType_IsGlobal(t *testing.T) {
	assert.True(t, TypeIAM.IsGlobal())
	assert.True(t, TypeCloudFront.IsGlobal())
	for _, rt := range []ResourceType{TypeEC2, TypeEBS, TypeS3, TypeRDS, TypeCloudWatch} {
		assert.False(t, rt.IsGlobal(), string(rt))
	}
}

func TestResource_RawAccessors(t *testing.T) {
	r := Resource{Raw: map[string]any{
		"instance_type":   "t3.micro",
		"avg_cpu_percent": 2.5,
		"size_gb":         100,
		"encrypted":       false,
	}}

	assert.Equal(t, "t3.micro", r.RawString("instance_type"))
	cpu, ok := r.RawFloat("avg_cpu_percent")
	require.True(t, ok)
	assert.InDelta(t, 2.5, cpu, 0.001)
	assert.Equal(t, 100, r.RawInt("size_gb"))

	enc, present := r.RawBool("encrypted")
	assert.True(t, present)
	assert.False(t, enc)

	_, present = r.RawBool("missing")
	assert.False(t, present)
}

func TestResource_MissingMandatoryTags(t *testing.T) {
	r := Resource{Tags: map[string]string{"Environment": "prod", "Owner": ""}}
	missing := r.MissingMandatoryTags()
	assert.ElementsMatch(t, []string{"Owner", "Project"}, missing)

	full := Resource{Tags: map[string]string{"Environment": "prod", "Owner": "x", "Project": "y"}}
	assert.Empty(t, full.MissingMandatoryTags())
}

func TestScanSession_Transitions(t *testing.T) {
	s := NewScanSession([]string{"us-east-1"}, []string{"EC2"}, "user:test")
	assert.Equal(t, ScanPending, s.Status)
	assert.NotEmpty(t, s.ID)

	require.NoError(t, s.Transition(ScanRunning))
	require.NoError(t, s.Transition(ScanCompleted))
	assert.True(t, s.Terminal())

	// Terminal states accept no further transitions.
	assert.Error(t, s.Transition(ScanRunning))
	assert.Error(t, s.Transition(ScanFailed))
}

func TestScanSession_PendingCannotComplete(t *testing.T) {
	s := NewScanSession([]string{"us-east-1"}, nil, "scheduler")
	assert.Error(t, s.Transition(ScanCompleted))
	require.NoError(t, s.Transition(ScanFailed))
	assert.True(t, s.Terminal())
}

func TestViolation_Key(t *testing.T) {
	v := Violation{ResourceID: "i-abc", RuleID: "EC2-001"}
	assert.Equal(t, "i-abc|EC2-001", v.Key())
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.Len(t, id, 36)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
