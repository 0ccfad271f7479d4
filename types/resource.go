package types

import "fmt"

// ResourceType identifies the kind of cloud resource a record describes.
type ResourceType string

const (
	TypeEC2        ResourceType = "EC2"
	TypeEBS        ResourceType = "EBS"
	TypeS3         ResourceType = "S3"
	TypeRDS        ResourceType = "RDS"
	TypeEIP        ResourceType = "EIP"
	TypeSnapshot   ResourceType = "SNAPSHOT"
	TypeLB         ResourceType = "LB"
	TypeNAT        ResourceType = "NAT"
	TypeLambda     ResourceType = "Lambda"
	TypeIAM        ResourceType = "IAM"
	TypeCloudFront ResourceType = "CloudFront"
	TypeCloudWatch ResourceType = "CloudWatch"
)

// GlobalRegion is the pseudo-region used for account-wide resource types.
const GlobalRegion = "global"

// AllResourceTypes returns the full catalog in stable order.
func AllResourceTypes() []ResourceType {
	return []ResourceType{
		TypeEC2, TypeEBS, TypeS3, TypeRDS, TypeEIP, TypeSnapshot,
		TypeLB, TypeNAT, TypeLambda, TypeIAM, TypeCloudFront, TypeCloudWatch,
	}
}

// ParseResourceType validates a caller-supplied type string.
func ParseResourceType(s string) (ResourceType, error) {
	for _, t := range AllResourceTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown resource type %q", s)
}

// IsGlobal reports whether the type has no regional scope and must be
// scanned at most once per run regardless of how many regions were
// requested.
func (t ResourceType) IsGlobal() bool {
	return t == TypeIAM || t == TypeCloudFront
}

// MandatoryTags are required on every regional resource for cost
// attribution and ownership tracking.
var MandatoryTags = []string{"Environment", "Owner", "Project"}

// Resource is one discovered cloud entity. A resource is created fresh
// on every scan run and is immutable once its scan completes.
type Resource struct {
	ID             string            `json:"resource_id"`
	Type           ResourceType      `json:"resource_type"`
	Region         string            `json:"region"`
	Name           string            `json:"name,omitempty"`
	State          string            `json:"state,omitempty"`
	Tags           map[string]string `json:"tags,omitempty"`
	Raw            map[string]any    `json:"raw_data,omitempty"`
	RiskScore      int               `json:"risk_score"`
	ViolationCount int               `json:"violation_count"`
}

// RawString returns a string attribute from Raw, or "" when absent.
func (r Resource) RawString(key string) string {
	if v, ok := r.Raw[key].(string); ok {
		return v
	}
	return ""
}

// RawFloat returns a numeric attribute from Raw. JSON round-trips turn
// all numbers into float64; scanners may also store ints directly.
func (r Resource) RawFloat(key string) (float64, bool) {
	switch v := r.Raw[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// RawInt returns an integer attribute from Raw, or 0 when absent.
func (r Resource) RawInt(key string) int {
	f, _ := r.RawFloat(key)
	return int(f)
}

// RawBool returns a boolean attribute from Raw. The second return
// distinguishes "explicitly false" from "not present".
func (r Resource) RawBool(key string) (bool, bool) {
	v, ok := r.Raw[key].(bool)
	return v, ok
}

// MissingMandatoryTags lists mandatory tags that are absent or empty.
func (r Resource) MissingMandatoryTags() []string {
	var missing []string
	for _, tag := range MandatoryTags {
		if r.Tags[tag] == "" {
			missing = append(missing, tag)
		}
	}
	return missing
}
