package recommend

import (
	"math"

	"github.com/finlens/finlens/types"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// estimatedSavings computes the monthly USD saving for one rule fired
// against one resource. Governance and security rules carry no direct
// monetary value and return 0; they are still emitted because the
// remediation itself has value.
func estimatedSavings(ruleID string, r types.Resource) float64 {
	instanceType := r.RawString("instance_type")
	monthly := ec2Monthly(instanceType)

	switch ruleID {
	case "EC2-001":
		// Stopped instance still pays for EBS. Assume 50 GB gp3.
		return round2(50 * 0.08)
	case "EC2-002":
		return round2(monthly * 0.70)
	case "EC2-005":
		return round2(monthly * 0.50)
	case "EC2-007":
		return round2(monthly * 0.65)
	case "EC2-008":
		return round2(monthly * 0.35)

	case "EBS-001":
		size := r.RawInt("size_gb")
		if size == 0 {
			size = 20
		}
		return round2(float64(size) * 0.10)
	case "EBS-003":
		size := r.RawInt("size_gb")
		if size == 0 {
			size = 50
		}
		return round2(float64(size) * 0.10 * 0.20)

	case "EIP-001":
		return 3.60
	case "SNAP-001":
		size := r.RawInt("size_gb")
		if size == 0 {
			size = 10
		}
		return round2(float64(size) * 0.05)

	case "LB-001":
		return 16.0
	case "LB-002":
		return 22.0
	case "NAT-001":
		return 32.40

	case "RDS-001":
		return 100.0
	case "RDS-002":
		return 120.0

	case "LAMBDA-002":
		memoryMB := r.RawInt("memory_mb")
		if memoryMB == 0 {
			memoryMB = 256
		}
		invocations, ok := r.RawFloat("invocations_30d")
		if !ok || invocations < 1 {
			invocations = 1000
		}
		avgMS, ok := r.RawFloat("avg_duration_ms")
		if !ok {
			avgMS = 500
		}
		gbSec := (float64(memoryMB) / 1024) * (avgMS / 1000) * invocations
		return round2(gbSec * 0.0000166667 * 0.30)

	case "CF-004":
		return 2.0
	case "CW-001":
		sizeMB, _ := r.RawFloat("size_mb")
		return round2(sizeMB / 1024 * 0.03)
	}

	return 0.0
}
