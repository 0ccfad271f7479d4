package rules

// Compliance frameworks a rule can map to.
const (
	FrameworkCIS        = "CIS-AWS-1.4"
	FrameworkSOC2       = "SOC2"
	FrameworkPCIDSS     = "PCI-DSS"
	FrameworkNIST       = "NIST-800-53"
	FrameworkFinOps     = "FinOps"
	FrameworkGovernance = "Governance"
)

// AllFrameworks lists every framework in report order.
var AllFrameworks = []string{
	FrameworkCIS,
	FrameworkSOC2,
	FrameworkPCIDSS,
	FrameworkNIST,
	FrameworkFinOps,
	FrameworkGovernance,
}

// frameworkMap maps every catalog rule to the frameworks it fails.
var frameworkMap = map[string][]string{
	"EC2-001": {FrameworkFinOps},
	"EC2-002": {FrameworkFinOps},
	"EC2-003": {FrameworkGovernance, FrameworkSOC2},
	"EC2-004": {FrameworkCIS, FrameworkPCIDSS},
	"EC2-005": {FrameworkFinOps},
	"EC2-006": {FrameworkFinOps, FrameworkGovernance},
	"EC2-007": {FrameworkFinOps},
	"EC2-008": {FrameworkFinOps},

	"RDS-001": {FrameworkCIS, FrameworkSOC2, FrameworkPCIDSS},
	"RDS-002": {FrameworkFinOps},
	"RDS-003": {FrameworkGovernance},

	"LB-001": {FrameworkFinOps},
	"LB-002": {FrameworkCIS, FrameworkPCIDSS},

	"NAT-001": {FrameworkFinOps},

	"EBS-001": {FrameworkFinOps},
	"EBS-002": {FrameworkCIS, FrameworkSOC2, FrameworkPCIDSS, FrameworkNIST},
	"EBS-003": {FrameworkFinOps},

	"S3-001": {FrameworkCIS, FrameworkSOC2, FrameworkPCIDSS, FrameworkNIST},
	"S3-002": {FrameworkSOC2, FrameworkGovernance},
	"S3-003": {FrameworkCIS, FrameworkSOC2, FrameworkPCIDSS, FrameworkNIST},
	"S3-004": {FrameworkFinOps, FrameworkGovernance},
	"S3-005": {FrameworkFinOps},

	"EIP-001":  {FrameworkFinOps},
	"SNAP-001": {FrameworkFinOps, FrameworkGovernance},

	"LAMBDA-001": {FrameworkFinOps},
	"LAMBDA-002": {FrameworkFinOps},
	"LAMBDA-003": {FrameworkGovernance},
	"LAMBDA-004": {FrameworkGovernance, FrameworkSOC2},
	"LAMBDA-005": {FrameworkGovernance},
	"LAMBDA-006": {FrameworkGovernance},

	"IAM-001": {FrameworkCIS, FrameworkSOC2, FrameworkPCIDSS, FrameworkNIST},
	"IAM-002": {FrameworkCIS, FrameworkSOC2, FrameworkPCIDSS, FrameworkNIST},
	"IAM-003": {FrameworkCIS, FrameworkPCIDSS, FrameworkNIST},
	"IAM-004": {FrameworkCIS, FrameworkSOC2, FrameworkPCIDSS, FrameworkNIST},
	"IAM-005": {FrameworkCIS, FrameworkSOC2, FrameworkPCIDSS},
	"IAM-006": {FrameworkCIS, FrameworkPCIDSS},

	"CF-001": {FrameworkCIS, FrameworkPCIDSS, FrameworkNIST},
	"CF-002": {FrameworkCIS, FrameworkPCIDSS},
	"CF-003": {FrameworkGovernance},
	"CF-004": {FrameworkFinOps},
	"CF-005": {FrameworkGovernance, FrameworkSOC2},

	"CW-001": {FrameworkFinOps, FrameworkGovernance},
	"CW-002": {FrameworkGovernance},
	"CW-003": {FrameworkGovernance, FrameworkSOC2},

	"TAG-001": {FrameworkGovernance},
	"TAG-002": {FrameworkGovernance},

	"SG-001": {FrameworkCIS, FrameworkPCIDSS, FrameworkNIST},
	"SG-002": {FrameworkCIS, FrameworkPCIDSS, FrameworkNIST},

	"ENC-001": {FrameworkCIS, FrameworkSOC2, FrameworkPCIDSS, FrameworkNIST},
	"ENC-002": {FrameworkCIS, FrameworkPCIDSS, FrameworkNIST},
}

// FrameworksFor returns the frameworks a rule maps to. Unmapped rule
// IDs fall back to Governance so no violation escapes scoring.
func FrameworksFor(ruleID string) []string {
	if fws, ok := frameworkMap[ruleID]; ok {
		return fws
	}
	return []string{FrameworkGovernance}
}

// CatalogRulesByFramework returns, per framework, the set of distinct
// catalog rules mapped to it. Compliance totals are computed from this.
func CatalogRulesByFramework() map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(AllFrameworks))
	for _, fw := range AllFrameworks {
		out[fw] = map[string]bool{}
	}
	for rule, fws := range frameworkMap {
		for _, fw := range fws {
			out[fw][rule] = true
		}
	}
	return out
}

// AllRuleIDs returns every rule ID in the catalog, unordered.
func AllRuleIDs() []string {
	ids := make([]string, 0, len(frameworkMap))
	for id := range frameworkMap {
		ids = append(ids, id)
	}
	return ids
}
