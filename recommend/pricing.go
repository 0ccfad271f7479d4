package recommend

// On-demand hourly rates for us-east-1. Types not listed fall back to
// a flat estimate so savings are never silently zero for compute rules.
var ec2HourlyPricing = map[string]float64{
	"t3.micro":    0.0104,
	"t3.small":    0.0208,
	"t3.medium":   0.0416,
	"t3.large":    0.0832,
	"t3.xlarge":   0.1664,
	"t3.2xlarge":  0.3328,
	"m5.large":    0.096,
	"m5.xlarge":   0.192,
	"m5.2xlarge":  0.384,
	"m5.4xlarge":  0.768,
	"m6i.large":   0.096,
	"m6i.xlarge":  0.192,
	"m6i.2xlarge": 0.384,
	"c5.large":    0.085,
	"c5.xlarge":   0.17,
	"c5.2xlarge":  0.34,
	"c5.4xlarge":  0.68,
	"c6i.large":   0.085,
	"c6i.xlarge":  0.17,
	"c6i.2xlarge": 0.34,
	"r5.large":    0.126,
	"r5.xlarge":   0.252,
	"r5.2xlarge":  0.504,
	"r5.4xlarge":  1.008,
	"r6i.large":   0.126,
	"r6i.xlarge":  0.252,
}

const (
	fallbackHourly = 0.10
	hoursPerMonth  = 730
)

func ec2Hourly(instanceType string) float64 {
	if p, ok := ec2HourlyPricing[instanceType]; ok {
		return p
	}
	return fallbackHourly
}

func ec2Monthly(instanceType string) float64 {
	return ec2Hourly(instanceType) * hoursPerMonth
}
