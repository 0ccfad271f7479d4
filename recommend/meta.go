// Package recommend turns violations into ranked, dollar-estimated
// remediation actions. The transform is deterministic and stateless.
package recommend

// ruleMeta carries the human-facing fields of a recommendation. Rules
// without an entry here produce no recommendation at all.
type ruleMeta struct {
	Category    string
	Title       string
	Description string
	Action      string
	Confidence  string
}

var ruleMetaTable = map[string]ruleMeta{
	"EC2-001": {
		Category:    "Compute",
		Title:       "Terminate stopped EC2 instance",
		Description: "Stopped EC2 instances still accrue EBS volume charges. If this instance has been stopped intentionally, verify it is no longer needed.",
		Action:      "Create an AMI snapshot if needed, then terminate the instance.",
		Confidence:  "HIGH",
	},
	"EC2-002": {
		Category:    "Compute",
		Title:       "Rightsize or stop idle EC2 instance",
		Description: "Instance has averaged < 5% CPU over 7 days - it is effectively idle.",
		Action:      "Stop the instance if unused, or rightsize to a smaller type within the same family.",
		Confidence:  "HIGH",
	},
	"EC2-003": {
		Category:    "Governance",
		Title:       "Apply mandatory tags to EC2 instance",
		Description: "Missing Environment, Owner, or Project tags prevent cost attribution and ownership tracking.",
		Action:      "Apply mandatory tags via AWS Console, CLI, or enforce via SCP/Config rules.",
		Confidence:  "HIGH",
	},
	"EC2-004": {
		Category:    "Governance",
		Title:       "Remove public IP from EC2 instance",
		Description: "EC2 instance has a public IP address assigned without apparent need.",
		Action:      "Review security group rules and use a load balancer or VPN instead of a direct public IP.",
		Confidence:  "MEDIUM",
	},
	"EC2-005": {
		Category:    "Compute",
		Title:       "Rightsize oversized EC2 instance",
		Description: "Instance type is one size larger than needed based on sustained low CPU utilization.",
		Action:      "Change instance type to the next smaller size in the same family (live resize for t3/m5/c5).",
		Confidence:  "HIGH",
	},
	"EC2-006": {
		Category:    "Compute",
		Title:       "Move EC2 instance to Auto Scaling Group",
		Description: "Standalone On-Demand instance has no automatic recovery or scale-in. ASGs prevent idle over-spend on low-traffic periods.",
		Action:      "Create a launch template and ASG; migrate instance. Enables Spot/Mixed capacity.",
		Confidence:  "MEDIUM",
	},
	"EC2-007": {
		Category:    "Compute",
		Title:       "Switch to Spot pricing for eligible EC2 instance",
		Description: "Instance family supports Spot pricing at 60–70% savings for stateless workloads.",
		Action:      "Convert to Spot instance or use an ASG with Spot/On-Demand capacity mix.",
		Confidence:  "MEDIUM",
	},
	"EC2-008": {
		Category:    "Compute",
		Title:       "Purchase Reserved Instance for long-running EC2",
		Description: "Instance has been running continuously as On-Demand for > 30 days.",
		Action:      "Purchase a 1-year Convertible RI via AWS Cost Explorer RI recommendations.",
		Confidence:  "MEDIUM",
	},
	"EBS-001": {
		Category:    "Storage",
		Title:       "Delete unattached EBS volume",
		Description: "Volume is not attached to any instance and accumulating charges at $0.10/GB/month.",
		Action:      "Take a final snapshot if needed, then delete the volume.",
		Confidence:  "HIGH",
	},
	"EBS-002": {
		Category:    "Governance",
		Title:       "Enable encryption on EBS volume",
		Description: "Unencrypted EBS volume violates encryption-at-rest policy.",
		Action:      "Create an encrypted snapshot and restore to a new encrypted volume.",
		Confidence:  "HIGH",
	},
	"EBS-003": {
		Category:    "Storage",
		Title:       "Migrate gp2 EBS volume to gp3",
		Description: "gp3 volumes deliver the same baseline IOPS as gp2 at ~20% lower cost.",
		Action:      "Use AWS Console or CLI to modify volume type from gp2 to gp3 (zero downtime).",
		Confidence:  "HIGH",
	},
	"S3-001": {
		Category:    "Governance",
		Title:       "Block public access on S3 bucket",
		Description: "Bucket does not have all Block Public Access settings enabled - data may be exposed.",
		Action:      "Enable all four Block Public Access settings on the bucket and at the account level.",
		Confidence:  "HIGH",
	},
	"S3-002": {
		Category:    "Storage",
		Title:       "Enable S3 versioning",
		Description: "Bucket versioning is disabled - accidental deletes or overwrites are not recoverable.",
		Action:      "Enable versioning and configure a lifecycle rule to expire old versions after 30–90 days.",
		Confidence:  "MEDIUM",
	},
	"S3-003": {
		Category:    "Storage",
		Title:       "Enable default encryption on S3 bucket",
		Description: "Bucket has no server-side encryption configured - objects are stored in plaintext.",
		Action:      "Enable SSE-S3 or SSE-KMS default encryption on the bucket.",
		Confidence:  "HIGH",
	},
	"S3-004": {
		Category:    "Storage",
		Title:       "Add S3 lifecycle policy to control storage growth",
		Description: "Bucket has no lifecycle policy - objects accumulate indefinitely at Standard tier pricing.",
		Action:      "Add a lifecycle rule to transition objects to Intelligent-Tiering or Glacier after 30+ days.",
		Confidence:  "HIGH",
	},
	"S3-005": {
		Category:    "Storage",
		Title:       "Remove or archive idle S3 bucket",
		Description: "Bucket has had no CloudWatch activity for 90+ days.",
		Action:      "Verify the bucket is unused, archive contents to Glacier if needed, then delete.",
		Confidence:  "MEDIUM",
	},
	"EIP-001": {
		Category:    "Network",
		Title:       "Release unassociated Elastic IP",
		Description: "Unassociated EIPs are billed at ~$3.60/month per address.",
		Action:      "Release the Elastic IP address if no longer needed.",
		Confidence:  "HIGH",
	},
	"SNAP-001": {
		Category:    "Storage",
		Title:       "Delete orphaned EBS snapshot",
		Description: "Snapshot is older than 30 days and has no associated AMI.",
		Action:      "Delete the snapshot if no longer required for backup or recovery.",
		Confidence:  "MEDIUM",
	},
	"LB-001": {
		Category:    "Network",
		Title:       "Review low-traffic load balancer",
		Description: "Load balancer has fewer than 10 requests/day - may be unused.",
		Action:      "Verify target group membership and delete the LB if no longer serving traffic.",
		Confidence:  "MEDIUM",
	},
	"LB-002": {
		Category:    "Network",
		Title:       "Delete orphaned load balancer (zero listeners)",
		Description: "Load balancer has no listeners - it is serving no traffic.",
		Action:      "Delete this load balancer immediately to stop fixed hourly charges.",
		Confidence:  "HIGH",
	},
	"NAT-001": {
		Category:    "Network",
		Title:       "Remove or replace low-utilization NAT Gateway",
		Description: "NAT Gateway transferred < 1 GB over 7 days - extremely low for ~$32.40/month fixed cost.",
		Action:      "Replace with VPC Endpoint (free for S3/DynamoDB) or remove if outbound internet not needed.",
		Confidence:  "HIGH",
	},
	"RDS-001": {
		Category:    "Database",
		Title:       "Stop or remove idle RDS instance",
		Description: "RDS instance had fewer than 5 connections over 7 days - likely unused.",
		Action:      "Stop the instance (saves compute cost) or take a final snapshot and delete.",
		Confidence:  "HIGH",
	},
	"RDS-002": {
		Category:    "Database",
		Title:       "Downsize over-provisioned RDS instance",
		Description: "Large RDS class running with < 20% CPU - significantly over-provisioned.",
		Action:      "Use blue/green deployment to resize to the next smaller instance class, saving ~50%.",
		Confidence:  "HIGH",
	},
	"RDS-003": {
		Category:    "Database",
		Title:       "Enable RDS storage autoscaling",
		Description: "Storage autoscaling is disabled - manual expansion required when disk fills.",
		Action:      "Set MaxAllocatedStorage on the RDS instance to enable transparent autoscaling.",
		Confidence:  "HIGH",
	},
	"LAMBDA-001": {
		Category:    "Serverless",
		Title:       "Delete or archive unused Lambda function",
		Description: "Lambda function has had 0 invocations in 30 days - likely orphaned.",
		Action:      "Confirm the function is no longer needed, then delete or archive it to remove maintenance surface.",
		Confidence:  "MEDIUM",
	},
	"LAMBDA-002": {
		Category:    "Serverless",
		Title:       "Right-size Lambda memory allocation",
		Description: "High memory allocated for a function with very short average execution duration - over-provisioned.",
		Action:      "Run AWS Lambda Power Tuning Step Functions workflow to find the optimal memory setting.",
		Confidence:  "HIGH",
	},
	"LAMBDA-003": {
		Category:    "Serverless",
		Title:       "Fix Lambda timeout configuration",
		Description: "Lambda timeout is either too high (runaway cost) or too low (causing failures).",
		Action:      "Set timeout to 3× the p99 execution duration to balance cost and reliability.",
		Confidence:  "MEDIUM",
	},
	"LAMBDA-004": {
		Category:    "Governance",
		Title:       "Add Dead Letter Queue to Lambda",
		Description: "No DLQ configured - async invocation failures are silently dropped.",
		Action:      "Create an SQS DLQ and set it as the function's dead letter configuration.",
		Confidence:  "HIGH",
	},
	"LAMBDA-005": {
		Category:    "Governance",
		Title:       "Enable X-Ray tracing on Lambda",
		Description: "Active tracing not enabled - no visibility into Lambda execution paths.",
		Action:      "Set TracingConfig.Mode = Active in the Lambda configuration.",
		Confidence:  "HIGH",
	},
	"LAMBDA-006": {
		Category:    "Governance",
		Title:       "Tag Lambda function",
		Description: "Missing mandatory tags (Environment/Owner/Project) - prevents cost allocation.",
		Action:      "Apply mandatory tags via Lambda console or IaC.",
		Confidence:  "HIGH",
	},
	"IAM-001": {
		Category:    "Security",
		Title:       "Disable or delete unused IAM user",
		Description: "IAM user has had no activity for over 90 days - violates CIS benchmark.",
		Action:      "Disable console access and deactivate access keys. Delete after 30-day review period.",
		Confidence:  "HIGH",
	},
	"IAM-002": {
		Category:    "Security",
		Title:       "Enable MFA on root account immediately",
		Description: "AWS root account lacks MFA - critical security control.",
		Action:      "Log into AWS console as root, open Security Credentials, and enable an MFA device.",
		Confidence:  "HIGH",
	},
	"IAM-003": {
		Category:    "Security",
		Title:       "Rotate IAM access key (>90 days old)",
		Description: "Access key exceeds the 90-day rotation policy - risk of compromise.",
		Action:      "Create a new key, update all systems using it, then deactivate and delete the old key.",
		Confidence:  "HIGH",
	},
	"IAM-004": {
		Category:    "Security",
		Title:       "Remove wildcard (*) IAM policy",
		Description: "User has a policy granting full Admin access (Action: *) - violates least privilege.",
		Action:      "Replace with specific action-level permissions. Use IAM Access Analyzer to generate least-privilege policy.",
		Confidence:  "HIGH",
	},
	"IAM-005": {
		Category:    "Security",
		Title:       "Stop using root account for operations",
		Description: "Root account has been used recently - it should never be used for routine tasks.",
		Action:      "Create IAM admin users/roles, enable SCPs in AWS Organizations to restrict root, lock root credentials.",
		Confidence:  "HIGH",
	},
	"IAM-006": {
		Category:    "Security",
		Title:       "Enforce MFA for console users",
		Description: "IAM user has console access but no MFA - vulnerable to credential theft.",
		Action:      "Attach an IAM policy requiring MFA (Condition: aws:MultiFactorAuthPresent = true).",
		Confidence:  "HIGH",
	},
	"CF-001": {
		Category:    "Security",
		Title:       "Attach WAF to CloudFront distribution",
		Description: "CloudFront distribution has no WAF - exposed to SQLi, XSS, L7 DDoS.",
		Action:      "Create or attach an AWS WAF Web ACL. Use AWS managed rules for coverage.",
		Confidence:  "HIGH",
	},
	"CF-002": {
		Category:    "Security",
		Title:       "Enforce HTTPS-only on CloudFront",
		Description: "Distribution allows HTTP traffic - data in transit is unencrypted.",
		Action:      "Set Viewer Protocol Policy to 'HTTPS Only' or 'Redirect HTTP to HTTPS'.",
		Confidence:  "HIGH",
	},
	"CF-003": {
		Category:    "Governance",
		Title:       "Review CloudFront geo-restriction policy",
		Description: "No geo-restriction configured - consider restricting to intended markets.",
		Action:      "Add a whitelist or blacklist of countries in the CloudFront distribution geo-restriction settings.",
		Confidence:  "LOW",
	},
	"CF-004": {
		Category:    "Cost",
		Title:       "Remove or disable idle CloudFront distribution",
		Description: "Distribution had 0 requests in 30 days - likely unused.",
		Action:      "Disable or delete the CloudFront distribution if no longer needed.",
		Confidence:  "MEDIUM",
	},
	"CF-005": {
		Category:    "Governance",
		Title:       "Enable CloudFront access logging",
		Description: "Access logs not enabled - no audit trail for requests.",
		Action:      "Configure access logs to an S3 bucket in the CloudFront distribution settings.",
		Confidence:  "HIGH",
	},
	"CW-001": {
		Category:    "Cost",
		Title:       "Set CloudWatch log group retention policy",
		Description: "Log group has no retention - logs accumulate indefinitely, increasing storage costs.",
		Action:      "Set retention to 7–90 days depending on compliance requirements.",
		Confidence:  "HIGH",
	},
	"CW-002": {
		Category:    "Governance",
		Title:       "Fix misconfigured CloudWatch alarm",
		Description: "Alarm stuck in INSUFFICIENT_DATA - metric source may be missing or misconfigured.",
		Action:      "Verify metric namespace, dimensions, and data availability. Update or delete the alarm.",
		Confidence:  "HIGH",
	},
	"CW-003": {
		Category:    "Governance",
		Title:       "Add actions to CloudWatch alarm",
		Description: "Alarm has no actions - it fires silently without notifying anyone.",
		Action:      "Add an SNS notification or Auto Scaling action to the alarm.",
		Confidence:  "HIGH",
	},
}
