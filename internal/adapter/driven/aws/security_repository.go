package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dzecena/aws-ai-concierge/internal/application/audit"
	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
	"github.com/dzecena/aws-ai-concierge/internal/domain/repository"
)

// Ports whose world-open exposure is an immediate high-severity finding.
var sensitivePorts = map[int32]string{
	22:   "SSH",
	3389: "RDP",
	3306: "MySQL",
	5432: "PostgreSQL",
	1433: "SQL Server",
}

// SecurityRepositoryImpl runs the read-only scans behind security assessment
// and encryption checks.
type SecurityRepositoryImpl struct {
	clients  *ClientFactory
	recorder *audit.Recorder
}

func NewSecurityRepository(clients *ClientFactory, recorder *audit.Recorder) repository.SecurityRepository {
	return &SecurityRepositoryImpl{clients: clients, recorder: recorder}
}

func (r *SecurityRepositoryImpl) record(ctx context.Context, service, operation, region string, err error) {
	requestID := audit.RequestIDFromContext(ctx)
	r.recorder.ExternalCall(requestID, service, operation, region, err == nil, awsErrorCode(err))
}

// GetOpenSecurityGroups flags security groups with ingress rules open to the
// whole internet.
func (r *SecurityRepositoryImpl) GetOpenSecurityGroups(ctx context.Context, region string) ([]entity.SecurityFinding, error) {
	client, err := r.clients.getServiceClient(ctx, region, "ec2")
	if err != nil {
		return nil, err
	}
	ec2Client := client.(*ec2.Client)

	var findings []entity.SecurityFinding
	paginator := ec2.NewDescribeSecurityGroupsPaginator(ec2Client, &ec2.DescribeSecurityGroupsInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		r.record(ctx, "EC2", "DescribeSecurityGroups", region, err)
		if err != nil {
			return nil, fmt.Errorf("scanning security groups in %s: %w", region, err)
		}

		for _, sg := range output.SecurityGroups {
			for _, perm := range sg.IpPermissions {
				open := false
				for _, ipRange := range perm.IpRanges {
					if aws.ToString(ipRange.CidrIp) == "0.0.0.0/0" {
						open = true
						break
					}
				}
				if !open {
					continue
				}

				severity := entity.SeverityMedium
				portDesc := "all ports"
				if perm.FromPort != nil {
					portDesc = fmt.Sprintf("port %d", *perm.FromPort)
					if service, sensitive := sensitivePorts[*perm.FromPort]; sensitive {
						severity = entity.SeverityHigh
						portDesc = fmt.Sprintf("%s (port %d)", service, *perm.FromPort)
					}
				} else {
					// An unrestricted protocol rule exposes everything.
					severity = entity.SeverityHigh
				}

				findings = append(findings, entity.SecurityFinding{
					Title:          fmt.Sprintf("Security group %s allows %s from anywhere", aws.ToString(sg.GroupId), portDesc),
					Severity:       severity,
					ResourceID:     aws.ToString(sg.GroupId),
					ResourceType:   "SecurityGroup",
					Description:    fmt.Sprintf("Ingress rule permits 0.0.0.0/0 on %s", portDesc),
					Recommendation: "Restrict the source CIDR to known networks or use a bastion/VPN",
				})
			}
		}
	}
	return findings, nil
}

// GetPublicBuckets flags buckets without a full public access block.
func (r *SecurityRepositoryImpl) GetPublicBuckets(ctx context.Context) ([]entity.SecurityFinding, error) {
	client, err := r.clients.getServiceClient(ctx, "", "s3")
	if err != nil {
		return nil, err
	}
	s3Client := client.(*s3.Client)

	output, err := s3Client.ListBuckets(ctx, &s3.ListBucketsInput{})
	r.record(ctx, "S3", "ListBuckets", "global", err)
	if err != nil {
		return nil, fmt.Errorf("listing buckets for public access scan: %w", err)
	}

	var findings []entity.SecurityFinding
	for _, bucket := range output.Buckets {
		name := aws.ToString(bucket.Name)

		pab, perr := s3Client.GetPublicAccessBlock(ctx, &s3.GetPublicAccessBlockInput{Bucket: aws.String(name)})
		if perr != nil {
			// NoSuchPublicAccessBlockConfiguration means nothing blocks
			// public access on this bucket.
			findings = append(findings, entity.SecurityFinding{
				Title:          fmt.Sprintf("Bucket %s has no public access block", name),
				Severity:       entity.SeverityHigh,
				ResourceID:     name,
				ResourceType:   "S3Bucket",
				Description:    "No public access block configuration exists for this bucket",
				Recommendation: "Enable all four public access block settings unless public access is intended",
			})
			continue
		}

		cfg := pab.PublicAccessBlockConfiguration
		if cfg == nil {
			continue
		}
		if !aws.ToBool(cfg.BlockPublicAcls) || !aws.ToBool(cfg.BlockPublicPolicy) ||
			!aws.ToBool(cfg.IgnorePublicAcls) || !aws.ToBool(cfg.RestrictPublicBuckets) {
			findings = append(findings, entity.SecurityFinding{
				Title:          fmt.Sprintf("Bucket %s has an incomplete public access block", name),
				Severity:       entity.SeverityMedium,
				ResourceID:     name,
				ResourceType:   "S3Bucket",
				Description:    "One or more public access block settings are disabled",
				Recommendation: "Enable all four public access block settings unless public access is intended",
			})
		}
	}
	return findings, nil
}

// GetIAMFindings runs the account-level checks added by a comprehensive
// assessment.
func (r *SecurityRepositoryImpl) GetIAMFindings(ctx context.Context) ([]entity.SecurityFinding, error) {
	client, err := r.clients.getServiceClient(ctx, "", "ec2")
	if err != nil {
		return nil, err
	}
	ec2Client := client.(*ec2.Client)

	var findings []entity.SecurityFinding

	ebsDefault, err := ec2Client.GetEbsEncryptionByDefault(ctx, &ec2.GetEbsEncryptionByDefaultInput{})
	r.record(ctx, "EC2", "GetEbsEncryptionByDefault", "", err)
	if err == nil && !aws.ToBool(ebsDefault.EbsEncryptionByDefault) {
		findings = append(findings, entity.SecurityFinding{
			Title:          "EBS encryption by default is disabled",
			Severity:       entity.SeverityMedium,
			ResourceID:     "account",
			ResourceType:   "Account",
			Description:    "New EBS volumes are created unencrypted unless explicitly requested",
			Recommendation: "Enable EBS encryption by default in every region in use",
		})
	}

	snapshots, err := ec2Client.DescribeSnapshots(ctx, &ec2.DescribeSnapshotsInput{
		RestorableByUserIds: []string{"all"},
		OwnerIds:            []string{"self"},
	})
	r.record(ctx, "EC2", "DescribeSnapshots", "", err)
	if err == nil {
		for _, snap := range snapshots.Snapshots {
			findings = append(findings, entity.SecurityFinding{
				Title:          fmt.Sprintf("Snapshot %s is publicly restorable", aws.ToString(snap.SnapshotId)),
				Severity:       entity.SeverityHigh,
				ResourceID:     aws.ToString(snap.SnapshotId),
				ResourceType:   "EBSSnapshot",
				Description:    "This snapshot can be copied by any AWS account",
				Recommendation: "Remove the public restore permission from the snapshot",
			})
		}
	}

	return findings, nil
}

// GetS3Encryption reports default encryption for every bucket.
func (r *SecurityRepositoryImpl) GetS3Encryption(ctx context.Context) ([]entity.EncryptionStatus, error) {
	client, err := r.clients.getServiceClient(ctx, "", "s3")
	if err != nil {
		return nil, err
	}
	s3Client := client.(*s3.Client)

	output, err := s3Client.ListBuckets(ctx, &s3.ListBucketsInput{})
	r.record(ctx, "S3", "ListBuckets", "global", err)
	if err != nil {
		return nil, fmt.Errorf("listing buckets for encryption check: %w", err)
	}

	statuses := make([]entity.EncryptionStatus, 0, len(output.Buckets))
	for _, bucket := range output.Buckets {
		name := aws.ToString(bucket.Name)
		status := entity.EncryptionStatus{ResourceID: name, ResourceType: "S3"}

		enc, eerr := s3Client.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{Bucket: aws.String(name)})
		if eerr != nil {
			status.Detail = "no default encryption configuration"
		} else if enc.ServerSideEncryptionConfiguration != nil && len(enc.ServerSideEncryptionConfiguration.Rules) > 0 {
			rule := enc.ServerSideEncryptionConfiguration.Rules[0]
			status.Encrypted = true
			if rule.ApplyServerSideEncryptionByDefault != nil {
				status.Detail = string(rule.ApplyServerSideEncryptionByDefault.SSEAlgorithm)
				status.KMSKeyID = aws.ToString(rule.ApplyServerSideEncryptionByDefault.KMSMasterKeyID)
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// GetEBSEncryption reports encryption for every volume in a region.
func (r *SecurityRepositoryImpl) GetEBSEncryption(ctx context.Context, region string) ([]entity.EncryptionStatus, error) {
	client, err := r.clients.getServiceClient(ctx, region, "ec2")
	if err != nil {
		return nil, err
	}
	ec2Client := client.(*ec2.Client)

	var statuses []entity.EncryptionStatus
	paginator := ec2.NewDescribeVolumesPaginator(ec2Client, &ec2.DescribeVolumesInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		r.record(ctx, "EC2", "DescribeVolumes", region, err)
		if err != nil {
			return nil, fmt.Errorf("listing volumes in %s: %w", region, err)
		}
		for _, vol := range output.Volumes {
			statuses = append(statuses, entity.EncryptionStatus{
				ResourceID:   aws.ToString(vol.VolumeId),
				ResourceType: "EBS",
				Encrypted:    aws.ToBool(vol.Encrypted),
				KMSKeyID:     aws.ToString(vol.KmsKeyId),
			})
		}
	}
	return statuses, nil
}

// GetRDSEncryption reports storage encryption for every database instance in
// a region.
func (r *SecurityRepositoryImpl) GetRDSEncryption(ctx context.Context, region string) ([]entity.EncryptionStatus, error) {
	client, err := r.clients.getServiceClient(ctx, region, "rds")
	if err != nil {
		return nil, err
	}
	rdsClient := client.(*rds.Client)

	var statuses []entity.EncryptionStatus
	paginator := rds.NewDescribeDBInstancesPaginator(rdsClient, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		r.record(ctx, "RDS", "DescribeDBInstances", region, err)
		if err != nil {
			return nil, fmt.Errorf("listing databases in %s: %w", region, err)
		}
		for _, db := range output.DBInstances {
			statuses = append(statuses, entity.EncryptionStatus{
				ResourceID:   aws.ToString(db.DBInstanceIdentifier),
				ResourceType: "RDS",
				Encrypted:    aws.ToBool(db.StorageEncrypted),
				KMSKeyID:     aws.ToString(db.KmsKeyId),
			})
		}
	}
	return statuses, nil
}
