package repository

import (
	"context"

	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
)

// SecurityRepository exposes the read-only scans behind security assessment
// and encryption checks.
type SecurityRepository interface {
	// GetOpenSecurityGroups returns findings for security groups with
	// world-open ingress rules.
	GetOpenSecurityGroups(ctx context.Context, region string) ([]entity.SecurityFinding, error)

	// GetPublicBuckets returns findings for S3 buckets without full public
	// access blocks.
	GetPublicBuckets(ctx context.Context) ([]entity.SecurityFinding, error)

	// GetIAMFindings runs the extra account-level checks of a comprehensive
	// assessment.
	GetIAMFindings(ctx context.Context) ([]entity.SecurityFinding, error)

	GetS3Encryption(ctx context.Context) ([]entity.EncryptionStatus, error)
	GetEBSEncryption(ctx context.Context, region string) ([]entity.EncryptionStatus, error)
	GetRDSEncryption(ctx context.Context, region string) ([]entity.EncryptionStatus, error)
}
