package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/dzecena/aws-ai-concierge/internal/application/audit"
	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
	"github.com/dzecena/aws-ai-concierge/internal/domain/repository"
)

// SecurityUseCase runs read-only security posture and encryption checks.
type SecurityUseCase struct {
	secRepo  repository.SecurityRepository
	recorder *audit.Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

func NewSecurityUseCase(secRepo repository.SecurityRepository, recorder *audit.Recorder, logger zerolog.Logger) *SecurityUseCase {
	return &SecurityUseCase{
		secRepo:  secRepo,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (uc *SecurityUseCase) WithClock(now func() time.Time) *SecurityUseCase {
	uc.now = now
	return uc
}

// GetSecurityAssessment scans for common misconfigurations. BASIC covers
// security groups and public buckets; COMPREHENSIVE adds account-level IAM
// checks.
func (uc *SecurityUseCase) GetSecurityAssessment(ctx context.Context, params entity.Params, requestID string) (any, error) {
	assessmentType, err := params.Enum("assessment_type", "BASIC", "BASIC", "COMPREHENSIVE")
	if err != nil {
		return nil, err
	}
	region := params.String("region", "us-east-1")

	var findings []entity.SecurityFinding

	sgFindings, err := uc.secRepo.GetOpenSecurityGroups(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("scanning security groups: %w", err)
	}
	findings = append(findings, sgFindings...)

	bucketFindings, err := uc.secRepo.GetPublicBuckets(ctx)
	if err != nil {
		uc.logger.Warn().Str("request_id", requestID).Err(err).Msg("public bucket scan failed")
	} else {
		findings = append(findings, bucketFindings...)
	}

	if assessmentType == "COMPREHENSIVE" {
		iamFindings, ierr := uc.secRepo.GetIAMFindings(ctx)
		if ierr != nil {
			uc.logger.Warn().Str("request_id", requestID).Err(ierr).Msg("IAM checks failed")
		} else {
			findings = append(findings, iamFindings...)
		}
	}

	score := riskScore(findings)
	uc.recorder.SecurityCheck(requestID, assessmentType, region, len(findings), score)

	return entity.SecurityAssessment{
		Region:          region,
		AssessmentType:  assessmentType,
		Findings:        findings,
		TotalFindings:   len(findings),
		RiskScore:       score,
		Recommendations: securityRecommendations(findings),
		AssessmentDate:  uc.now().UTC().Format(time.RFC3339),
	}, nil
}

// riskScore weighs findings by severity and caps the result at 100.
func riskScore(findings []entity.SecurityFinding) int {
	score := 0
	for _, f := range findings {
		switch f.Severity {
		case entity.SeverityHigh:
			score += 25
		case entity.SeverityMedium:
			score += 10
		default:
			score += 3
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}

func securityRecommendations(findings []entity.SecurityFinding) []string {
	var recs []string

	if len(findings) == 0 {
		return []string{"No security issues found in the scanned areas"}
	}

	high := lo.CountBy(findings, func(f entity.SecurityFinding) bool { return f.Severity == entity.SeverityHigh })
	if high > 0 {
		recs = append(recs, fmt.Sprintf("Address %d high-severity findings first", high))
	}
	if lo.SomeBy(findings, func(f entity.SecurityFinding) bool { return f.ResourceType == "SecurityGroup" }) {
		recs = append(recs, "Restrict world-open security group rules to known CIDR ranges")
	}
	if lo.SomeBy(findings, func(f entity.SecurityFinding) bool { return f.ResourceType == "S3Bucket" }) {
		recs = append(recs, "Enable public access blocks on all S3 buckets unless public access is intended")
	}
	recs = append(recs, "Re-run the assessment after remediation to verify the risk score drops")
	return recs
}

// CheckEncryptionStatus reports at-rest encryption for S3, EBS, RDS or all
// three, with an overall compliance percentage.
func (uc *SecurityUseCase) CheckEncryptionStatus(ctx context.Context, params entity.Params, requestID string) (any, error) {
	resourceType, err := params.Enum("resource_type", "ALL", "S3", "EBS", "RDS", "ALL")
	if err != nil {
		return nil, err
	}
	region := params.String("region", "us-east-1")

	var statuses []entity.EncryptionStatus
	types := []string{resourceType}
	if resourceType == "ALL" {
		types = []string{"S3", "EBS", "RDS"}
	}

	for _, t := range types {
		batch, cerr := uc.checkByType(ctx, t, region)
		if cerr != nil {
			if resourceType == "ALL" {
				uc.logger.Warn().Str("request_id", requestID).Str("resource_type", t).Err(cerr).Msg("encryption check for type failed")
				continue
			}
			return nil, cerr
		}
		statuses = append(statuses, batch...)
	}

	encrypted := lo.CountBy(statuses, func(s entity.EncryptionStatus) bool { return s.Encrypted })
	compliance := 100.0
	if len(statuses) > 0 {
		compliance = roundTo2(float64(encrypted) / float64(len(statuses)) * 100)
	}

	uc.recorder.SecurityCheck(requestID, "ENCRYPTION_"+resourceType, region, len(statuses)-encrypted, 0)

	return entity.EncryptionReport{
		ResourceType:         resourceType,
		Region:               region,
		Resources:            statuses,
		TotalResources:       len(statuses),
		EncryptedCount:       encrypted,
		CompliancePercentage: compliance,
		CheckedAt:            uc.now().UTC().Format(time.RFC3339),
	}, nil
}

func (uc *SecurityUseCase) checkByType(ctx context.Context, resourceType, region string) ([]entity.EncryptionStatus, error) {
	switch resourceType {
	case "S3":
		return uc.secRepo.GetS3Encryption(ctx)
	case "EBS":
		return uc.secRepo.GetEBSEncryption(ctx, region)
	case "RDS":
		return uc.secRepo.GetRDSEncryption(ctx, region)
	default:
		return nil, fmt.Errorf("unsupported resource type %q", resourceType)
	}
}
