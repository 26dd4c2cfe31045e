package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dzecena/aws-ai-concierge/internal/application/audit"
	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
	"github.com/dzecena/aws-ai-concierge/internal/domain/repository"
)

// InventoryUseCase answers questions about what exists in the account:
// resource listings, per-resource detail, and instance health.
type InventoryUseCase struct {
	invRepo  repository.InventoryRepository
	recorder *audit.Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

func NewInventoryUseCase(invRepo repository.InventoryRepository, recorder *audit.Recorder, logger zerolog.Logger) *InventoryUseCase {
	return &InventoryUseCase{
		invRepo:  invRepo,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (uc *InventoryUseCase) WithClock(now func() time.Time) *InventoryUseCase {
	uc.now = now
	return uc
}

// GetResourceInventory lists resources of one type, or of every supported
// type when resource_type is ALL.
func (uc *InventoryUseCase) GetResourceInventory(ctx context.Context, params entity.Params, requestID string) (any, error) {
	resourceType, err := params.Enum("resource_type", "ALL", "EC2", "S3", "RDS", "LAMBDA", "ALL")
	if err != nil {
		return nil, err
	}
	region := params.String("region", "us-east-1")

	var resources []entity.Resource
	types := []string{resourceType}
	if resourceType == "ALL" {
		types = []string{"EC2", "S3", "RDS", "LAMBDA"}
	}

	for _, t := range types {
		batch, lerr := uc.listByType(ctx, t, region)
		if lerr != nil {
			// A single failing service should not sink the whole inventory
			// when scanning everything.
			if resourceType == "ALL" {
				uc.logger.Warn().Str("request_id", requestID).Str("resource_type", t).Err(lerr).Msg("inventory scan for type failed")
				continue
			}
			return nil, lerr
		}
		resources = append(resources, batch...)
	}

	uc.recorder.ResourceAccess(requestID, resourceType, len(resources), []string{region})

	return entity.ResourceInventory{
		ResourceType:  resourceType,
		Region:        region,
		Resources:     resources,
		TotalCount:    len(resources),
		InventoryDate: uc.now().UTC().Format(time.RFC3339),
	}, nil
}

func (uc *InventoryUseCase) listByType(ctx context.Context, resourceType, region string) ([]entity.Resource, error) {
	switch resourceType {
	case "EC2":
		return uc.invRepo.GetEC2Instances(ctx, region, false)
	case "S3":
		return uc.invRepo.GetS3Buckets(ctx)
	case "RDS":
		return uc.invRepo.GetRDSInstances(ctx, region)
	case "LAMBDA":
		return uc.invRepo.GetLambdaFunctions(ctx, region)
	default:
		return nil, fmt.Errorf("unsupported resource type %q", resourceType)
	}
}

// GetResourceDetails describes a single resource. Both the identifier and the
// type are required since identifiers are only unique per service.
func (uc *InventoryUseCase) GetResourceDetails(ctx context.Context, params entity.Params, requestID string) (any, error) {
	resourceID, err := params.RequireString("resource_id")
	if err != nil {
		return nil, err
	}
	resourceType, err := params.RequireString("resource_type")
	if err != nil {
		return nil, err
	}
	resourceType = strings.ToUpper(resourceType)
	region := params.String("region", "us-east-1")

	details, err := uc.invRepo.DescribeResource(ctx, resourceType, resourceID, region)
	if err != nil {
		return nil, fmt.Errorf("describing %s %s: %w", resourceType, resourceID, err)
	}

	uc.recorder.ResourceAccess(requestID, resourceType, 1, []string{region})

	return entity.ResourceDetails{
		ResourceID:   resourceID,
		ResourceType: resourceType,
		Region:       region,
		Details:      details,
		RetrievedAt:  uc.now().UTC().Format(time.RFC3339),
	}, nil
}

// GetResourceHealth reports EC2 instance status checks combined with recent
// CPU utilization for a region.
func (uc *InventoryUseCase) GetResourceHealth(ctx context.Context, params entity.Params, requestID string) (any, error) {
	region := params.String("region", "us-east-1")

	statuses, err := uc.invRepo.GetInstanceStatuses(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("checking instance statuses: %w", err)
	}

	instances := make([]entity.InstanceHealth, 0, len(statuses))
	healthy := 0
	for _, st := range statuses {
		metrics, merr := uc.invRepo.GetInstanceMetrics(ctx, region, st.InstanceID, 1)
		if merr == nil && metrics.AvgCPU != nil {
			st.AvgCPUPercent = roundTo2(*metrics.AvgCPU)
		}
		st.Healthy = st.State == "running" && st.SystemStatus == "ok" && st.InstanceStatus == "ok"
		if st.Healthy {
			healthy++
		}
		instances = append(instances, st)
	}

	uc.recorder.ResourceAccess(requestID, "EC2", len(instances), []string{region})

	return entity.ResourceHealthReport{
		Region:         region,
		Instances:      instances,
		TotalInstances: len(instances),
		HealthyCount:   healthy,
		CheckedAt:      uc.now().UTC().Format(time.RFC3339),
	}, nil
}
