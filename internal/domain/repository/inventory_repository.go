package repository

import (
	"context"

	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
)

// InventoryRepository exposes the per-resource-type inventory and describe
// APIs plus the utilization metrics an idle scan needs.
type InventoryRepository interface {
	GetEC2Instances(ctx context.Context, region string, runningOnly bool) ([]entity.Resource, error)
	GetS3Buckets(ctx context.Context) ([]entity.Resource, error)
	GetRDSInstances(ctx context.Context, region string) ([]entity.Resource, error)
	GetLambdaFunctions(ctx context.Context, region string) ([]entity.Resource, error)

	DescribeResource(ctx context.Context, resourceType, resourceID, region string) (map[string]any, error)

	GetInstanceStatuses(ctx context.Context, region string) ([]entity.InstanceHealth, error)
	GetInstanceMetrics(ctx context.Context, region, instanceID string, days int) (entity.InstanceMetrics, error)

	GetIdleLoadBalancers(ctx context.Context, region string) ([]entity.IdleLoadBalancer, error)
	GetUnretainedLogGroups(ctx context.Context, region string) ([]entity.UnretainedLogGroup, error)
}
