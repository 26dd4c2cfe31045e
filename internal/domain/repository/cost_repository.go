package repository

import (
	"context"

	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
)

// CostRepository exposes the two cost sources: the detailed time-series query
// API (primary) and the coarse current-spend aggregate API (secondary).
type CostRepository interface {
	// GetCostAndUsage runs one grouped cost-and-usage query and returns the
	// raw rows, one per dimension per sub-period.
	GetCostAndUsage(ctx context.Context, query entity.CostQuery) ([]entity.CostUsageRow, error)

	// GetActualSpend returns the account-level actual spend from the
	// secondary source. A nil result with nil error means the source has no
	// usable figure, which callers must treat as a degradation, not a fault.
	GetActualSpend(ctx context.Context) (*entity.ActualSpend, error)
}
