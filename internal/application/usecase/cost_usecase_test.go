package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dzecena/aws-ai-concierge/internal/application/audit"
	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
	"github.com/dzecena/aws-ai-concierge/internal/shared/types"
)

type fakeCostRepo struct {
	rows        []entity.CostUsageRow
	rowsErr     error
	spend       *entity.ActualSpend
	spendErr    error
	usageCalls  int
	spendCalls  int
	lastQuery   entity.CostQuery
}

func (f *fakeCostRepo) GetCostAndUsage(_ context.Context, q entity.CostQuery) ([]entity.CostUsageRow, error) {
	f.usageCalls++
	f.lastQuery = q
	return f.rows, f.rowsErr
}

func (f *fakeCostRepo) GetActualSpend(context.Context) (*entity.ActualSpend, error) {
	f.spendCalls++
	return f.spend, f.spendErr
}

func newTestCostUseCase(costRepo *fakeCostRepo, invRepo *fakeInventoryRepo) *CostUseCase {
	recorder := audit.NewRecorder(zerolog.Nop())
	return NewCostUseCase(costRepo, invRepo, recorder, zerolog.Nop()).
		WithClock(func() time.Time { return time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC) })
}

func TestGetCostAnalysisPrimary(t *testing.T) {
	costRepo := &fakeCostRepo{
		rows: []entity.CostUsageRow{
			{PeriodStart: "2025-10-01", Dimension: "Amazon Simple Storage Service", Amount: decimal.NewFromFloat(12.50)},
			{PeriodStart: "2025-10-02", Dimension: "Amazon Simple Storage Service", Amount: decimal.NewFromFloat(13.00)},
		},
	}
	uc := newTestCostUseCase(costRepo, nil)

	out, err := uc.GetCostAnalysis(context.Background(), entity.Params{"time_period": "MONTHLY"}, "req-1")
	require.NoError(t, err)

	result, ok := out.(entity.CostResult)
	require.True(t, ok)
	assert.Equal(t, 25.50, result.TotalCost)
	assert.Equal(t, entity.CostSourcePrimary, result.Source)
	assert.Equal(t, "2025-10-01", result.StartDate)
	assert.Equal(t, "2025-10-16", result.EndDate)

	// Positive primary total short-circuits the secondary source.
	assert.Zero(t, costRepo.spendCalls)
}

func TestGetCostAnalysisFallbackToBudget(t *testing.T) {
	costRepo := &fakeCostRepo{
		spend: &entity.ActualSpend{
			Amount:   decimal.NewFromFloat(1.15),
			Currency: "USD",
			Budget:   "monthly-budget",
		},
	}
	uc := newTestCostUseCase(costRepo, nil)

	out, err := uc.GetCostAnalysis(context.Background(), entity.Params{"time_period": "MONTHLY"}, "req-2")
	require.NoError(t, err)

	result := out.(entity.CostResult)
	assert.Equal(t, entity.CostSourceFallback, result.Source)
	assert.Equal(t, 1.15, result.TotalCost)
	assert.Equal(t, "TOTAL", result.GroupBy)
	assert.Equal(t, "MONTHLY", result.TimePeriod)
	assert.Equal(t, "2025-10-01", result.StartDate)

	require.Len(t, result.Breakdown, 1)
	assert.Equal(t, "Total (from Budget)", result.Breakdown[0].ServiceName)
	assert.Equal(t, 100.0, result.Breakdown[0].Percentage)
	assert.Contains(t, result.Breakdown[0].Note, "detailed breakdown not available")
	assert.Equal(t, 1, costRepo.spendCalls)
}

func TestGetCostAnalysisUnavailable(t *testing.T) {
	uc := newTestCostUseCase(&fakeCostRepo{}, nil)

	out, err := uc.GetCostAnalysis(context.Background(), entity.Params{"time_period": "MONTHLY"}, "req-3")
	require.NoError(t, err)

	result := out.(entity.CostResult)
	assert.Equal(t, entity.CostSourceUnavailable, result.Source)
	assert.Zero(t, result.TotalCost)
	assert.NotEmpty(t, result.Message)
	assert.NotEmpty(t, result.Suggestion)
}

func TestGetCostAnalysisSecondarySourceFaultIsNotFatal(t *testing.T) {
	costRepo := &fakeCostRepo{spendErr: assert.AnError}
	uc := newTestCostUseCase(costRepo, nil)

	out, err := uc.GetCostAnalysis(context.Background(), entity.Params{"time_period": "MONTHLY"}, "req-4")
	require.NoError(t, err)

	result := out.(entity.CostResult)
	assert.Equal(t, entity.CostSourceUnavailable, result.Source)
}

func TestGetCostAnalysisFutureDateSkipsExternalCalls(t *testing.T) {
	costRepo := &fakeCostRepo{}
	uc := newTestCostUseCase(costRepo, nil)

	out, err := uc.GetCostAnalysis(context.Background(), entity.Params{"time_period": "december 2026"}, "req-5")
	require.NoError(t, err)

	result := out.(entity.CostResult)
	assert.Equal(t, "future_date", result.ErrorType)
	assert.Contains(t, result.Message, "future")
	assert.Zero(t, costRepo.usageCalls)
	assert.Zero(t, costRepo.spendCalls)
}

func TestGetCostAnalysisYearlyForcesMonthlyGranularity(t *testing.T) {
	costRepo := &fakeCostRepo{
		rows: []entity.CostUsageRow{
			{PeriodStart: "2025-01-01", Dimension: "AWS Lambda", Amount: decimal.NewFromFloat(4)},
		},
	}
	uc := newTestCostUseCase(costRepo, nil)

	_, err := uc.GetCostAnalysis(context.Background(), entity.Params{"time_period": "YEARLY", "granularity": "DAILY"}, "req-6")
	require.NoError(t, err)
	assert.Equal(t, entity.GranularityMonthly, costRepo.lastQuery.Granularity)
}

func TestGetCostAnalysisRejectsInvalidGroupBy(t *testing.T) {
	uc := newTestCostUseCase(&fakeCostRepo{}, nil)

	_, err := uc.GetCostAnalysis(context.Background(), entity.Params{"group_by": "TEAM"}, "req-7")

	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "group_by", verr.Key)
}
