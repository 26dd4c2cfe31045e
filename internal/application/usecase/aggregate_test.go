package usecase

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
)

func testPeriod(t *testing.T) entity.ResolvedPeriod {
	t.Helper()
	return entity.ResolvedPeriod{
		Start:       time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2025, time.October, 16, 0, 0, 0, 0, time.UTC),
		Label:       "MONTHLY",
		Granularity: entity.GranularityDaily,
	}
}

func row(periodStart, dimension string, amount float64) entity.CostUsageRow {
	return entity.CostUsageRow{
		PeriodStart: periodStart,
		Dimension:   dimension,
		Amount:      decimal.NewFromFloat(amount),
		Usage:       decimal.NewFromFloat(1),
		Unit:        "Hrs",
	}
}

func TestAggregateCostRows(t *testing.T) {
	rows := []entity.CostUsageRow{
		row("2025-10-01", "Amazon Elastic Compute Cloud - Compute", 40),
		row("2025-10-02", "Amazon Elastic Compute Cloud - Compute", 35),
		row("2025-10-01", "Amazon Simple Storage Service", 15),
		row("2025-10-02", "Amazon Simple Storage Service", 10),
	}

	result := aggregateCostRows(rows, testPeriod(t), "SERVICE", time.Now())

	assert.Equal(t, 100.0, result.TotalCost)
	assert.Equal(t, "USD", result.Currency)
	assert.Equal(t, entity.CostSourcePrimary, result.Source)
	require.Len(t, result.Breakdown, 2)

	// Sorted by cost descending.
	assert.Equal(t, "Amazon Elastic Compute Cloud - Compute", result.Breakdown[0].ServiceName)
	assert.Equal(t, 75.0, result.Breakdown[0].Cost)
	assert.Equal(t, 75.0, result.Breakdown[0].Percentage)
	assert.Equal(t, 25.0, result.Breakdown[1].Percentage)
	assert.Equal(t, 2, result.TotalServices)

	require.Len(t, result.DailyCosts, 2)
	assert.Equal(t, "2025-10-01", result.DailyCosts[0].Date)
	assert.Equal(t, 55.0, result.DailyCosts[0].Cost)
	assert.Equal(t, 45.0, result.DailyCosts[1].Cost)
}

func TestAggregateCostRowsPercentagesSumToHundred(t *testing.T) {
	rows := []entity.CostUsageRow{
		row("2025-10-01", "A", 33.33),
		row("2025-10-01", "B", 33.33),
		row("2025-10-01", "C", 33.34),
	}

	result := aggregateCostRows(rows, testPeriod(t), "SERVICE", time.Now())

	var sum float64
	for _, item := range result.Breakdown {
		sum += item.Percentage
	}
	assert.InDelta(t, 100.0, sum, 0.5)
}

func TestAggregateCostRowsTieBreakIsDeterministic(t *testing.T) {
	rows := []entity.CostUsageRow{
		row("2025-10-01", "Zeta Service", 10),
		row("2025-10-01", "Alpha Service", 10),
	}

	result := aggregateCostRows(rows, testPeriod(t), "SERVICE", time.Now())

	require.Len(t, result.Breakdown, 2)
	assert.Equal(t, "Alpha Service", result.Breakdown[0].ServiceName)
	assert.Equal(t, "Zeta Service", result.Breakdown[1].ServiceName)
}

func TestAggregateCostRowsEmpty(t *testing.T) {
	result := aggregateCostRows(nil, testPeriod(t), "SERVICE", time.Now())

	assert.Zero(t, result.TotalCost)
	assert.Empty(t, result.Breakdown)
	assert.Equal(t, "insufficient_data", result.CostTrend.Trend)
	assert.Equal(t, []string{"No cost data available for analysis"}, result.OptimizationInsights)
}

func TestCostTrend(t *testing.T) {
	tests := []struct {
		name  string
		daily []entity.DailyCost
		want  string
	}{
		{
			name:  "single period",
			daily: []entity.DailyCost{{Date: "2025-10-01", Cost: 10}},
			want:  "insufficient_data",
		},
		{
			name: "zero baseline",
			daily: []entity.DailyCost{
				{Date: "2025-10-01", Cost: 0},
				{Date: "2025-10-02", Cost: 5},
			},
			want: "no_baseline",
		},
		{
			name: "increasing",
			daily: []entity.DailyCost{
				{Date: "2025-10-01", Cost: 10},
				{Date: "2025-10-02", Cost: 12},
			},
			want: "increasing",
		},
		{
			name: "decreasing",
			daily: []entity.DailyCost{
				{Date: "2025-10-01", Cost: 10},
				{Date: "2025-10-02", Cost: 8},
			},
			want: "decreasing",
		},
		{
			name: "stable within ten percent",
			daily: []entity.DailyCost{
				{Date: "2025-10-01", Cost: 10},
				{Date: "2025-10-02", Cost: 10.5},
			},
			want: "stable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, costTrend(tt.daily).Trend)
		})
	}
}

func TestCostInsightsConcentration(t *testing.T) {
	breakdown := []entity.CostLineItem{
		{ServiceName: "Amazon Elastic Compute Cloud - Compute", Cost: 80, Percentage: 80},
		{ServiceName: "Amazon Simple Storage Service", Cost: 20, Percentage: 20},
	}

	insights := costInsights(breakdown, decimal.NewFromInt(100))

	assert.Contains(t, insights[0], "80.0% of your costs")
	assert.Contains(t, insights, "EC2 is a significant cost driver - consider Reserved Instances or Spot Instances for savings")
}
