package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
)

type dimensionTotal struct {
	key    string
	amount decimal.Decimal
	usage  decimal.Decimal
	unit   string
}

// aggregateCostRows folds raw grouped cost rows into the breakdown, trend and
// insights of a CostResult. Amount arithmetic stays in decimal until the wire
// conversion at the end.
func aggregateCostRows(rows []entity.CostUsageRow, p entity.ResolvedPeriod, groupBy string, now time.Time) entity.CostResult {
	totals := map[string]*dimensionTotal{}
	periodTotals := map[string]decimal.Decimal{}
	total := decimal.Zero

	for _, row := range rows {
		dt, ok := totals[row.Dimension]
		if !ok {
			dt = &dimensionTotal{key: row.Dimension, unit: row.Unit}
			totals[row.Dimension] = dt
		}
		dt.amount = dt.amount.Add(row.Amount)
		dt.usage = dt.usage.Add(row.Usage)
		total = total.Add(row.Amount)
		periodTotals[row.PeriodStart] = periodTotals[row.PeriodStart].Add(row.Amount)
	}

	breakdown := make([]entity.CostLineItem, 0, len(totals))
	for _, dt := range totals {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = dt.amount.Div(total).Mul(decimal.NewFromInt(100))
		}
		breakdown = append(breakdown, entity.CostLineItem{
			ServiceName:   dt.key,
			Cost:          dt.amount.Round(2).InexactFloat64(),
			UsageQuantity: dt.usage.Round(2).InexactFloat64(),
			UsageUnit:     dt.unit,
			Percentage:    pct.Round(2).InexactFloat64(),
		})
	}

	// Amount descending; ties broken by dimension key for determinism.
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Cost != breakdown[j].Cost {
			return breakdown[i].Cost > breakdown[j].Cost
		}
		return breakdown[i].ServiceName < breakdown[j].ServiceName
	})

	daily := make([]entity.DailyCost, 0, len(periodTotals))
	for date, amount := range periodTotals {
		daily = append(daily, entity.DailyCost{Date: date, Cost: amount.Round(2).InexactFloat64()})
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })

	return entity.CostResult{
		TotalCost:            total.Round(2).InexactFloat64(),
		Currency:             "USD",
		TimePeriod:           p.Label,
		GroupBy:              groupBy,
		StartDate:            p.StartDate(),
		EndDate:              p.EndDate(),
		Breakdown:            breakdown,
		TotalServices:        len(breakdown),
		DailyCosts:           daily,
		CostTrend:            costTrend(daily),
		OptimizationInsights: costInsights(breakdown, total),
		AnalysisDate:         now.UTC().Format(time.RFC3339),
		Source:               entity.CostSourcePrimary,
	}
}

// costTrend compares the first and last sub-period totals. More than a 10%
// swing in either direction counts as a trend.
func costTrend(daily []entity.DailyCost) entity.CostTrend {
	if len(daily) < 2 {
		return entity.CostTrend{Trend: "insufficient_data"}
	}

	first := daily[0].Cost
	last := daily[len(daily)-1].Cost
	if first == 0 {
		return entity.CostTrend{Trend: "no_baseline"}
	}

	change := (last - first) / first * 100
	trend := "stable"
	switch {
	case change > 10:
		trend = "increasing"
	case change < -10:
		trend = "decreasing"
	}

	return entity.CostTrend{
		Trend:            trend,
		ChangePercentage: roundTo2(change),
		FirstPeriodCost:  first,
		LastPeriodCost:   last,
	}
}

// costInsights runs the fixed heuristics over a breakdown. Advisory text
// only; nothing downstream branches on it.
func costInsights(breakdown []entity.CostLineItem, total decimal.Decimal) []string {
	if len(breakdown) == 0 || !total.IsPositive() {
		return []string{"No cost data available for analysis"}
	}

	var insights []string

	top := breakdown[0]
	if top.Percentage > 50 {
		insights = append(insights, fmt.Sprintf("%s accounts for %.1f%% of your costs - consider optimization opportunities", top.ServiceName, top.Percentage))
	}

	highCost := lo.Filter(breakdown, func(item entity.CostLineItem, _ int) bool { return item.Cost > 100 })
	if len(highCost) > 3 {
		insights = append(insights, fmt.Sprintf("You have %d services with costs over $100 - review for optimization potential", len(highCost)))
	}

	if ec2, ok := lo.Find(breakdown, func(item entity.CostLineItem) bool { return strings.Contains(item.ServiceName, "EC2") }); ok && ec2.Percentage > 30 {
		insights = append(insights, "EC2 is a significant cost driver - consider Reserved Instances or Spot Instances for savings")
	}

	if s3, ok := lo.Find(breakdown, func(item entity.CostLineItem) bool { return strings.Contains(item.ServiceName, "S3") }); ok && s3.Cost > 50 {
		insights = append(insights, "Review S3 storage classes and lifecycle policies to optimize storage costs")
	}

	if dt, ok := lo.Find(breakdown, func(item entity.CostLineItem) bool {
		return strings.Contains(item.ServiceName, "Data Transfer") || strings.Contains(item.ServiceName, "CloudFront")
	}); ok && dt.Cost > 20 {
		insights = append(insights, "Data transfer costs detected - consider CloudFront or optimize data transfer patterns")
	}

	if len(insights) == 0 {
		insights = append(insights, "Your cost distribution looks reasonable - continue monitoring for optimization opportunities")
	}
	return insights
}

func roundTo2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}
