package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
	"github.com/dzecena/aws-ai-concierge/internal/shared/types"
)

// Simplified monthly cost estimates in USD for common instance types. Precise
// figures would come from the Pricing API; these are good enough to rank
// savings opportunities.
var instanceCostEstimates = map[string]float64{
	"t2.micro": 8.50, "t2.small": 17.00, "t2.medium": 34.00, "t2.large": 68.00,
	"t3.micro": 7.60, "t3.small": 15.20, "t3.medium": 30.40, "t3.large": 60.80,
	"t3.xlarge": 121.60, "t3.2xlarge": 243.20,
	"m5.large": 70.00, "m5.xlarge": 140.00, "m5.2xlarge": 280.00, "m5.4xlarge": 560.00,
	"c5.large": 62.00, "c5.xlarge": 124.00, "c5.2xlarge": 248.00, "c5.4xlarge": 496.00,
	"r5.large": 91.00, "r5.xlarge": 182.00, "r5.2xlarge": 364.00, "r5.4xlarge": 728.00,
}

const defaultInstanceCostEstimate = 50.0

// GetIdleResources scans a region for underutilized EC2 instances plus the
// adjacent waste signals: load balancers with no targets and log groups
// retaining data forever.
func (uc *CostUseCase) GetIdleResources(ctx context.Context, params entity.Params, requestID string) (any, error) {
	region := params.String("region", "us-east-1")
	cpuThreshold, err := params.Float("cpu_threshold", 5.0)
	if err != nil {
		return nil, err
	}
	days, err := params.Int("days", 7)
	if err != nil {
		return nil, err
	}

	if cpuThreshold < 0 || cpuThreshold > 100 {
		return nil, &types.ValidationError{Key: "cpu_threshold", Message: "must be between 0 and 100"}
	}
	if days < 1 || days > 30 {
		return nil, &types.ValidationError{Key: "days", Message: "analysis period must be between 1 and 30 days"}
	}

	instances, err := uc.invRepo.GetEC2Instances(ctx, region, true)
	if err != nil {
		return nil, fmt.Errorf("listing running instances: %w", err)
	}

	now := uc.now()
	var idle []entity.IdleInstance
	analyzed := 0
	totalSavings := 0.0

	for _, inst := range instances {
		analyzed++

		// Instances younger than the analysis window have no meaningful
		// utilization history yet.
		if launched, perr := time.Parse(time.RFC3339, inst.CreatedAt); perr == nil {
			if now.Sub(launched) < time.Duration(days)*24*time.Hour {
				continue
			}
		}

		metrics, merr := uc.invRepo.GetInstanceMetrics(ctx, region, inst.ResourceID, days)
		if merr != nil {
			uc.logger.Warn().Str("request_id", requestID).Str("instance_id", inst.ResourceID).Err(merr).Msg("could not get instance metrics")
			continue
		}
		if metrics.AvgCPU == nil || *metrics.AvgCPU >= cpuThreshold {
			continue
		}

		instanceType, _ := inst.Extra["instance_type"].(string)
		monthlyCost := estimateInstanceCost(instanceType)
		recommendation, savings, confidence := optimizationRecommendation(metrics, monthlyCost)

		maxCPU := 0.0
		if metrics.MaxCPU != nil {
			maxCPU = *metrics.MaxCPU
		}
		idle = append(idle, entity.IdleInstance{
			InstanceID:              inst.ResourceID,
			InstanceType:            instanceType,
			AvgCPUPercent:           roundTo2(*metrics.AvgCPU),
			MaxCPUPercent:           roundTo2(maxCPU),
			DataPoints:              metrics.DataPoints,
			LaunchTime:              inst.CreatedAt,
			EstimatedMonthlyCost:    monthlyCost,
			PotentialMonthlySavings: savings,
			Recommendation:          recommendation,
			Confidence:              confidence,
			Tags:                    inst.Tags,
		})
		totalSavings += savings
	}

	idleLBs, err := uc.invRepo.GetIdleLoadBalancers(ctx, region)
	if err != nil {
		uc.logger.Warn().Str("request_id", requestID).Err(err).Msg("idle load balancer scan failed")
		idleLBs = nil
	}
	logGroups, err := uc.invRepo.GetUnretainedLogGroups(ctx, region)
	if err != nil {
		uc.logger.Warn().Str("request_id", requestID).Err(err).Msg("log retention scan failed")
		logGroups = nil
	}

	report := entity.IdleResourcesReport{
		Region:                  region,
		AnalysisPeriodDays:      days,
		CPUThresholdPercent:     cpuThreshold,
		TotalInstancesAnalyzed:  analyzed,
		IdleInstances:           idle,
		TotalIdleInstances:      len(idle),
		IdleLoadBalancers:       idleLBs,
		UnretainedLogGroups:     logGroups,
		PotentialMonthlySavings: roundTo2(totalSavings),
		OptimizationInsights:    idleInsights(idle, analyzed, idleLBs, logGroups),
		Currency:                "USD",
		AnalysisDate:            now.UTC().Format(time.RFC3339),
	}

	uc.recorder.ResourceAccess(requestID, "EC2", analyzed, []string{region})
	return report, nil
}

func estimateInstanceCost(instanceType string) float64 {
	if cost, ok := instanceCostEstimates[instanceType]; ok {
		return cost
	}
	return defaultInstanceCostEstimate
}

// optimizationRecommendation classifies an instance by its utilization
// pattern. Confidence comes from datapoint coverage: under a day of hourly
// data is low, under a week is medium.
func optimizationRecommendation(m entity.InstanceMetrics, monthlyCost float64) (recommendation string, savings float64, confidence string) {
	switch {
	case m.DataPoints < 24:
		confidence = "low"
	case m.DataPoints < 168:
		confidence = "medium"
	default:
		confidence = "high"
	}

	avg := 0.0
	if m.AvgCPU != nil {
		avg = *m.AvgCPU
	}
	max := 0.0
	if m.MaxCPU != nil {
		max = *m.MaxCPU
	}

	switch {
	case avg < 1 && max < 5:
		return "terminate", roundTo2(monthlyCost), confidence
	case avg < 2 && max < 10:
		return "downsize_significantly", roundTo2(monthlyCost * 0.7), confidence
	case avg < 5 && max < 20:
		return "downsize", roundTo2(monthlyCost * 0.5), confidence
	case avg < 10 && max < 30:
		return "consider_burstable", roundTo2(monthlyCost * 0.3), confidence
	default:
		return "monitor", 0, confidence
	}
}

func idleInsights(idle []entity.IdleInstance, analyzed int, lbs []entity.IdleLoadBalancer, logGroups []entity.UnretainedLogGroup) []string {
	var insights []string

	if len(idle) == 0 {
		insights = append(insights, fmt.Sprintf("No idle instances found among %d analyzed instances", analyzed))
	} else {
		pct := 0.0
		if analyzed > 0 {
			pct = float64(len(idle)) / float64(analyzed) * 100
		}
		insights = append(insights, fmt.Sprintf("Found %d idle instances (%.1f%% of analyzed instances)", len(idle), pct))

		terminate := lo.CountBy(idle, func(i entity.IdleInstance) bool { return i.Recommendation == "terminate" })
		if terminate > 0 {
			insights = append(insights, fmt.Sprintf("%d instances can likely be terminated safely", terminate))
		}
		downsize := lo.CountBy(idle, func(i entity.IdleInstance) bool {
			return i.Recommendation == "downsize" || i.Recommendation == "downsize_significantly"
		})
		if downsize > 0 {
			insights = append(insights, fmt.Sprintf("%d instances could be downsized for cost savings", downsize))
		}

		savings := lo.SumBy(idle, func(i entity.IdleInstance) float64 { return i.PotentialMonthlySavings })
		if savings > 100 {
			insights = append(insights, fmt.Sprintf("Potential monthly savings: $%.2f", savings))
		}
	}

	if len(lbs) > 0 {
		insights = append(insights, fmt.Sprintf("%d load balancers have no registered targets and can likely be removed", len(lbs)))
	}
	if len(logGroups) > 0 {
		insights = append(insights, fmt.Sprintf("%d CloudWatch log groups have no retention policy and accumulate storage cost", len(logGroups)))
	}

	return insights
}
