package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/dzecena/aws-ai-concierge/internal/application/audit"
	"github.com/dzecena/aws-ai-concierge/internal/application/period"
	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
	"github.com/dzecena/aws-ai-concierge/internal/domain/repository"
)

// fallbackBucketName is the single aggregate bucket the secondary source can
// provide; per-dimension detail does not exist at that level.
const fallbackBucketName = "Total (from Budget)"

const (
	unavailableMessage    = "Cost data is not yet available through the Cost Explorer API. This is normal for recent charges which can take 8-24 hours to appear."
	unavailableSuggestion = "Try again in a few hours for a detailed cost breakdown."
)

// CostUseCase implements cost analysis against the primary time-series source
// with the account-level secondary source as fallback, plus the idle-resource
// waste scan.
type CostUseCase struct {
	costRepo repository.CostRepository
	invRepo  repository.InventoryRepository
	recorder *audit.Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

// NewCostUseCase creates a new cost use case.
func NewCostUseCase(costRepo repository.CostRepository, invRepo repository.InventoryRepository, recorder *audit.Recorder, logger zerolog.Logger) *CostUseCase {
	return &CostUseCase{
		costRepo: costRepo,
		invRepo:  invRepo,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the use case clock, for tests.
func (uc *CostUseCase) WithClock(now func() time.Time) *CostUseCase {
	uc.now = now
	return uc
}

// GetCostAnalysis resolves the requested period, queries the primary source,
// aggregates the breakdown, and falls back to the secondary source when the
// primary has no data yet. A future-dated period and an empty fallback chain
// are both successful results, never errors.
func (uc *CostUseCase) GetCostAnalysis(ctx context.Context, params entity.Params, requestID string) (any, error) {
	timePeriod := params.String("time_period", "MONTHLY")
	granularity, err := params.Enum("granularity", entity.GranularityDaily, entity.GranularityDaily, entity.GranularityMonthly)
	if err != nil {
		return nil, err
	}
	groupBy, err := params.Enum("group_by", "SERVICE", "SERVICE", "REGION", "USAGE_TYPE", "INSTANCE_TYPE")
	if err != nil {
		return nil, err
	}

	now := uc.now()
	p, err := period.Resolve(timePeriod, now)
	if err != nil {
		return nil, err
	}

	if p.FutureRejected {
		uc.logger.Warn().
			Str("request_id", requestID).
			Str("time_period", timePeriod).
			Str("start_date", p.StartDate()).
			Msg("requested period is in the future, skipping cost query")
		return uc.futureDateResult(p, groupBy, now), nil
	}

	// Yearly ranges downgrade to monthly granularity for query efficiency.
	if p.Granularity == entity.GranularityMonthly {
		granularity = entity.GranularityMonthly
	}

	uc.logger.Info().
		Str("request_id", requestID).
		Str("start_date", p.StartDate()).
		Str("end_date", p.EndDate()).
		Str("granularity", granularity).
		Str("group_by", groupBy).
		Msg("analyzing costs")

	rows, err := uc.costRepo.GetCostAndUsage(ctx, entity.CostQuery{
		Period:      p,
		Granularity: granularity,
		GroupBy:     groupBy,
	})
	if err != nil {
		if isDataUnavailable(err) {
			uc.logger.Warn().Str("request_id", requestID).Msg("primary cost source has no data for the period")
			result := uc.resolveFallback(ctx, emptyResult(p, groupBy, now), requestID)
			return result, nil
		}
		return nil, fmt.Errorf("cost query failed: %w", err)
	}

	result := aggregateCostRows(rows, p, groupBy, now)

	// Short-circuit: the secondary source is consulted only when the primary
	// returned nothing.
	if result.TotalCost == 0 {
		result = uc.resolveFallback(ctx, result, requestID)
	}

	uc.recorder.CostAnalysis(requestID, fmt.Sprintf("%s to %s", p.StartDate(), p.EndDate()), result.TotalCost, result.Currency, len(result.OptimizationInsights))
	return result, nil
}

// resolveFallback consults the secondary aggregate source for a zero primary
// result. A missing or misconfigured secondary source degrades to an
// "unavailable" result; it is never a fatal error.
func (uc *CostUseCase) resolveFallback(ctx context.Context, primary entity.CostResult, requestID string) entity.CostResult {
	spend, err := uc.costRepo.GetActualSpend(ctx)
	if err != nil {
		uc.logger.Warn().Str("request_id", requestID).Err(err).Msg("secondary cost source unavailable")
		spend = nil
	}

	if spend == nil || !spend.Amount.IsPositive() {
		primary.Source = entity.CostSourceUnavailable
		primary.Message = unavailableMessage
		primary.Suggestion = unavailableSuggestion
		return primary
	}

	total := spend.Amount.Round(2)
	currency := spend.Currency
	if currency == "" {
		currency = "USD"
	}

	uc.logger.Info().
		Str("request_id", requestID).
		Str("budget", spend.Budget).
		Str("actual_spend", total.String()).
		Msg("using secondary source spend figure")

	return entity.CostResult{
		TotalCost:  total.InexactFloat64(),
		Currency:   currency,
		TimePeriod: primary.TimePeriod,
		GroupBy:    "TOTAL",
		StartDate:  primary.StartDate,
		EndDate:    primary.EndDate,
		Breakdown: []entity.CostLineItem{{
			ServiceName: fallbackBucketName,
			Cost:        total.InexactFloat64(),
			Percentage:  100,
			Note:        "Aggregated cost from AWS Budgets - detailed breakdown not available",
		}},
		TotalServices: 1,
		DailyCosts:    []entity.DailyCost{},
		CostTrend:     entity.CostTrend{Trend: "unknown"},
		OptimizationInsights: []string{
			fmt.Sprintf("Current spending: $%s", total.StringFixed(2)),
			"Detailed cost breakdown will be available once Cost Explorer data updates (8-24 hours)",
		},
		AnalysisDate: primary.AnalysisDate,
		Source:       entity.CostSourceFallback,
	}
}

func (uc *CostUseCase) futureDateResult(p entity.ResolvedPeriod, groupBy string, now time.Time) entity.CostResult {
	result := emptyResult(p, groupBy, now)
	result.Source = ""
	result.Message = fmt.Sprintf("Cannot retrieve cost data for future dates. The requested period (%s) is in the future.", p.Label)
	result.Suggestion = "Please specify a date range that is in the past or current month."
	result.ErrorType = "future_date"
	return result
}

func emptyResult(p entity.ResolvedPeriod, groupBy string, now time.Time) entity.CostResult {
	return entity.CostResult{
		TotalCost:            0,
		Currency:             "USD",
		TimePeriod:           p.Label,
		GroupBy:              groupBy,
		StartDate:            p.StartDate(),
		EndDate:              p.EndDate(),
		Breakdown:            []entity.CostLineItem{},
		DailyCosts:           []entity.DailyCost{},
		CostTrend:            entity.CostTrend{Trend: "insufficient_data"},
		OptimizationInsights: []string{},
		AnalysisDate:         now.UTC().Format(time.RFC3339),
		Source:               entity.CostSourcePrimary,
	}
}

// isDataUnavailable reports whether an upstream error means "no data for this
// period yet" rather than a real fault.
func isDataUnavailable(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "DataUnavailableException"
	}
	return false
}
