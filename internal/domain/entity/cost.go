package entity

import "github.com/shopspring/decimal"

// Cost data sources, in fallback order.
const (
	CostSourcePrimary     = "primary"
	CostSourceFallback    = "fallback"
	CostSourceUnavailable = "unavailable"
)

// CostQuery describes one grouped cost-and-usage query against the primary
// time-series source.
type CostQuery struct {
	Period      ResolvedPeriod
	Granularity string
	GroupBy     string
}

// CostUsageRow is one raw grouped row from the primary cost source: a
// dimension value within a single sub-period.
type CostUsageRow struct {
	PeriodStart string
	Dimension   string
	Amount      decimal.Decimal
	Usage       decimal.Decimal
	Unit        string
}

// CostLineItem is one aggregated dimension in a cost breakdown.
type CostLineItem struct {
	ServiceName   string  `json:"service_name"`
	Cost          float64 `json:"cost"`
	UsageQuantity float64 `json:"usage_quantity,omitempty"`
	UsageUnit     string  `json:"usage_unit,omitempty"`
	Percentage    float64 `json:"percentage"`
	Note          string  `json:"note,omitempty"`
}

// DailyCost is the total for one sub-period, used for trend analysis.
type DailyCost struct {
	Date string  `json:"date"`
	Cost float64 `json:"cost"`
}

// CostTrend compares the first and last sub-period totals.
type CostTrend struct {
	Trend            string  `json:"trend"`
	ChangePercentage float64 `json:"change_percentage"`
	FirstPeriodCost  float64 `json:"first_period_cost,omitempty"`
	LastPeriodCost   float64 `json:"last_period_cost,omitempty"`
}

// ActualSpend is the coarse account-level figure from the secondary source.
// No per-dimension detail is available at this level.
type ActualSpend struct {
	Amount   decimal.Decimal
	Currency string
	Budget   string
}

// CostResult is the full cost-analysis payload returned to callers.
type CostResult struct {
	TotalCost            float64        `json:"total_cost"`
	Currency             string         `json:"currency"`
	TimePeriod           string         `json:"time_period"`
	GroupBy              string         `json:"group_by"`
	StartDate            string         `json:"start_date"`
	EndDate              string         `json:"end_date"`
	Breakdown            []CostLineItem `json:"breakdown"`
	TotalServices        int            `json:"total_services"`
	DailyCosts           []DailyCost    `json:"daily_costs"`
	CostTrend            CostTrend      `json:"cost_trend"`
	OptimizationInsights []string       `json:"optimization_insights"`
	AnalysisDate         string         `json:"analysis_date"`
	Source               string         `json:"data_source,omitempty"`
	Message              string         `json:"message,omitempty"`
	Suggestion           string         `json:"suggestion,omitempty"`
	ErrorType            string         `json:"error_type,omitempty"`
}
