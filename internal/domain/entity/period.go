package entity

import "time"

// Granularity values accepted by the cost query API.
const (
	GranularityDaily   = "DAILY"
	GranularityMonthly = "MONTHLY"
)

// ResolvedPeriod is a concrete date range derived from a free-text time
// expression. End is exclusive: it is exactly one day past the last included
// calendar day, so Start is always strictly before End.
type ResolvedPeriod struct {
	Start time.Time
	End   time.Time
	Label string
	// Granularity is the query granularity the period prefers; yearly ranges
	// downgrade to monthly for query efficiency.
	Granularity string
	// FutureRejected is set when the requested period lies entirely after the
	// current date. No external cost call may be made for such a period.
	FutureRejected bool
}

// StartDate returns the inclusive start formatted for the cost query API.
func (p ResolvedPeriod) StartDate() string {
	return p.Start.Format("2006-01-02")
}

// EndDate returns the exclusive end formatted for the cost query API.
func (p ResolvedPeriod) EndDate() string {
	return p.End.Format("2006-01-02")
}
