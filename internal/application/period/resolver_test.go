package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
	"github.com/dzecena/aws-ai-concierge/internal/shared/types"
)

var testNow = time.Date(2025, time.October, 15, 14, 30, 0, 0, time.UTC)

func TestResolveKeywordPeriods(t *testing.T) {
	tests := []struct {
		name        string
		expr        string
		wantStart   string
		wantEnd     string
		wantLabel   string
		granularity string
	}{
		{
			name:      "daily",
			expr:      "DAILY",
			wantStart: "2025-10-14",
			wantEnd:   "2025-10-15",
			wantLabel: "DAILY",
		},
		{
			name:      "monthly",
			expr:      "MONTHLY",
			wantStart: "2025-10-01",
			wantEnd:   "2025-10-16",
			wantLabel: "MONTHLY",
		},
		{
			name:      "this month phrasing",
			expr:      "this month",
			wantStart: "2025-10-01",
			wantEnd:   "2025-10-16",
			wantLabel: "MONTHLY",
		},
		{
			name:      "last 30 days",
			expr:      "last_30_days",
			wantStart: "2025-09-15",
			wantEnd:   "2025-10-15",
			wantLabel: "LAST_30_DAYS",
		},
		{
			name:      "last month",
			expr:      "last month",
			wantStart: "2025-09-01",
			wantEnd:   "2025-10-01",
			wantLabel: "LAST_MONTH",
		},
		{
			name:        "yearly",
			expr:        "YEARLY",
			wantStart:   "2025-01-01",
			wantEnd:     "2025-10-16",
			wantLabel:   "YEARLY",
			granularity: entity.GranularityMonthly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Resolve(tt.expr, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, p.StartDate())
			assert.Equal(t, tt.wantEnd, p.EndDate())
			assert.Equal(t, tt.wantLabel, p.Label)
			assert.False(t, p.FutureRejected)

			wantGranularity := tt.granularity
			if wantGranularity == "" {
				wantGranularity = entity.GranularityDaily
			}
			assert.Equal(t, wantGranularity, p.Granularity)
		})
	}
}

func TestResolveSpecificMonth(t *testing.T) {
	tests := []struct {
		name       string
		expr       string
		wantStart  string
		wantEnd    string
		wantLabel  string
		wantFuture bool
	}{
		{
			name:      "underscore form with year",
			expr:      "august_2025",
			wantStart: "2025-08-01",
			wantEnd:   "2025-09-01",
			wantLabel: "August 2025",
		},
		{
			name:      "past year",
			expr:      "December 2024",
			wantStart: "2024-12-01",
			wantEnd:   "2025-01-01",
			wantLabel: "December 2024",
		},
		{
			name:      "month without year defaults to current year",
			expr:      "march",
			wantStart: "2025-03-01",
			wantEnd:   "2025-04-01",
			wantLabel: "March 2025",
		},
		{
			name:      "abbreviated month",
			expr:      "costs for sep",
			wantStart: "2025-09-01",
			wantEnd:   "2025-10-01",
			wantLabel: "September 2025",
		},
		{
			name:       "future month is flagged",
			expr:       "december 2026",
			wantStart:  "2026-12-01",
			wantEnd:    "2027-01-01",
			wantLabel:  "December 2026",
			wantFuture: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Resolve(tt.expr, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, p.StartDate())
			assert.Equal(t, tt.wantEnd, p.EndDate())
			assert.Equal(t, tt.wantLabel, p.Label)
			assert.Equal(t, tt.wantFuture, p.FutureRejected)
		})
	}
}

func TestResolveFirstDayOfMonthSubstitutesPreviousMonth(t *testing.T) {
	firstOfOctober := time.Date(2025, time.October, 1, 9, 0, 0, 0, time.UTC)

	p, err := Resolve("MONTHLY", firstOfOctober)
	require.NoError(t, err)
	assert.Equal(t, "2025-09-01", p.StartDate())
	assert.Equal(t, "2025-10-01", p.EndDate())
}

func TestResolveEndIsAlwaysAfterStart(t *testing.T) {
	exprs := []string{"DAILY", "MONTHLY", "YEARLY", "last_30_days", "last month", "august_2025", "february 2024"}

	for _, expr := range exprs {
		p, err := Resolve(expr, testNow)
		require.NoError(t, err, expr)
		assert.True(t, p.End.After(p.Start), "expected exclusive end after start for %q", expr)
	}
}

func TestResolveUnrecognizedExpression(t *testing.T) {
	_, err := Resolve("whenever", testNow)

	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "time_period", verr.Key)
}

func TestResolveCurrentMonthIsNotFuture(t *testing.T) {
	p, err := Resolve("october 2025", testNow)
	require.NoError(t, err)
	assert.False(t, p.FutureRejected)
}
