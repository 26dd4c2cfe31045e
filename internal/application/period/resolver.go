// Package period turns free-text time expressions ("last month",
// "august_2025", "MONTHLY") into concrete exclusive-ended date ranges.
package period

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dzecena/aws-ai-concierge/internal/domain/entity"
	"github.com/dzecena/aws-ai-concierge/internal/shared/types"
)

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)

// Resolve turns a time expression into a ResolvedPeriod relative to the
// injected current time. The current time is a parameter, never read
// implicitly, so resolution is deterministic under test.
//
// Specific month/year extraction is attempted first; keyword periods are the
// fallback. An expression matching neither is a ValidationError.
func Resolve(expr string, now time.Time) (entity.ResolvedPeriod, error) {
	today := truncateToDay(now)

	if p, ok := resolveSpecificMonth(expr, today); ok {
		return p, nil
	}
	return resolveKeyword(expr, today)
}

// resolveSpecificMonth scans for a month name token and an optional 4-digit
// year. A month without a year defaults to the current year.
func resolveSpecificMonth(expr string, today time.Time) (entity.ResolvedPeriod, bool) {
	normalized := strings.ToLower(strings.ReplaceAll(expr, "_", " "))

	var month time.Month
	found := false
	for _, token := range strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ' ' || r == '-' || r == ','
	}) {
		if m, ok := monthNames[token]; ok {
			month = m
			found = true
			break
		}
	}
	if !found {
		return entity.ResolvedPeriod{}, false
	}

	year := today.Year()
	if m := yearPattern.FindStringSubmatch(expr); m != nil {
		year, _ = strconv.Atoi(m[1])
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0) // exclusive: first day of the next month

	return entity.ResolvedPeriod{
		Start:          start,
		End:            end,
		Label:          fmt.Sprintf("%s %d", month, year),
		Granularity:    entity.GranularityDaily,
		FutureRejected: start.After(today),
	}, true
}

// resolveKeyword handles the keyword period forms. Order matters: "last 30
// days" and "last month" contain tokens of broader patterns and must be
// checked first.
func resolveKeyword(expr string, today time.Time) (entity.ResolvedPeriod, error) {
	normalized := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(expr, "_", " ")))

	switch {
	case strings.Contains(normalized, "last month"), strings.Contains(normalized, "previous month"), strings.Contains(normalized, "past month"):
		firstOfCurrent := firstOfMonth(today)
		return entity.ResolvedPeriod{
			Start:       firstOfCurrent.AddDate(0, -1, 0),
			End:         firstOfCurrent,
			Label:       "LAST_MONTH",
			Granularity: entity.GranularityDaily,
		}, nil

	case strings.Contains(normalized, "30 days"):
		return entity.ResolvedPeriod{
			Start:       today.AddDate(0, 0, -30),
			End:         today,
			Label:       "LAST_30_DAYS",
			Granularity: entity.GranularityDaily,
		}, nil

	case containsAny(normalized, "yesterday", "today", "daily", "day"):
		return entity.ResolvedPeriod{
			Start:       today.AddDate(0, 0, -1),
			End:         today,
			Label:       "DAILY",
			Granularity: entity.GranularityDaily,
		}, nil

	case containsAny(normalized, "month"):
		start := firstOfMonth(today)
		if start.Equal(today) {
			// First calendar day: no elapsed days yet, use the whole
			// previous month instead of an empty range.
			return entity.ResolvedPeriod{
				Start:       start.AddDate(0, -1, 0),
				End:         start,
				Label:       "MONTHLY",
				Granularity: entity.GranularityDaily,
			}, nil
		}
		return entity.ResolvedPeriod{
			Start:       start,
			End:         today.AddDate(0, 0, 1),
			Label:       "MONTHLY",
			Granularity: entity.GranularityDaily,
		}, nil

	case containsAny(normalized, "year", "annual", "12 months"):
		start := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		if start.Equal(today) {
			return entity.ResolvedPeriod{
				Start:       start.AddDate(-1, 0, 0),
				End:         start,
				Label:       "YEARLY",
				Granularity: entity.GranularityMonthly,
			}, nil
		}
		return entity.ResolvedPeriod{
			Start:       start,
			End:         today.AddDate(0, 0, 1),
			Label:       "YEARLY",
			Granularity: entity.GranularityMonthly,
		}, nil
	}

	return entity.ResolvedPeriod{}, &types.ValidationError{
		Key:     "time_period",
		Message: fmt.Sprintf("unrecognized time period %q", expr),
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
