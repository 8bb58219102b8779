// Package analytics merges expense records from personal and project
// sources into the derived summaries the dashboard and the report exporter
// consume. Everything here is a pure function over caller-supplied slices.
package analytics

import (
	"strings"

	"investflow/internal/core"
)

// DefaultTrendDays bounds the trend series when the requested window is
// longer: the series then covers the trailing days ending at the window's
// end, one bucket per calendar day.
const DefaultTrendDays = 7

// Options selects the window and sources for an aggregation. The window is
// inclusive on both ends at calendar-day granularity. An empty Sources
// slice means both sources.
type Options struct {
	Start     core.Date
	End       core.Date
	Sources   []core.Source
	TrendDays int // 0 means DefaultTrendDays
}

func (o Options) wantsSource(s core.Source) bool {
	if len(o.Sources) == 0 {
		return true
	}
	for _, src := range o.Sources {
		if src == s {
			return true
		}
	}
	return false
}

func (o Options) inWindow(d core.Date) bool {
	return !d.Before(o.Start.Time) && !d.After(o.End.Time)
}

// Aggregate filters the input to the requested window and sources and
// computes the summary. Empty input yields a zero-valued summary with a
// gap-free all-zero trend, never an error.
func Aggregate(expenses []core.Expense, opts Options) core.Summary {
	summary := core.Summary{
		Start:             opts.Start,
		End:               opts.End,
		CategoryBreakdown: make(map[string]core.Money),
	}

	byDay := make(map[string]core.Money)
	for _, e := range expenses {
		if !opts.inWindow(e.Date) || !opts.wantsSource(e.Source) {
			continue
		}
		summary.Total = summary.Total.Add(e.Amount)
		summary.Count++
		summary.CategoryBreakdown[e.Category] = summary.CategoryBreakdown[e.Category].Add(e.Amount)
		switch e.Source {
		case core.SourceProject:
			summary.Sources.Project = summary.Sources.Project.Add(e.Amount)
		default:
			summary.Sources.Personal = summary.Sources.Personal.Add(e.Amount)
		}
		key := e.Date.String()
		byDay[key] = byDay[key].Add(e.Amount)
	}

	// Average over the window length, not over active days; an empty
	// window divides nothing and yields zero.
	windowDays := opts.Start.DaysUntil(opts.End)
	summary.DailyAverage = summary.Total.DivideBy(windowDays)

	summary.Trend = trendSeries(byDay, opts, windowDays)
	return summary
}

// trendSeries emits one bucket per calendar day, trailing-capped. Days with
// no expenses appear with total zero so the series has no gaps.
func trendSeries(byDay map[string]core.Money, opts Options, windowDays int) []core.TrendPoint {
	if windowDays == 0 {
		return nil
	}
	limit := opts.TrendDays
	if limit <= 0 {
		limit = DefaultTrendDays
	}
	days := windowDays
	start := opts.Start
	if days > limit {
		days = limit
		start = core.Date{Time: opts.End.AddDate(0, 0, -(limit - 1))}
	}

	series := make([]core.TrendPoint, 0, days)
	for d := start; !d.After(opts.End.Time); d = d.Next() {
		series = append(series, core.TrendPoint{
			Date:  d,
			Label: d.DayLabel(),
			Total: byDay[d.String()],
		})
	}
	return series
}

// GroupByDate buckets expenses under their ISO calendar day, preserving
// the order they were supplied in within each day.
func GroupByDate(expenses []core.Expense) map[string][]core.Expense {
	groups := make(map[string][]core.Expense)
	for _, e := range expenses {
		key := e.Date.String()
		groups[key] = append(groups[key], e)
	}
	return groups
}

// Search keeps expenses whose note, category, project name or material
// type contains the query, case-insensitively. A blank query keeps
// everything.
func Search(expenses []core.Expense, query string) []core.Expense {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return expenses
	}
	var out []core.Expense
	for _, e := range expenses {
		if containsFold(e.Note, query) ||
			containsFold(e.Category, query) ||
			containsFold(e.ProjectName, query) ||
			containsFold(e.MaterialType, query) {
			out = append(out, e)
		}
	}
	return out
}

func containsFold(s, loweredQuery string) bool {
	return strings.Contains(strings.ToLower(s), loweredQuery)
}
