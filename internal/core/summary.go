package core

// CategoryAmount is an amount aggregated under one category tag.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// SourceBreakdown splits a total between personal and project records.
type SourceBreakdown struct {
	Personal Money
	Project  Money
}

// TrendPoint is one calendar day inside a trend series. Days without
// expenses still appear with a zero total.
type TrendPoint struct {
	Date  Date
	Label string // short weekday name
	Total Money
}

// Summary is the derived view of an expense window. It is computed by the
// analytics package and consumed by the report exporter and the API layer;
// nothing stores it.
type Summary struct {
	Start             Date
	End               Date
	Total             Money
	Count             int
	CategoryBreakdown map[string]Money
	Sources           SourceBreakdown
	DailyAverage      Money
	Trend             []TrendPoint
}
