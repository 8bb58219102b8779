package export

import (
	"strings"

	"investflow/internal/core"
)

// Column sets for the tabular export. The extended set appears whenever
// any input record is project-sourced. "INR" is spelled out instead of the
// rupee sign for spreadsheet compatibility.
var (
	csvProjectHeaders = []string{
		"Date",
		"Time",
		"Source",
		"Project Name",
		"Category",
		"Description",
		"Paid To (Person)",
		"Paid To (Place)",
		"Material Type",
		"Amount (INR)",
		"Created At",
	}
	csvPersonalHeaders = []string{
		"Date",
		"Time",
		"Category",
		"Description",
		"Amount (INR)",
		"Created At",
	}
)

// sanitizeCell quotes a value containing the delimiter, a quote or a
// newline, doubling internal quotes; everything else passes through.
func sanitizeCell(value string) string {
	if strings.ContainsAny(value, ",\"\n") {
		return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func generateCSV(expenses []core.Expense, opts Options) string {
	withProject := hasProjectData(expenses)
	grand, personal, project := totals(expenses)

	var b strings.Builder

	// Leading metadata block, only when a date-range label is supplied.
	if opts.DateRange != "" {
		b.WriteString("Expense Report - " + opts.DateRange + "\n")
		b.WriteString("Generated on: " + generatedAt(opts.Now) + "\n")
		if withProject {
			b.WriteString("Personal Expenses: " + personal.FormatINR() + "\n")
			b.WriteString("Project Expenses: " + project.FormatINR() + "\n")
		}
		b.WriteString("\n")
	}

	headers := csvPersonalHeaders
	if withProject {
		headers = csvProjectHeaders
	}
	b.WriteString(strings.Join(headers, ",") + "\n")

	rows := make([]string, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, csvRow(e, withProject))
	}
	b.WriteString(strings.Join(rows, "\n"))

	// Trailing summary section.
	if withProject {
		b.WriteString("\n\nSummary")
		b.WriteString("\nPersonal Expenses Total,,,,,,,," + personal.DecimalString() + ",")
		b.WriteString("\nProject Expenses Total,,,,,,,," + project.DecimalString() + ",")
		b.WriteString("\nGrand Total,,,,,,,," + grand.DecimalString() + ",")
	} else {
		b.WriteString("\n\nTotal,,,\"Total Expenses\"," + grand.DecimalString() + ",")
	}

	return b.String()
}

func csvRow(e core.Expense, withProject bool) string {
	created := ""
	if !e.CreatedAt.IsZero() {
		created = generatedAt(e.CreatedAt)
	}

	category := e.Category
	if category == "" {
		category = "other"
	}

	if !withProject {
		cells := []string{
			sanitizeCell(e.Date.String()),
			sanitizeCell(e.Time),
			sanitizeCell(capitalizeFirst(category)),
			sanitizeCell(e.Note),
			e.Amount.DecimalString(),
			sanitizeCell(created),
		}
		return strings.Join(cells, ",")
	}

	source := string(e.Source)
	if source == "" {
		source = string(core.SourcePersonal)
	}
	var paidPerson, paidPlace string
	if e.PaidTo != nil {
		paidPerson, paidPlace = e.PaidTo.Person, e.PaidTo.Place
	}
	cells := []string{
		sanitizeCell(e.Date.String()),
		sanitizeCell(e.Time),
		sanitizeCell(capitalizeFirst(source)),
		sanitizeCell(orDash(e.ProjectName)),
		sanitizeCell(capitalizeFirst(category)),
		sanitizeCell(e.Note),
		sanitizeCell(orDash(paidPerson)),
		sanitizeCell(orDash(paidPlace)),
		sanitizeCell(orDash(e.MaterialType)),
		e.Amount.DecimalString(),
		sanitizeCell(created),
	}
	return strings.Join(cells, ",")
}
