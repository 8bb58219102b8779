package export

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"

	"investflow/internal/core"
)

// categoryShare is one row of the report's breakdown section.
type categoryShare struct {
	Name    string
	Amount  core.Money
	Percent int
}

// categoryShares sorts categories by amount descending, ties broken by
// name ascending so the document is deterministic.
func categoryShares(expenses []core.Expense, grand core.Money) []categoryShare {
	byCat := make(map[string]core.Money)
	for _, e := range expenses {
		cat := e.Category
		if cat == "" {
			cat = "other"
		}
		byCat[cat] = byCat[cat].Add(e.Amount)
	}

	shares := make([]categoryShare, 0, len(byCat))
	for name, amount := range byCat {
		pct := 0
		if grand.Paise > 0 {
			pct = int(math.Round(float64(amount.Paise) / float64(grand.Paise) * 100))
		}
		shares = append(shares, categoryShare{Name: name, Amount: amount, Percent: pct})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount.Paise != shares[j].Amount.Paise {
			return shares[i].Amount.Paise > shares[j].Amount.Paise
		}
		return shares[i].Name < shares[j].Name
	})
	return shares
}

func generateReport(expenses []core.Expense, opts Options) string {
	withProject := hasProjectData(expenses)
	grand, personal, project := totals(expenses)
	shares := categoryShares(expenses, grand)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(opts.Title))
	b.WriteString(reportStyle)
	b.WriteString("</head>\n<body>\n<div class=\"container\">\n")

	// Title block.
	b.WriteString("<div class=\"header\">\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(opts.Title))
	b.WriteString("<div class=\"meta\">")
	if opts.DateRange != "" {
		fmt.Fprintf(&b, "Period: %s<br>", html.EscapeString(opts.DateRange))
	}
	fmt.Fprintf(&b, "Generated: %s<br>User: %s", generatedAt(opts.Now), html.EscapeString(opts.UserName))
	b.WriteString("</div>\n</div>\n")

	// Summary cards: always the grand total; the split when sources are
	// mixed, otherwise count and average.
	b.WriteString("<div class=\"summary\">\n")
	summaryCard(&b, grand.FormatINR(), "Total Expenses")
	if withProject {
		summaryCard(&b, personal.FormatINR(), "Personal")
		summaryCard(&b, project.FormatINR(), "Project")
	} else {
		summaryCard(&b, fmt.Sprintf("%d", len(expenses)), "Transactions")
		summaryCard(&b, grand.DivideBy(len(expenses)).FormatINR(), "Average")
	}
	b.WriteString("</div>\n")

	// Category breakdown.
	b.WriteString("<div class=\"categories\">\n<h3>Category Breakdown</h3>\n")
	for _, s := range shares {
		fmt.Fprintf(&b, "<div class=\"category\"><span class=\"name\">%s</span><span class=\"amount\">%s (%d%%)</span></div>\n",
			html.EscapeString(capitalizeFirst(s.Name)), s.Amount.FormatINR(), s.Percent)
	}
	b.WriteString("</div>\n")

	// Transaction table.
	b.WriteString("<div class=\"transactions\">\n<h3>Transaction Details</h3>\n<table>\n<thead><tr>")
	cols := 4
	b.WriteString("<th>Date</th><th>Time</th>")
	if withProject {
		b.WriteString("<th>Source</th><th>Project</th>")
		cols = 6
	}
	b.WriteString("<th>Category</th><th>Description</th><th class=\"amount\">Amount</th></tr></thead>\n<tbody>\n")
	for _, e := range expenses {
		reportRow(&b, e, withProject)
	}
	fmt.Fprintf(&b, "<tr class=\"total\"><td colspan=\"%d\">Grand Total</td><td class=\"amount\">%s</td></tr>\n",
		cols, grand.FormatINR())
	b.WriteString("</tbody>\n</table>\n</div>\n")

	b.WriteString("</div>\n</body>\n</html>\n")
	return b.String()
}

func summaryCard(b *strings.Builder, value, label string) {
	fmt.Fprintf(b, "<div class=\"card\"><div class=\"value\">%s</div><div class=\"label\">%s</div></div>\n",
		html.EscapeString(value), html.EscapeString(label))
}

func reportRow(b *strings.Builder, e core.Expense, withProject bool) {
	category := e.Category
	if category == "" {
		category = "other"
	}
	b.WriteString("<tr>")
	fmt.Fprintf(b, "<td>%s</td><td>%s</td>", e.Date.String(), html.EscapeString(e.Time))
	if withProject {
		source := e.Source
		if source == "" {
			source = core.SourcePersonal
		}
		fmt.Fprintf(b, "<td>%s</td><td>%s</td>",
			html.EscapeString(capitalizeFirst(string(source))),
			html.EscapeString(orDash(e.ProjectName)))
	}
	fmt.Fprintf(b, "<td>%s</td><td>%s</td><td class=\"amount\">%s</td>",
		html.EscapeString(capitalizeFirst(category)),
		html.EscapeString(e.Note),
		e.Amount.FormatINR())
	b.WriteString("</tr>\n")
}

const reportStyle = `<style>
body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background: #f8fafc; color: #0f172a; padding: 20px; }
.container { max-width: 800px; margin: 0 auto; background: white; border-radius: 12px; overflow: hidden; }
.header { background: #6366f1; color: white; padding: 30px; }
.header h1 { font-size: 24px; margin: 0 0 8px; }
.header .meta { font-size: 14px; opacity: 0.9; }
.summary { display: flex; gap: 20px; padding: 20px 30px; background: #f1f5f9; }
.card { flex: 1; background: white; border-radius: 10px; padding: 16px; text-align: center; }
.card .value { font-size: 24px; font-weight: 700; color: #6366f1; }
.card .label { font-size: 12px; color: #64748b; text-transform: uppercase; }
.categories, .transactions { padding: 20px 30px; }
.category { display: flex; justify-content: space-between; margin-bottom: 8px; font-size: 13px; }
table { width: 100%; border-collapse: collapse; font-size: 13px; }
th { text-align: left; color: #64748b; border-bottom: 2px solid #e2e8f0; padding: 8px; }
td { padding: 8px; border-bottom: 1px solid #f1f5f9; }
.amount { text-align: right; font-weight: 600; }
tr.total td { font-weight: 700; color: #166534; border-top: 2px solid #10b981; }
@media print { body { padding: 0; background: white; } }
</style>
`
