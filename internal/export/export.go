// Package export renders expense collections into interchange artifacts:
// a spreadsheet-compatible CSV, a printable HTML report, and a lossless
// JSON backup. Serialization is deterministic given Options.Now; nothing
// here touches the filesystem — callers own writing and sharing.
package export

import (
	"errors"
	"strings"
	"time"

	"investflow/internal/core"
)

const (
	// FormatCSV is the tabular interchange format. Header names, column
	// order and the quoting rule are load-bearing: spreadsheet importers
	// depend on them.
	FormatCSV Format = "csv"
	// FormatReport is the printable HTML document.
	FormatReport Format = "report"
	// FormatBackup is the lossless JSON dump, the only format meant to be
	// re-ingested.
	FormatBackup Format = "backup"
)

var (
	ErrEmptyInput        = errors.New("no expenses to export")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

type (
	Format string

	// Options carries presentation inputs shared by the formats.
	Options struct {
		Title     string
		DateRange string // e.g. "01 Jan 2026 - 31 Jan 2026"; enables the CSV metadata block
		UserName  string
		Now       time.Time // generation timestamp; zero means time.Now
		// IncludeMetadata controls the backup metadata object.
		IncludeMetadata bool
	}
)

// Serialize renders expenses in the requested format. It returns the whole
// artifact or an error, never a partial write. Empty input fails with
// ErrEmptyInput; formats outside the closed set fail with
// ErrUnsupportedFormat.
func Serialize(expenses []core.Expense, format Format, opts Options) (string, error) {
	if len(expenses) == 0 {
		return "", ErrEmptyInput
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Title == "" {
		opts.Title = "Expense Report"
	}
	if opts.UserName == "" {
		opts.UserName = "User"
	}

	switch format {
	case FormatCSV:
		return generateCSV(expenses, opts), nil
	case FormatReport:
		return generateReport(expenses, opts), nil
	case FormatBackup:
		return generateBackup(expenses, opts)
	default:
		return "", ErrUnsupportedFormat
	}
}

// hasProjectData reports whether any record is project-sourced, which
// switches CSV and report layouts to the extended column set.
func hasProjectData(expenses []core.Expense) bool {
	for _, e := range expenses {
		if e.Source == core.SourceProject {
			return true
		}
	}
	return false
}

func totals(expenses []core.Expense) (grand, personal, project core.Money) {
	for _, e := range expenses {
		grand = grand.Add(e.Amount)
		if e.Source == core.SourceProject {
			project = project.Add(e.Amount)
		} else {
			personal = personal.Add(e.Amount)
		}
	}
	return grand, personal, project
}

func capitalizeFirst(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// generatedAt renders timestamps the way the exports display them,
// day-first like the app did.
func generatedAt(t time.Time) string {
	return t.Format("02/01/2006, 15:04:05")
}
