package export

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"investflow/internal/core"
)

// The backup format keeps only the canonical expense fields so a dump can
// be re-ingested without loss. Amounts travel as rupee numbers.
type (
	backupDocument struct {
		Metadata *backupMetadata `json:"metadata,omitempty"`
		Expenses []backupRecord  `json:"expenses"`
	}

	backupMetadata struct {
		ExportedAt   time.Time `json:"exportedAt"`
		ExportedBy   string    `json:"exportedBy"`
		TotalRecords int       `json:"totalRecords"`
		TotalAmount  float64   `json:"totalAmount"`
	}

	backupRecord struct {
		ID        string  `json:"id"`
		Date      string  `json:"date"`
		Time      string  `json:"time"`
		Category  string  `json:"category"`
		Note      string  `json:"note"`
		Amount    float64 `json:"amount"`
		CreatedAt string  `json:"createdAt"`
	}
)

func generateBackup(expenses []core.Expense, opts Options) (string, error) {
	doc := backupDocument{
		Expenses: make([]backupRecord, 0, len(expenses)),
	}
	if opts.IncludeMetadata {
		grand, _, _ := totals(expenses)
		doc.Metadata = &backupMetadata{
			ExportedAt:   opts.Now.UTC(),
			ExportedBy:   opts.UserName,
			TotalRecords: len(expenses),
			TotalAmount:  grand.Rupees(),
		}
	}
	for _, e := range expenses {
		created := ""
		if !e.CreatedAt.IsZero() {
			created = e.CreatedAt.UTC().Format(time.RFC3339)
		}
		doc.Expenses = append(doc.Expenses, backupRecord{
			ID:        e.ID,
			Date:      e.Date.String(),
			Time:      e.Time,
			Category:  e.Category,
			Note:      e.Note,
			Amount:    e.Amount.Rupees(),
			CreatedAt: created,
		})
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal backup: %w", err)
	}
	return string(out), nil
}

// ParseBackup re-ingests a backup document. Returned records carry the
// canonical fields; re-imported expenses are personal-sourced since the
// backup does not record provenance.
func ParseBackup(data string) ([]core.Expense, error) {
	var doc backupDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}

	expenses := make([]core.Expense, 0, len(doc.Expenses))
	for i, rec := range doc.Expenses {
		date, err := core.ParseDate(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("backup record %d: %w", i, err)
		}
		var created time.Time
		if rec.CreatedAt != "" {
			created, err = time.Parse(time.RFC3339, rec.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("backup record %d: parse createdAt: %w", i, err)
			}
		}
		expenses = append(expenses, core.Expense{
			ID:        rec.ID,
			Date:      date,
			Time:      rec.Time,
			Category:  rec.Category,
			Note:      rec.Note,
			Amount:    core.Money{Paise: int64(math.Round(rec.Amount * 100))},
			Source:    core.SourcePersonal,
			CreatedAt: created,
		})
	}
	return expenses, nil
}
