package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"investflow/internal/analytics"
	"investflow/internal/core"
	"investflow/internal/export"
	"investflow/internal/log"
)

type (
	paidToPayload struct {
		Person string `json:"person,omitempty"`
		Place  string `json:"place,omitempty"`
	}

	expensePayload struct {
		ID           string         `json:"id,omitempty"`
		Date         string         `json:"date"`
		Time         string         `json:"time,omitempty"`
		Category     string         `json:"category"`
		Note         string         `json:"note,omitempty"`
		Amount       string         `json:"amount"` // decimal rupees, e.g. "250" or "12.34"
		Source       string         `json:"source"`
		ProjectID    string         `json:"projectId,omitempty"`
		ProjectName  string         `json:"projectName,omitempty"`
		PaidTo       *paidToPayload `json:"paidTo,omitempty"`
		MaterialType string         `json:"materialType,omitempty"`
	}

	expenseResponse struct {
		ID string `json:"id"`
	}
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var payload expensePayload
	if !decodeBody(w, r, &payload) {
		return
	}

	date, err := core.ParseDate(payload.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	paise, err := core.ParseDecimalToPaise(payload.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	e := core.Expense{
		ID:           payload.ID,
		Date:         date,
		Time:         payload.Time,
		Category:     payload.Category,
		Note:         payload.Note,
		Amount:       core.Money{Paise: paise},
		Source:       core.Source(payload.Source),
		ProjectID:    payload.ProjectID,
		ProjectName:  payload.ProjectName,
		MaterialType: payload.MaterialType,
	}
	if payload.PaidTo != nil {
		e.PaidTo = &core.PaidTo{Person: payload.PaidTo.Person, Place: payload.PaidTo.Place}
	}

	id, err := s.expenses.RecordExpense(r.Context(), e)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// A new expense changes any cached window it falls into.
	s.summaryCache.Purge()

	slog.InfoContext(r.Context(), "Expense created",
		log.FieldExpenseID, id,
		log.FieldAmountPaise, e.Amount.Paise,
		log.FieldCategory, e.Category,
		log.FieldComponent, log.ComponentHTTP,
		log.FieldOperation, log.OpCreate)
	writeJSON(w, http.StatusCreated, expenseResponse{ID: id})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var expenses []core.Expense
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		expenses, err = s.expenses.Search(r.Context(), start, end, q)
	} else {
		expenses, err = s.expenses.ListExpenses(r.Context(), start, end)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	opts := analytics.Options{Start: start, End: end}
	for _, src := range strings.Split(r.URL.Query().Get("sources"), ",") {
		if src = strings.TrimSpace(src); src != "" {
			opts.Sources = append(opts.Sources, core.Source(src))
		}
	}

	cacheKey := r.URL.RawQuery
	if summary, ok := s.summaryCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, summary)
		return
	}

	summary, err := s.expenses.Summarize(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.summaryCache.Set(cacheKey, summary)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	format := export.Format(r.URL.Query().Get("format"))
	opts := export.Options{
		UserName:        r.URL.Query().Get("user"),
		IncludeMetadata: r.URL.Query().Get("metadata") == "true",
	}

	out, err := s.expenses.Export(r.Context(), start, end, format, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stamp := time.Now().Format("2006-01-02")
	switch format {
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="expenses-`+stamp+`.csv"`)
	case export.FormatReport:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	case export.FormatBackup:
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="expenses-backup-`+stamp+`.json"`)
	}
	_, _ = w.Write([]byte(out))
}
