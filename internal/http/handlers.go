package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"investflow/internal/approval"
	"investflow/internal/core"
	"investflow/internal/export"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain sentinels to HTTP status codes; everything else
// is a 500 with a generic body so internals never leak.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrNegativeAmount),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidSource),
		errors.Is(err, core.ErrMissingProject),
		errors.Is(err, core.ErrEmptyID),
		errors.Is(err, approval.ErrInvalidDecision),
		errors.Is(err, approval.ErrEmptyVoterSet),
		errors.Is(err, export.ErrUnsupportedFormat):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, approval.ErrUnknownProposal):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, approval.ErrAlreadyVoted),
		errors.Is(err, approval.ErrAlreadyResolved),
		errors.Is(err, approval.ErrDuplicateID):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, approval.ErrInvalidVoter),
		errors.Is(err, approval.ErrNotProposer):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, export.ErrEmptyInput):
		status = http.StatusNotFound
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "url", r.URL.Path)
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// parseWindow reads the from/to query parameters. Missing values default
// to the current month.
func parseWindow(r *http.Request) (core.Date, core.Date, error) {
	now := time.Now()
	start := core.DateOf(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))
	end := core.DateOf(time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()))

	if v := r.URL.Query().Get("from"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Date{}, core.Date{}, err
		}
		start = d
	}
	if v := r.URL.Query().Get("to"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Date{}, core.Date{}, err
		}
		end = d
	}
	return start, end, nil
}
