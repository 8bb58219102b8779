package core

import (
	"errors"
	"strings"
	"time"
)

const (
	SourcePersonal Source = "personal"
	SourceProject  Source = "project"
)

// AnonymousAlias is the fallback display name shown for investors who
// hide their identity in a project.
const AnonymousAlias = "Anonymous Investor"

type (
	// Source tags where an expense record originated.
	Source string

	Date struct {
		time.Time
	}

	Money struct {
		Paise int64
	}

	// PaidTo carries optional payee details on project-sourced expenses.
	PaidTo struct {
		Person string
		Place  string
	}

	// Expense is a single monetary transaction. Records are immutable once
	// created; edits and deletions happen upstream of this core.
	Expense struct {
		ID           string
		Date         Date
		Time         string // display time-of-day, e.g. "10:30 AM"
		Category     string
		Note         string
		Amount       Money
		Source       Source
		ProjectID    string // project source only
		ProjectName  string
		PaidTo       *PaidTo
		MaterialType string
		CreatedAt    time.Time
	}

	// ProjectPrivacy is a participant's per-project anonymity record.
	// A missing entry means the participant is not anonymous there.
	ProjectPrivacy struct {
		IsAnonymous          bool
		DisplayName          string
		ShowInvestmentAmount bool
	}

	// Participant holds a stake in one or more projects.
	Participant struct {
		ID              string
		Name            string
		Email           string
		Avatar          string
		TotalInvested   *Money // nil when hidden
		PrivacySettings map[string]ProjectPrivacy
	}

	// Project is a shared investment vehicle. Admins must also be investors.
	Project struct {
		ID           string
		Name         string
		Investors    []string
		Admins       []string
		RaisedAmount Money
	}
)

var (
	ErrEmptyID          = errors.New("empty identifier")
	ErrInvalidDate      = errors.New("invalid date")
	ErrNegativeAmount   = errors.New("negative amount")
	ErrInvalidSource    = errors.New("invalid source tag")
	ErrMissingProject   = errors.New("project-sourced expense without project id")
	ErrAdminNotInvestor = errors.New("admin is not an investor")
)

func (s Source) Valid() bool {
	return s == SourcePersonal || s == SourceProject
}

// NewDate creates a Date at UTC midnight for the given calendar day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses an ISO calendar day ("2006-01-02").
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// DayLabel returns the short weekday name used by trend buckets.
func (d Date) DayLabel() string {
	return d.Format("Mon")
}

// Next returns the following calendar day.
func (d Date) Next() Date {
	return Date{Time: d.AddDate(0, 0, 1)}
}

// DaysUntil counts calendar days from d to other, inclusive of both ends.
// Returns 0 when other is before d.
func (d Date) DaysUntil(other Date) int {
	if other.Before(d.Time) {
		return 0
	}
	return int(other.Sub(d.Time)/(24*time.Hour)) + 1
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Amount.Paise < 0 {
		return ErrNegativeAmount
	}
	if !e.Source.Valid() {
		return ErrInvalidSource
	}
	if e.Source == SourceProject && strings.TrimSpace(e.ProjectID) == "" {
		return ErrMissingProject
	}
	return nil
}

func (p Participant) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyID
	}
	return nil
}

// Privacy returns the participant's privacy record for a project.
// The zero record (not anonymous) stands in for a missing entry.
func (p Participant) Privacy(projectID string) ProjectPrivacy {
	if p.PrivacySettings == nil {
		return ProjectPrivacy{}
	}
	return p.PrivacySettings[projectID]
}

func (pr Project) Validate() error {
	if strings.TrimSpace(pr.ID) == "" {
		return ErrEmptyID
	}
	investors := make(map[string]struct{}, len(pr.Investors))
	for _, id := range pr.Investors {
		investors[id] = struct{}{}
	}
	for _, id := range pr.Admins {
		if _, ok := investors[id]; !ok {
			return ErrAdminNotInvestor
		}
	}
	return nil
}

// IsAdmin reports whether id has admin rights on the project.
func (pr Project) IsAdmin(id string) bool {
	for _, a := range pr.Admins {
		if a == id {
			return true
		}
	}
	return false
}

// IsInvestor reports whether id participates in the project.
func (pr Project) IsInvestor(id string) bool {
	for _, inv := range pr.Investors {
		if inv == id {
			return true
		}
	}
	return false
}
