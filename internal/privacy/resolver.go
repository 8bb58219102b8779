// Package privacy resolves what a viewer may see about a co-investor.
//
// Investors can hide their identity per project. Admins always see the
// real record, together with an indicator that the investor intends to be
// anonymous to everyone else. Self-views are never redacted.
package privacy

import "investflow/internal/core"

const (
	// LevelFull means the record is shown as-is.
	LevelFull Level = "full"
	// LevelAdmin is full access plus the anonymity indicator.
	LevelAdmin Level = "admin"
	// LevelAnonymous is the redacted co-investor view.
	LevelAnonymous Level = "anonymous"
)

// EmailMask replaces the email on redacted views.
const EmailMask = "••••••••@••••.com"

type (
	Level string

	// View is the participant record after visibility rules are applied.
	View struct {
		ID            string
		Name          string
		Email         string
		Avatar        string
		TotalInvested *core.Money // nil when hidden
		IsAnonymous   bool
		IsSelf        bool
		Level         Level
	}

	// Options carries the optional fields of a privacy update. Nil fields
	// keep their previous value for that project.
	Options struct {
		DisplayName          *string
		ShowInvestmentAmount *bool
	}
)

// Resolve maps a participant record to the view a given viewer is allowed
// to see within one project. It is pure and total: every input combination
// yields a view, and identical inputs yield identical views.
//
// Rule order, first match wins: self, admin, anonymous, full.
func Resolve(p core.Participant, projectID, viewerID string, viewerIsAdmin bool) View {
	if p.ID == viewerID {
		return View{
			ID:            p.ID,
			Name:          p.Name,
			Email:         p.Email,
			Avatar:        p.Avatar,
			TotalInvested: copyMoney(p.TotalInvested),
			IsAnonymous:   false,
			IsSelf:        true,
			Level:         LevelFull,
		}
	}

	pp := p.Privacy(projectID)

	if viewerIsAdmin {
		// Full access; IsAnonymous is an indicator, not a redaction.
		return View{
			ID:            p.ID,
			Name:          p.Name,
			Email:         p.Email,
			Avatar:        p.Avatar,
			TotalInvested: copyMoney(p.TotalInvested),
			IsAnonymous:   pp.IsAnonymous,
			Level:         LevelAdmin,
		}
	}

	if pp.IsAnonymous {
		v := View{
			ID:          p.ID,
			Name:        pp.DisplayName,
			Email:       EmailMask,
			IsAnonymous: true,
			Level:       LevelAnonymous,
		}
		if v.Name == "" {
			v.Name = core.AnonymousAlias
		}
		if pp.ShowInvestmentAmount {
			v.TotalInvested = copyMoney(p.TotalInvested)
		}
		return v
	}

	return View{
		ID:            p.ID,
		Name:          p.Name,
		Email:         p.Email,
		Avatar:        p.Avatar,
		TotalInvested: copyMoney(p.TotalInvested),
		Level:         LevelFull,
	}
}

// ResolveAll applies Resolve to each participant, preserving input order.
func ResolveAll(participants []core.Participant, projectID, viewerID string, viewerIsAdmin bool) []View {
	views := make([]View, len(participants))
	for i, p := range participants {
		views[i] = Resolve(p, projectID, viewerID, viewerIsAdmin)
	}
	return views
}

// UpdateSettings returns a new settings map with the project's record
// replaced. Unspecified optional fields keep their previous value for that
// project; other projects are untouched. The input map is never mutated.
func UpdateSettings(cur map[string]core.ProjectPrivacy, projectID string, isAnonymous bool, opts Options) map[string]core.ProjectPrivacy {
	next := make(map[string]core.ProjectPrivacy, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}

	prev := next[projectID]
	rec := core.ProjectPrivacy{
		IsAnonymous:          isAnonymous,
		DisplayName:          prev.DisplayName,
		ShowInvestmentAmount: prev.ShowInvestmentAmount,
	}
	if rec.DisplayName == "" {
		rec.DisplayName = core.AnonymousAlias
	}
	if opts.DisplayName != nil && *opts.DisplayName != "" {
		rec.DisplayName = *opts.DisplayName
	}
	if opts.ShowInvestmentAmount != nil {
		rec.ShowInvestmentAmount = *opts.ShowInvestmentAmount
	}

	next[projectID] = rec
	return next
}

// DefaultSettings is the lazily-created record for a project a participant
// just joined: visible, with the amount hidden should they later toggle
// anonymity on.
func DefaultSettings(projectID string) map[string]core.ProjectPrivacy {
	return map[string]core.ProjectPrivacy{
		projectID: {
			IsAnonymous:          false,
			DisplayName:          core.AnonymousAlias,
			ShowInvestmentAmount: false,
		},
	}
}

func copyMoney(m *core.Money) *core.Money {
	if m == nil {
		return nil
	}
	v := *m
	return &v
}
