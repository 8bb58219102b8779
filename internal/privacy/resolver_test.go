package privacy

import (
	"reflect"
	"testing"

	"investflow/internal/core"
)

func anonParticipant() core.Participant {
	invested := core.RupeesToMoney(250000)
	return core.Participant{
		ID:            "USR002",
		Name:          "Priya Sharma",
		Email:         "priya@example.com",
		Avatar:        "https://cdn.example.com/priya.png",
		TotalInvested: &invested,
		PrivacySettings: map[string]core.ProjectPrivacy{
			"PRJ001": {IsAnonymous: true, DisplayName: "Anonymous Investor", ShowInvestmentAmount: false},
		},
	}
}

func TestResolveSelfNeverRedacted(t *testing.T) {
	p := anonParticipant()
	v := Resolve(p, "PRJ001", p.ID, false)
	if !v.IsSelf || v.Level != LevelFull {
		t.Fatalf("expected full self view, got %+v", v)
	}
	if v.Name != p.Name || v.Email != p.Email || v.TotalInvested == nil {
		t.Fatalf("self view must be unredacted, got %+v", v)
	}
}

func TestResolveAdminSeesIndicator(t *testing.T) {
	p := anonParticipant()
	v := Resolve(p, "PRJ001", "USR009", true)
	if v.Level != LevelAdmin {
		t.Fatalf("expected admin level, got %s", v.Level)
	}
	if v.Name != p.Name || v.Email != p.Email || v.TotalInvested == nil {
		t.Fatalf("admin must see the full record, got %+v", v)
	}
	if !v.IsAnonymous {
		t.Fatalf("admin view must carry the anonymity indicator")
	}
}

func TestResolveCoInvestorRedaction(t *testing.T) {
	p := anonParticipant()
	v := Resolve(p, "PRJ001", "USR009", false)
	if v.Level != LevelAnonymous || !v.IsAnonymous {
		t.Fatalf("expected anonymous view, got %+v", v)
	}
	if v.Name != core.AnonymousAlias {
		t.Fatalf("expected alias name, got %q", v.Name)
	}
	if v.Email != EmailMask || v.Avatar != "" {
		t.Fatalf("email/avatar leaked: %+v", v)
	}
	if v.TotalInvested != nil {
		t.Fatalf("amount leaked with ShowInvestmentAmount off")
	}
	if v.ID != p.ID {
		t.Fatalf("identifier must be preserved")
	}
}

func TestResolveShowInvestmentAmount(t *testing.T) {
	p := anonParticipant()
	pp := p.PrivacySettings["PRJ001"]
	pp.ShowInvestmentAmount = true
	p.PrivacySettings["PRJ001"] = pp

	v := Resolve(p, "PRJ001", "USR009", false)
	if v.TotalInvested == nil || v.TotalInvested.Paise != p.TotalInvested.Paise {
		t.Fatalf("amount must be visible when the show flag is on, got %+v", v)
	}
	if v.Name != core.AnonymousAlias {
		t.Fatalf("identity must stay redacted, got %q", v.Name)
	}
}

func TestResolveOtherProjectUnaffected(t *testing.T) {
	p := anonParticipant()
	v := Resolve(p, "PRJ002", "USR009", false)
	if v.Level != LevelFull || v.Name != p.Name {
		t.Fatalf("anonymity must be scoped per project, got %+v", v)
	}
}

func TestResolveIdempotent(t *testing.T) {
	p := anonParticipant()
	a := Resolve(p, "PRJ001", "USR009", false)
	b := Resolve(p, "PRJ001", "USR009", false)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical inputs must yield identical views: %+v vs %+v", a, b)
	}
}

func TestResolveAllPreservesOrder(t *testing.T) {
	ps := []core.Participant{
		{ID: "USR003", Name: "C"},
		{ID: "USR001", Name: "A"},
		anonParticipant(),
	}
	views := ResolveAll(ps, "PRJ001", "USR001", false)
	if len(views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(views))
	}
	for i, v := range views {
		if v.ID != ps[i].ID {
			t.Fatalf("order not preserved at %d: %s vs %s", i, v.ID, ps[i].ID)
		}
	}
	if !views[1].IsSelf {
		t.Fatalf("viewer's own entry must be tagged self")
	}
}

func TestUpdateSettingsMerge(t *testing.T) {
	cur := map[string]core.ProjectPrivacy{
		"PRJ001": {IsAnonymous: true, DisplayName: "Silent Partner", ShowInvestmentAmount: true},
		"PRJ002": {IsAnonymous: false, DisplayName: "Anonymous Investor"},
	}

	next := UpdateSettings(cur, "PRJ001", false, Options{})
	if got := next["PRJ001"]; got.IsAnonymous || got.DisplayName != "Silent Partner" || !got.ShowInvestmentAmount {
		t.Fatalf("unspecified options must keep previous values, got %+v", got)
	}
	if !reflect.DeepEqual(next["PRJ002"], cur["PRJ002"]) {
		t.Fatalf("other projects must be untouched")
	}
	if !cur["PRJ001"].IsAnonymous {
		t.Fatalf("input map was mutated")
	}

	name := "Quiet Backer"
	show := false
	next = UpdateSettings(cur, "PRJ001", true, Options{DisplayName: &name, ShowInvestmentAmount: &show})
	if got := next["PRJ001"]; got.DisplayName != "Quiet Backer" || got.ShowInvestmentAmount {
		t.Fatalf("explicit options must win, got %+v", got)
	}
}

func TestUpdateSettingsFirstToggle(t *testing.T) {
	next := UpdateSettings(nil, "PRJ009", true, Options{})
	got := next["PRJ009"]
	if !got.IsAnonymous || got.DisplayName != core.AnonymousAlias || got.ShowInvestmentAmount {
		t.Fatalf("lazy default record wrong: %+v", got)
	}
}
