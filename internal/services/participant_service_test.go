package services

import (
	"context"
	"testing"

	"investflow/internal/core"
	"investflow/internal/privacy"
)

func seedProject(store *fakeParticipantStore) {
	store.projects["PRJ001"] = core.Project{
		ID:        "PRJ001",
		Name:      "Greenfield Apartments",
		Investors: []string{"USR001", "USR002"},
		Admins:    []string{"USR001"},
	}
	invested := core.RupeesToMoney(50000)
	store.participants["USR001"] = core.Participant{
		ID: "USR001", Name: "Asha Patel", Email: "asha@example.com",
		TotalInvested: &invested,
	}
	store.participants["USR002"] = core.Participant{
		ID: "USR002", Name: "Rahul Verma", Email: "rahul@example.com",
		PrivacySettings: map[string]core.ProjectPrivacy{
			"PRJ001": {IsAnonymous: true, DisplayName: core.AnonymousAlias},
		},
	}
}

func TestResolveRosterUsesProjectAdminFlag(t *testing.T) {
	store := newFakeParticipantStore()
	seedProject(store)
	svc := NewParticipantService(store)

	// USR001 is an admin: sees the anonymous member with an indicator.
	views, err := svc.ResolveRoster(context.Background(), "PRJ001", "USR001")
	if err != nil {
		t.Fatalf("ResolveRoster: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[1].Level != privacy.LevelAdmin {
		t.Fatalf("admin viewer should get admin-level view, got %s", views[1].Level)
	}

	// USR002 is not an admin: the roster shows themselves unredacted.
	views, err = svc.ResolveRoster(context.Background(), "PRJ001", "USR002")
	if err != nil {
		t.Fatalf("ResolveRoster: %v", err)
	}
	if !views[1].IsSelf || views[1].Name != "Rahul Verma" {
		t.Fatalf("self view must be unredacted, got %+v", views[1])
	}
}

func TestUpdatePrivacyRoundTrips(t *testing.T) {
	store := newFakeParticipantStore()
	seedProject(store)
	svc := NewParticipantService(store)

	name := "Silent Partner"
	updated, err := svc.UpdatePrivacy(context.Background(), "USR001", "PRJ001", true,
		privacy.Options{DisplayName: &name})
	if err != nil {
		t.Fatalf("UpdatePrivacy: %v", err)
	}
	got := updated.PrivacySettings["PRJ001"]
	if !got.IsAnonymous || got.DisplayName != "Silent Partner" {
		t.Fatalf("unexpected settings: %+v", got)
	}

	// Persisted through the store, visible to a fresh read.
	p, err := store.GetParticipant(context.Background(), "USR001")
	if err != nil {
		t.Fatalf("GetParticipant: %v", err)
	}
	if !p.PrivacySettings["PRJ001"].IsAnonymous {
		t.Fatal("settings must be persisted")
	}
}
