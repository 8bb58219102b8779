package services

import (
	"context"
	"testing"

	"investflow/internal/approval"
)

func createTestProposal(t *testing.T, svc *ApprovalService, voters []string) approval.Snapshot {
	t.Helper()
	snap, err := svc.CreateProposal(context.Background(), approval.CreateParams{
		Proposal: approval.Proposal{
			ProjectID:  "PRJ001",
			Title:      "Extend timeline to Q3",
			Type:       "timeline",
			ProposedBy: voters[0],
		},
		Voters: voters,
	})
	if err != nil {
		t.Fatalf("CreateProposal: %v", err)
	}
	return snap
}

func TestCreateProposalPersists(t *testing.T) {
	store := newFakeProposalStore()
	svc := NewApprovalService(approval.NewTracker(), store, nil)

	snap := createTestProposal(t, svc, []string{"USR001", "USR002"})

	if snap.ID == "" {
		t.Fatal("expected generated proposal id")
	}
	recs, _ := store.ListProposals(context.Background())
	if len(recs) != 1 || recs[0].ID != snap.ID {
		t.Fatalf("proposal not persisted: %+v", recs)
	}
	if len(recs[0].Voters) != 2 {
		t.Fatalf("expected 2 voter rows, got %d", len(recs[0].Voters))
	}
}

func TestUnanimousApprovalPublishesResolution(t *testing.T) {
	store := newFakeProposalStore()
	pub := newFakePublisher()
	svc := NewApprovalService(approval.NewTracker(), store, pub)

	snap := createTestProposal(t, svc, []string{"USR001", "USR002"})

	if _, err := svc.CastVote(context.Background(), snap.ID, "USR001", approval.DecisionApproved); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if len(pub.resolved) != 0 {
		t.Fatal("no resolution event before unanimity")
	}

	final, err := svc.CastVote(context.Background(), snap.ID, "USR002", approval.DecisionApproved)
	if err != nil {
		t.Fatalf("second vote: %v", err)
	}
	if final.State != approval.StateApproved {
		t.Fatalf("state = %s, want approved", final.State)
	}
	if pub.resolved[snap.ID] != string(approval.StateApproved) {
		t.Fatalf("expected resolution event, got %v", pub.resolved)
	}

	recs, _ := store.ListProposals(context.Background())
	if recs[0].State != string(approval.StateApproved) {
		t.Fatalf("persisted state = %s, want approved", recs[0].State)
	}
}

func TestRehydrateRestoresOpenProposal(t *testing.T) {
	store := newFakeProposalStore()
	svc := NewApprovalService(approval.NewTracker(), store, nil)

	snap := createTestProposal(t, svc, []string{"USR001", "USR002", "USR003"})
	if _, err := svc.CastVote(context.Background(), snap.ID, "USR001", approval.DecisionApproved); err != nil {
		t.Fatalf("vote: %v", err)
	}

	// Simulate a restart: fresh tracker, same storage.
	restarted := NewApprovalService(approval.NewTracker(), store, nil)
	if err := restarted.Rehydrate(context.Background()); err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}

	got, err := restarted.Get(snap.ID)
	if err != nil {
		t.Fatalf("Get after rehydrate: %v", err)
	}
	if got.State != approval.StateOpen {
		t.Fatalf("state = %s, want open", got.State)
	}
	if got.Tally.Approved != 1 || got.Tally.Total != 3 {
		t.Fatalf("tally = %+v, want 1/3", got.Tally)
	}

	// Voting continues where it left off.
	if _, err := restarted.CastVote(context.Background(), snap.ID, "USR001", approval.DecisionApproved); err != approval.ErrAlreadyVoted {
		t.Fatalf("expected ErrAlreadyVoted after rehydrate, got %v", err)
	}
}

func TestWithdrawPersistsState(t *testing.T) {
	store := newFakeProposalStore()
	svc := NewApprovalService(approval.NewTracker(), store, nil)

	snap := createTestProposal(t, svc, []string{"USR001", "USR002"})

	if _, err := svc.Withdraw(context.Background(), snap.ID, "USR001"); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	recs, _ := store.ListProposals(context.Background())
	if recs[0].State != string(approval.StateWithdrawn) {
		t.Fatalf("persisted state = %s, want withdrawn", recs[0].State)
	}
}
