package approval

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newProposal(t *testing.T, tr *Tracker, voters ...string) Snapshot {
	t.Helper()
	snap, err := tr.Create(CreateParams{
		Proposal: Proposal{
			ID:         "MOD001",
			ProjectID:  "PRJ001",
			Title:      "Extend Construction Timeline",
			Type:       "timeline",
			ProposedBy: voters[0],
			ProposedAt: time.Date(2026, 1, 13, 9, 0, 0, 0, time.UTC),
		},
		Voters: voters,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return snap
}

func TestUnanimousApproval(t *testing.T) {
	tr := NewTracker()
	newProposal(t, tr, "USR001", "USR002", "USR003")

	for _, voter := range []string{"USR001", "USR002"} {
		snap, err := tr.CastVote("MOD001", voter, DecisionApproved)
		if err != nil {
			t.Fatalf("vote %s: %v", voter, err)
		}
		if snap.State != StateOpen {
			t.Fatalf("must stay open before the last vote, got %s", snap.State)
		}
	}

	snap, err := tr.CastVote("MOD001", "USR003", DecisionApproved)
	if err != nil {
		t.Fatalf("final vote: %v", err)
	}
	if snap.State != StateApproved {
		t.Fatalf("expected resolved-approved, got %s", snap.State)
	}
	if snap.Tally.Approved != 3 || snap.Tally.Total != 3 {
		t.Fatalf("bad tally %+v", snap.Tally)
	}
}

func TestRejectionVetoes(t *testing.T) {
	tr := NewTracker()
	newProposal(t, tr, "USR001", "USR002", "USR003")

	if snap, _ := tr.CastVote("MOD001", "USR001", DecisionApproved); snap.State != StateOpen {
		t.Fatalf("open expected after first approval")
	}
	if snap, _ := tr.CastVote("MOD001", "USR002", DecisionApproved); snap.State != StateOpen {
		t.Fatalf("open expected after second approval")
	}

	snap, err := tr.CastVote("MOD001", "USR003", DecisionRejected)
	if err != nil {
		t.Fatalf("rejecting vote: %v", err)
	}
	if snap.State != StateRejected {
		t.Fatalf("one rejection must veto, got %s", snap.State)
	}

	// Terminal: nothing further is accepted.
	if _, err := tr.CastVote("MOD001", "USR001", DecisionApproved); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
}

func TestInvalidVoterLeavesTallyUntouched(t *testing.T) {
	tr := NewTracker()
	newProposal(t, tr, "USR001", "USR002")

	_, err := tr.CastVote("MOD001", "OUTSIDER", DecisionApproved)
	if !errors.Is(err, ErrInvalidVoter) {
		t.Fatalf("expected ErrInvalidVoter, got %v", err)
	}
	snap, _ := tr.Get("MOD001")
	if snap.Tally.Approved != 0 || snap.Tally.Rejected != 0 {
		t.Fatalf("tally changed on invalid vote: %+v", snap.Tally)
	}
}

func TestRevoteRejected(t *testing.T) {
	tr := NewTracker()
	newProposal(t, tr, "USR001", "USR002")

	if _, err := tr.CastVote("MOD001", "USR001", DecisionApproved); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	_, err := tr.CastVote("MOD001", "USR001", DecisionRejected)
	if !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	snap, _ := tr.Get("MOD001")
	if snap.Tally.Approved != 1 || snap.Tally.Rejected != 0 {
		t.Fatalf("re-vote must not change the tally: %+v", snap.Tally)
	}
}

func TestWithdraw(t *testing.T) {
	tr := NewTracker()
	newProposal(t, tr, "USR001", "USR002")

	if _, err := tr.Withdraw("MOD001", "USR002"); !errors.Is(err, ErrNotProposer) {
		t.Fatalf("expected ErrNotProposer, got %v", err)
	}
	snap, err := tr.Withdraw("MOD001", "USR001")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if snap.State != StateWithdrawn {
		t.Fatalf("expected withdrawn, got %s", snap.State)
	}
	if _, err := tr.Withdraw("MOD001", "USR001"); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("withdraw is terminal, got %v", err)
	}
}

func TestProposerAutoApprove(t *testing.T) {
	tr := NewTracker()
	snap, err := tr.Create(CreateParams{
		Proposal: Proposal{ID: "MOD002", ProjectID: "PRJ002", ProposedBy: "USR001"},
		Voters:   []string{"USR001", "USR002"},

		ProposerAutoApproves: true, // creator auto-approves flow
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if snap.Tally.Approved != 1 {
		t.Fatalf("proposer's approval missing: %+v", snap.Tally)
	}
	if _, err := tr.CastVote("MOD002", "USR001", DecisionApproved); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("proposer must not vote twice, got %v", err)
	}
}

func TestProgress(t *testing.T) {
	tr := NewTracker()
	newProposal(t, tr, "USR001", "USR002", "USR003", "USR004")
	tr.CastVote("MOD001", "USR001", DecisionApproved)
	tr.CastVote("MOD001", "USR002", DecisionApproved)
	tr.CastVote("MOD001", "USR003", DecisionApproved)

	p, err := tr.Progress("MOD001")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.Approved != 3 || p.Total != 4 {
		t.Fatalf("bad progress %+v", p)
	}
	if p.Percent != 75 {
		t.Fatalf("expected exact 75 percent, got %v", p.Percent)
	}
}

func TestUnknownProposal(t *testing.T) {
	tr := NewTracker()
	if _, err := tr.CastVote("NOPE", "USR001", DecisionApproved); !errors.Is(err, ErrUnknownProposal) {
		t.Fatalf("expected ErrUnknownProposal, got %v", err)
	}
	if _, err := tr.Progress("NOPE"); !errors.Is(err, ErrUnknownProposal) {
		t.Fatalf("expected ErrUnknownProposal, got %v", err)
	}
}

func TestConcurrentVotesKeepTallyConsistent(t *testing.T) {
	tr := NewTracker()
	voters := make([]string, 32)
	for i := range voters {
		voters[i] = fmt.Sprintf("USR%03d", i)
	}
	newProposal(t, tr, voters...)

	var wg sync.WaitGroup
	for _, v := range voters {
		wg.Add(1)
		go func(voter string) {
			defer wg.Done()
			tr.CastVote("MOD001", voter, DecisionApproved)
		}(v)
	}
	wg.Wait()

	snap, _ := tr.Get("MOD001")
	if snap.Tally.Approved != len(voters) || snap.Tally.Approved+snap.Tally.Rejected > snap.Tally.Total {
		t.Fatalf("tally corrupted: %+v", snap.Tally)
	}
	if snap.State != StateApproved {
		t.Fatalf("expected resolved-approved, got %s", snap.State)
	}
}

func TestRestorePreservesStateAndVotes(t *testing.T) {
	tr := NewTracker()
	votedAt := time.Date(2026, 1, 14, 10, 0, 0, 0, time.UTC)
	err := tr.Restore(CreateParams{
		Proposal: Proposal{
			ID:         "MOD002",
			ProjectID:  "PRJ001",
			Title:      "Increase Capital",
			Type:       "capital",
			ProposedBy: "USR001",
			ProposedAt: votedAt.Add(-time.Hour),
		},
		Voters: []string{"USR001", "USR002"},
	}, StateOpen, map[string]VoteRecord{
		"USR001": {Decision: DecisionApproved, VotedAt: votedAt},
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	snap, err := tr.Get("MOD002")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if snap.Tally.Approved != 1 || snap.Tally.Total != 2 {
		t.Fatalf("tally = %+v, want 1/2", snap.Tally)
	}
	if !snap.Votes["USR001"].VotedAt.Equal(votedAt) {
		t.Fatalf("vote timestamp lost: %+v", snap.Votes["USR001"])
	}

	// Restored votes still count toward unanimity.
	final, err := tr.CastVote("MOD002", "USR002", DecisionApproved)
	if err != nil {
		t.Fatalf("vote after restore: %v", err)
	}
	if final.State != StateApproved {
		t.Fatalf("state = %s, want approved", final.State)
	}
}

func TestRestoreRejectsVoteOutsideVoterSet(t *testing.T) {
	tr := NewTracker()
	err := tr.Restore(CreateParams{
		Proposal: Proposal{ID: "MOD003", ProposedBy: "USR001"},
		Voters:   []string{"USR001"},
	}, StateOpen, map[string]VoteRecord{
		"USR999": {Decision: DecisionApproved},
	})
	if !errors.Is(err, ErrInvalidVoter) {
		t.Fatalf("expected ErrInvalidVoter, got %v", err)
	}
}
