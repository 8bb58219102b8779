package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"investflow/internal/approval"
	"investflow/internal/storage"
)

// ProposalStore persists proposals, their frozen voter sets, and votes.
type ProposalStore interface {
	InsertProposal(ctx context.Context, rec storage.ProposalRecord) error
	SaveVote(ctx context.Context, proposalID, voterID, decision string, votedAt time.Time, state string) error
	UpdateProposalState(ctx context.Context, proposalID, state string) error
	ListProposals(ctx context.Context) ([]storage.ProposalRecord, error)
}

// ApprovalService fronts the in-memory tracker with persistence and
// event publishing. The tracker holds the authoritative state while the
// process runs; storage exists to survive restarts.
type ApprovalService struct {
	tracker   *approval.Tracker
	storage   ProposalStore
	publisher EventPublisher
}

func NewApprovalService(tracker *approval.Tracker, store ProposalStore, publisher EventPublisher) *ApprovalService {
	return &ApprovalService{
		tracker:   tracker,
		storage:   store,
		publisher: publisher,
	}
}

// Rehydrate rebuilds the tracker from persisted proposals. Call once at
// startup before serving requests.
func (s *ApprovalService) Rehydrate(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}
	recs, err := s.storage.ListProposals(ctx)
	if err != nil {
		return fmt.Errorf("list proposals: %w", err)
	}
	for _, rec := range recs {
		voters := make([]string, 0, len(rec.Voters))
		votes := make(map[string]approval.VoteRecord)
		for _, v := range rec.Voters {
			voters = append(voters, v.VoterID)
			if v.Decision != "" {
				votes[v.VoterID] = approval.VoteRecord{
					Decision: approval.Decision(v.Decision),
					VotedAt:  v.VotedAt,
				}
			}
		}
		err := s.tracker.Restore(approval.CreateParams{
			Proposal: approval.Proposal{
				ID:         rec.ID,
				ProjectID:  rec.ProjectID,
				Title:      rec.Title,
				Type:       rec.Type,
				ProposedBy: rec.ProposedBy,
				ProposedAt: rec.ProposedAt,
			},
			Voters: voters,
		}, approval.State(rec.State), votes)
		if err != nil {
			return fmt.Errorf("restore proposal %s: %w", rec.ID, err)
		}
	}
	slog.InfoContext(ctx, "Rehydrated proposals", "count", len(recs))
	return nil
}

// CreateProposal registers a proposal and persists it.
func (s *ApprovalService) CreateProposal(ctx context.Context, params approval.CreateParams) (approval.Snapshot, error) {
	if params.ID == "" {
		params.ID = uuid.NewString()
	}
	if params.ProposedAt.IsZero() {
		params.ProposedAt = time.Now()
	}

	snap, err := s.tracker.Create(params)
	if err != nil {
		return approval.Snapshot{}, err
	}

	if s.storage != nil {
		rec := storage.ProposalRecord{
			ID:         snap.ID,
			ProjectID:  snap.ProjectID,
			Title:      snap.Title,
			Type:       snap.Type,
			ProposedBy: snap.ProposedBy,
			ProposedAt: snap.ProposedAt,
			State:      string(snap.State),
		}
		for _, voterID := range params.Voters {
			v := storage.VoterRecord{VoterID: voterID}
			if vote, ok := snap.Votes[voterID]; ok {
				v.Decision = string(vote.Decision)
				v.VotedAt = vote.VotedAt
			}
			rec.Voters = append(rec.Voters, v)
		}
		if err := s.storage.InsertProposal(ctx, rec); err != nil {
			return approval.Snapshot{}, fmt.Errorf("persist proposal: %w", err)
		}
	}

	s.announceIfResolved(ctx, snap)
	return snap, nil
}

// CastVote records one vote, persists it, and announces resolution when
// the vote was decisive.
func (s *ApprovalService) CastVote(ctx context.Context, proposalID, voterID string, decision approval.Decision) (approval.Snapshot, error) {
	snap, err := s.tracker.CastVote(proposalID, voterID, decision)
	if err != nil {
		return approval.Snapshot{}, err
	}

	if s.storage != nil {
		vote := snap.Votes[voterID]
		err := s.storage.SaveVote(ctx, proposalID, voterID,
			string(vote.Decision), vote.VotedAt, string(snap.State))
		if err != nil {
			slog.ErrorContext(ctx, "Failed to persist vote",
				"proposal_id", proposalID, "voter_id", voterID, "error", err)
			// The tracker already accepted the vote; surface the snapshot.
		}
	}

	s.announceIfResolved(ctx, snap)
	return snap, nil
}

// Withdraw retracts an open proposal.
func (s *ApprovalService) Withdraw(ctx context.Context, proposalID, byParticipantID string) (approval.Snapshot, error) {
	snap, err := s.tracker.Withdraw(proposalID, byParticipantID)
	if err != nil {
		return approval.Snapshot{}, err
	}
	if s.storage != nil {
		if err := s.storage.UpdateProposalState(ctx, proposalID, string(snap.State)); err != nil {
			slog.ErrorContext(ctx, "Failed to persist withdrawal",
				"proposal_id", proposalID, "error", err)
		}
	}
	return snap, nil
}

// Progress reports the display tally for one proposal.
func (s *ApprovalService) Progress(proposalID string) (approval.Progress, error) {
	return s.tracker.Progress(proposalID)
}

// Get returns one proposal snapshot.
func (s *ApprovalService) Get(proposalID string) (approval.Snapshot, error) {
	return s.tracker.Get(proposalID)
}

// List returns every proposal ordered by creation time.
func (s *ApprovalService) List() []approval.Snapshot {
	return s.tracker.List()
}

func (s *ApprovalService) announceIfResolved(ctx context.Context, snap approval.Snapshot) {
	if snap.State != approval.StateApproved && snap.State != approval.StateRejected {
		return
	}
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishProposalResolved(ctx, snap.ID, snap.ProjectID, string(snap.State))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish proposal resolution",
			"proposal_id", snap.ID, "state", string(snap.State), "error", err)
	}
}
