// Package approval tracks modification proposals that need every
// participant's consent before taking effect ("privilege chain").
//
// The voter set is frozen when a proposal is created; participants who join
// the project afterwards do not join open proposals. The vote tally is
// always recomputed from the per-voter map, never stored on its own.
//
// Policy decisions, deliberate and tested:
//   - a voter cannot change a cast vote (ErrAlreadyVoted),
//   - a single rejection vetoes the proposal immediately.
package approval

import (
	"errors"
	"sort"
	"sync"
	"time"
)

const (
	StateOpen      State = "open"
	StateApproved  State = "resolved-approved"
	StateRejected  State = "resolved-rejected"
	StateWithdrawn State = "withdrawn"

	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

var (
	ErrUnknownProposal = errors.New("unknown proposal")
	ErrDuplicateID     = errors.New("proposal id already exists")
	ErrEmptyVoterSet   = errors.New("proposal needs at least one eligible voter")
	ErrInvalidVoter    = errors.New("voter is not in the proposal's voter set")
	ErrInvalidDecision = errors.New("invalid vote decision")
	ErrAlreadyVoted    = errors.New("participant already voted")
	ErrAlreadyResolved = errors.New("proposal is already resolved")
	ErrNotProposer     = errors.New("only the proposer may withdraw")
)

type (
	State    string
	Decision string

	// Tally is derived from the vote map after every mutation.
	Tally struct {
		Approved int
		Rejected int
		Total    int
	}

	// Progress is the display-oriented view of a tally. Percent is the
	// exact approved/total ratio scaled to 100.
	Progress struct {
		Approved int
		Rejected int
		Total    int
		Percent  float64
	}

	// VoteRecord is one participant's cast vote.
	VoteRecord struct {
		Decision Decision
		VotedAt  time.Time
	}

	// Proposal is the immutable identity of a modification request.
	Proposal struct {
		ID         string
		ProjectID  string
		Title      string
		Type       string // e.g. "timeline", "capital", "spending"
		ProposedBy string
		ProposedAt time.Time
	}

	// Snapshot is a point-in-time copy handed to callers; mutating it has
	// no effect on the tracker.
	Snapshot struct {
		Proposal
		State State
		Tally Tally
		Votes map[string]VoteRecord
	}

	// CreateParams describes a new proposal and its frozen voter set.
	CreateParams struct {
		Proposal
		Voters []string
		// ProposerAutoApproves records an approving vote for the proposer
		// at creation, matching the app's "creator auto-approves" flow.
		ProposerAutoApproves bool
	}

	tracked struct {
		mu       sync.Mutex
		proposal Proposal
		state    State
		voters   map[string]struct{}
		votes    map[string]VoteRecord
	}
)

// Tracker holds open and resolved proposals. Vote casting is an atomic
// read-modify-write serialized per proposal, so concurrent votes cannot
// corrupt the tally.
type Tracker struct {
	mu        sync.RWMutex
	proposals map[string]*tracked
	now       func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		proposals: make(map[string]*tracked),
		now:       time.Now,
	}
}

// NewTrackerAt pins the tracker's clock, for tests and replays.
func NewTrackerAt(now func() time.Time) *Tracker {
	t := NewTracker()
	t.now = now
	return t
}

// Create registers a proposal with its voter set frozen as of now.
func (t *Tracker) Create(params CreateParams) (Snapshot, error) {
	if len(params.Voters) == 0 {
		return Snapshot{}, ErrEmptyVoterSet
	}

	p := &tracked{
		proposal: params.Proposal,
		state:    StateOpen,
		voters:   make(map[string]struct{}, len(params.Voters)),
		votes:    make(map[string]VoteRecord),
	}
	for _, v := range params.Voters {
		p.voters[v] = struct{}{}
	}
	if params.ProposerAutoApproves {
		if _, ok := p.voters[params.ProposedBy]; ok {
			p.votes[params.ProposedBy] = VoteRecord{Decision: DecisionApproved, VotedAt: t.now()}
			p.resolve()
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.proposals[params.ID]; exists {
		return Snapshot{}, ErrDuplicateID
	}
	t.proposals[params.ID] = p
	return p.snapshot(), nil
}

// Restore loads a previously persisted proposal with its cast votes and
// state, used to rebuild the tracker from storage at startup.
func (t *Tracker) Restore(params CreateParams, state State, votes map[string]VoteRecord) error {
	if len(params.Voters) == 0 {
		return ErrEmptyVoterSet
	}

	p := &tracked{
		proposal: params.Proposal,
		state:    state,
		voters:   make(map[string]struct{}, len(params.Voters)),
		votes:    make(map[string]VoteRecord, len(votes)),
	}
	for _, v := range params.Voters {
		p.voters[v] = struct{}{}
	}
	for voterID, rec := range votes {
		if _, ok := p.voters[voterID]; !ok {
			return ErrInvalidVoter
		}
		p.votes[voterID] = rec
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.proposals[params.ID]; exists {
		return ErrDuplicateID
	}
	t.proposals[params.ID] = p
	return nil
}

// CastVote records a vote and re-evaluates resolution. A voter outside the
// frozen set fails with ErrInvalidVoter; a terminal proposal fails with
// ErrAlreadyResolved; a repeat vote fails with ErrAlreadyVoted. None of the
// failure paths change the tally.
func (t *Tracker) CastVote(proposalID, voterID string, decision Decision) (Snapshot, error) {
	if decision != DecisionApproved && decision != DecisionRejected {
		return Snapshot{}, ErrInvalidDecision
	}
	p, err := t.lookup(proposalID)
	if err != nil {
		return Snapshot{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.voters[voterID]; !ok {
		return Snapshot{}, ErrInvalidVoter
	}
	if p.state != StateOpen {
		return Snapshot{}, ErrAlreadyResolved
	}
	if _, voted := p.votes[voterID]; voted {
		return Snapshot{}, ErrAlreadyVoted
	}

	p.votes[voterID] = VoteRecord{Decision: decision, VotedAt: t.now()}
	p.resolve()
	return p.snapshot(), nil
}

// Withdraw moves an open proposal to the withdrawn terminal state.
func (t *Tracker) Withdraw(proposalID, byParticipantID string) (Snapshot, error) {
	p, err := t.lookup(proposalID)
	if err != nil {
		return Snapshot{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if byParticipantID != p.proposal.ProposedBy {
		return Snapshot{}, ErrNotProposer
	}
	if p.state != StateOpen {
		return Snapshot{}, ErrAlreadyResolved
	}
	p.state = StateWithdrawn
	return p.snapshot(), nil
}

// Progress reports the tally for display purposes.
func (t *Tracker) Progress(proposalID string) (Progress, error) {
	p, err := t.lookup(proposalID)
	if err != nil {
		return Progress{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tally := p.tally()
	return Progress{
		Approved: tally.Approved,
		Rejected: tally.Rejected,
		Total:    tally.Total,
		Percent:  float64(tally.Approved) / float64(tally.Total) * 100,
	}, nil
}

// Get returns a snapshot of one proposal.
func (t *Tracker) Get(proposalID string) (Snapshot, error) {
	p, err := t.lookup(proposalID)
	if err != nil {
		return Snapshot{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot(), nil
}

// List returns snapshots of every tracked proposal, ordered by creation
// time then id for determinism.
func (t *Tracker) List() []Snapshot {
	t.mu.RLock()
	all := make([]*tracked, 0, len(t.proposals))
	for _, p := range t.proposals {
		all = append(all, p)
	}
	t.mu.RUnlock()

	out := make([]Snapshot, 0, len(all))
	for _, p := range all {
		p.mu.Lock()
		out = append(out, p.snapshot())
		p.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ProposedAt.Equal(out[j].ProposedAt) {
			return out[i].ProposedAt.Before(out[j].ProposedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (t *Tracker) lookup(id string) (*tracked, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.proposals[id]
	if !ok {
		return nil, ErrUnknownProposal
	}
	return p, nil
}

// tally recomputes counts from the vote map. Callers hold p.mu.
func (p *tracked) tally() Tally {
	t := Tally{Total: len(p.voters)}
	for _, v := range p.votes {
		switch v.Decision {
		case DecisionApproved:
			t.Approved++
		case DecisionRejected:
			t.Rejected++
		}
	}
	return t
}

// resolve applies the unanimity rule. Callers hold p.mu.
func (p *tracked) resolve() {
	if p.state != StateOpen {
		return
	}
	tally := p.tally()
	switch {
	case tally.Rejected >= 1:
		p.state = StateRejected
	case tally.Approved == tally.Total:
		p.state = StateApproved
	}
}

func (p *tracked) snapshot() Snapshot {
	votes := make(map[string]VoteRecord, len(p.votes))
	for k, v := range p.votes {
		votes[k] = v
	}
	return Snapshot{
		Proposal: p.proposal,
		State:    p.state,
		Tally:    p.tally(),
		Votes:    votes,
	}
}
