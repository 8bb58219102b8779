package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"investflow/internal/core"
	"investflow/internal/storage"
)

type fakeExpenseStore struct {
	mu       sync.Mutex
	expenses []core.Expense
	failNext error
}

func (f *fakeExpenseStore) InsertExpense(_ context.Context, e core.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.expenses = append(f.expenses, e)
	return nil
}

func (f *fakeExpenseStore) GetExpense(_ context.Context, id string) (core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, errors.New("not found")
}

func (f *fakeExpenseStore) ListExpenses(_ context.Context, start, end core.Date) ([]core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Expense
	for _, e := range f.expenses {
		if e.Date.Before(start.Time) || e.Date.After(end.Time) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakePublisher struct {
	mu         sync.Mutex
	expenses   []string
	resolved   map[string]string
	publishErr error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{resolved: make(map[string]string)}
}

func (f *fakePublisher) PublishExpenseRecorded(_ context.Context, expenseID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.expenses = append(f.expenses, expenseID)
	return nil
}

func (f *fakePublisher) PublishProposalResolved(_ context.Context, proposalID, _, state string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.resolved[proposalID] = state
	return nil
}

type fakeProposalStore struct {
	mu    sync.Mutex
	recs  map[string]*storage.ProposalRecord
	order []string
}

func newFakeProposalStore() *fakeProposalStore {
	return &fakeProposalStore{recs: make(map[string]*storage.ProposalRecord)}
}

func (f *fakeProposalStore) InsertProposal(_ context.Context, rec storage.ProposalRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := rec
	f.recs[rec.ID] = &cp
	f.order = append(f.order, rec.ID)
	return nil
}

func (f *fakeProposalStore) SaveVote(_ context.Context, proposalID, voterID, decision string, votedAt time.Time, state string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[proposalID]
	if !ok {
		return errors.New("unknown proposal")
	}
	for i := range rec.Voters {
		if rec.Voters[i].VoterID == voterID {
			rec.Voters[i].Decision = decision
			rec.Voters[i].VotedAt = votedAt
		}
	}
	rec.State = state
	return nil
}

func (f *fakeProposalStore) UpdateProposalState(_ context.Context, proposalID, state string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[proposalID]
	if !ok {
		return errors.New("unknown proposal")
	}
	rec.State = state
	return nil
}

func (f *fakeProposalStore) ListProposals(_ context.Context) ([]storage.ProposalRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]storage.ProposalRecord, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.recs[id])
	}
	return out, nil
}

type fakeParticipantStore struct {
	mu           sync.Mutex
	participants map[string]core.Participant
	projects     map[string]core.Project
}

func newFakeParticipantStore() *fakeParticipantStore {
	return &fakeParticipantStore{
		participants: make(map[string]core.Participant),
		projects:     make(map[string]core.Project),
	}
}

func (f *fakeParticipantStore) GetParticipant(_ context.Context, id string) (core.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[id]
	if !ok {
		return core.Participant{}, errors.New("not found")
	}
	return p, nil
}

func (f *fakeParticipantStore) UpsertParticipant(_ context.Context, p core.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.participants[p.ID] = p
	return nil
}

func (f *fakeParticipantStore) GetProject(_ context.Context, id string) (core.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pr, ok := f.projects[id]
	if !ok {
		return core.Project{}, errors.New("not found")
	}
	return pr, nil
}

func (f *fakeParticipantStore) ListProjectParticipants(_ context.Context, projectID string) ([]core.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pr, ok := f.projects[projectID]
	if !ok {
		return nil, errors.New("not found")
	}
	out := make([]core.Participant, 0, len(pr.Investors))
	for _, id := range pr.Investors {
		out = append(out, f.participants[id])
	}
	return out, nil
}
