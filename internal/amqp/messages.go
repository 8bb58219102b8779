package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Routing keys double as the envelope type discriminator. The worker's
// queue is bound to TypeExpenseRecorded only; proposal resolutions go to
// the exchange for other consumers.
const (
	TypeExpenseRecorded  = "expense.recorded"
	TypeProposalResolved = "proposal.resolved"
)

// ExpenseRecordedMessage tells the export worker that an expense was
// recorded. Only the ID travels on the wire, the worker fetches the full
// record from the database.
type ExpenseRecordedMessage struct {
	Type      string    `json:"type"`
	ExpenseID string    `json:"expenseId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseRecordedMessage(expenseID string) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		Type:      TypeExpenseRecorded,
		ExpenseID: expenseID,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON decodes and validates the envelope. A
// payload of any other type fails here, so the consumer drops it instead
// of requeueing it.
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type != TypeExpenseRecorded {
		return nil, fmt.Errorf("unexpected message type %q", msg.Type)
	}
	if msg.ExpenseID == "" {
		return nil, fmt.Errorf("expense recorded message without expense id")
	}
	return &msg, nil
}

// ProposalResolvedMessage announces that a proposal reached a terminal
// state, so interested parties can react (notifications, audit).
type ProposalResolvedMessage struct {
	Type       string    `json:"type"`
	ProposalID string    `json:"proposalId"`
	ProjectID  string    `json:"projectId"`
	State      string    `json:"state"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewProposalResolvedMessage(proposalID, projectID, state string) *ProposalResolvedMessage {
	return &ProposalResolvedMessage{
		Type:       TypeProposalResolved,
		ProposalID: proposalID,
		ProjectID:  projectID,
		State:      state,
		Timestamp:  time.Now(),
	}
}

func (m *ProposalResolvedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ProposalResolvedMessageFromJSON(data []byte) (*ProposalResolvedMessage, error) {
	var msg ProposalResolvedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type != TypeProposalResolved {
		return nil, fmt.Errorf("unexpected message type %q", msg.Type)
	}
	return &msg, nil
}
