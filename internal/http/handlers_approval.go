package http

import (
	"log/slog"
	"net/http"

	"investflow/internal/approval"
	"investflow/internal/log"
)

type (
	proposalPayload struct {
		ProjectID            string   `json:"projectId"`
		Title                string   `json:"title"`
		Type                 string   `json:"type"`
		ProposedBy           string   `json:"proposedBy"`
		Voters               []string `json:"voters"`
		ProposerAutoApproves bool     `json:"proposerAutoApproves,omitempty"`
	}

	votePayload struct {
		VoterID  string `json:"voterId"`
		Decision string `json:"decision"`
	}

	withdrawPayload struct {
		ParticipantID string `json:"participantId"`
	}
)

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	var payload proposalPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	snap, err := s.approvals.CreateProposal(r.Context(), approval.CreateParams{
		Proposal: approval.Proposal{
			ProjectID:  payload.ProjectID,
			Title:      payload.Title,
			Type:       payload.Type,
			ProposedBy: payload.ProposedBy,
		},
		Voters:               payload.Voters,
		ProposerAutoApproves: payload.ProposerAutoApproves,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Proposal created",
		log.FieldProposalID, snap.ID,
		log.FieldProjectID, snap.ProjectID,
		"voters", snap.Tally.Total,
		log.FieldComponent, log.ComponentHTTP,
		log.FieldOperation, log.OpCreate)
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleListProposals(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.approvals.List())
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	snap, err := s.approvals.Get(r.PathValue("proposalID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleProposalProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.approvals.Progress(r.PathValue("proposalID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("proposalID")

	var payload votePayload
	if !decodeBody(w, r, &payload) {
		return
	}

	snap, err := s.approvals.CastVote(r.Context(), proposalID, payload.VoterID,
		approval.Decision(payload.Decision))
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Vote recorded",
		log.FieldProposalID, proposalID,
		log.FieldState, string(snap.State),
		"approved", snap.Tally.Approved,
		"total", snap.Tally.Total,
		log.FieldComponent, log.ComponentHTTP,
		log.FieldOperation, log.OpVote)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleWithdrawProposal(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("proposalID")

	var payload withdrawPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	snap, err := s.approvals.Withdraw(r.Context(), proposalID, payload.ParticipantID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
