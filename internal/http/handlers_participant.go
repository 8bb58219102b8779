package http

import (
	"net/http"

	"investflow/internal/privacy"
)

type privacyPayload struct {
	ProjectID            string  `json:"projectId"`
	IsAnonymous          bool    `json:"isAnonymous"`
	DisplayName          *string `json:"displayName,omitempty"`
	ShowInvestmentAmount *bool   `json:"showInvestmentAmount,omitempty"`
}

// handleProjectParticipants returns the roster as the viewer may see it.
// The viewer's identity comes from the "viewer" query parameter; a real
// deployment would take it from the session.
func (s *Server) handleProjectParticipants(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")
	viewerID := r.URL.Query().Get("viewer")

	views, err := s.participants.ResolveRoster(r.Context(), projectID, viewerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if views == nil {
		views = []privacy.View{}
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleUpdatePrivacy(w http.ResponseWriter, r *http.Request) {
	participantID := r.PathValue("participantID")

	var payload privacyPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.ProjectID == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "projectId is required"})
		return
	}

	updated, err := s.participants.UpdatePrivacy(r.Context(), participantID, payload.ProjectID,
		payload.IsAnonymous, privacy.Options{
			DisplayName:          payload.DisplayName,
			ShowInvestmentAmount: payload.ShowInvestmentAmount,
		})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.PrivacySettings[payload.ProjectID])
}
