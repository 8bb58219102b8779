package services

import (
	"context"
	"fmt"

	"investflow/internal/core"
	"investflow/internal/privacy"
)

// ParticipantStore persists participants, projects, and memberships.
type ParticipantStore interface {
	GetParticipant(ctx context.Context, id string) (core.Participant, error)
	UpsertParticipant(ctx context.Context, p core.Participant) error
	GetProject(ctx context.Context, id string) (core.Project, error)
	ListProjectParticipants(ctx context.Context, projectID string) ([]core.Participant, error)
}

// ParticipantService answers visibility questions for a project roster
// and applies privacy setting changes.
type ParticipantService struct {
	storage ParticipantStore
}

func NewParticipantService(store ParticipantStore) *ParticipantService {
	return &ParticipantService{storage: store}
}

// ResolveRoster returns the project's participants as the viewer is
// allowed to see them. The viewer's admin status comes from the project
// record, never from the request.
func (s *ParticipantService) ResolveRoster(ctx context.Context, projectID, viewerID string) ([]privacy.View, error) {
	project, err := s.storage.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	participants, err := s.storage.ListProjectParticipants(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}

	return privacy.ResolveAll(participants, projectID, viewerID, project.IsAdmin(viewerID)), nil
}

// UpdatePrivacy merges a participant's privacy change for one project
// and persists the result.
func (s *ParticipantService) UpdatePrivacy(ctx context.Context, participantID, projectID string, isAnonymous bool, opts privacy.Options) (core.Participant, error) {
	p, err := s.storage.GetParticipant(ctx, participantID)
	if err != nil {
		return core.Participant{}, fmt.Errorf("load participant: %w", err)
	}

	p.PrivacySettings = privacy.UpdateSettings(p.PrivacySettings, projectID, isAnonymous, opts)
	if err := s.storage.UpsertParticipant(ctx, p); err != nil {
		return core.Participant{}, fmt.Errorf("save participant: %w", err)
	}
	return p, nil
}
