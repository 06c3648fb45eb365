package dto

import (
	"time"

	"github.com/spec-kit/talent-ledger/internal/domain"
)

// InviteModelRequest payload for POST /gigs/:id/invitations.
type InviteModelRequest struct {
	ModelProfileID string `json:"model_profile_id"`
}

// GigInvitationResponse never includes the accept link.
type GigInvitationResponse struct {
	GigID          string                  `json:"gig_id"`
	ModelProfileID string                  `json:"model_profile_id"`
	Status         domain.InvitationStatus `json:"status"`
	InvitedAt      time.Time               `json:"invited_at"`
	RespondedAt    *time.Time              `json:"responded_at"`
}
