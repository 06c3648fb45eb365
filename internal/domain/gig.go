package domain

import "time"

// InvitationStatus enumerates gig invitation states.
type InvitationStatus string

const (
	InvitationStatusInvited  InvitationStatus = "invited"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
)

// Gig is a paid job posted by a brand.
type Gig struct {
	ID           string
	BrandActorID string
	Title        string
	CreatedAt    time.Time
}

// GigInvitation invites a model profile to a gig.
type GigInvitation struct {
	GigID          string
	ModelProfileID string
	Status         InvitationStatus
	InvitedAt      time.Time
	RespondedAt    *time.Time
}
