package events

import (
	"time"

	"github.com/spec-kit/talent-ledger/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBalanceChanged      EventType = "balance_changed"
	EventAuctionCancelled    EventType = "auction_cancelled"
	EventAuctionSold         EventType = "auction_sold"
	EventCallSettled         EventType = "call_settled"
	EventGigInvitationIssued EventType = "gig_invitation_issued"
	EventGigAccepted         EventType = "gig_accepted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string           `json:"id,omitempty"`
	Type domain.ActorType `json:"type,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// BalanceChangedPayload payload.
type BalanceChangedPayload struct {
	Operation   string `json:"operation"`
	ReferenceID string `json:"reference_id,omitempty"`
	Balance     int64  `json:"balance"`
}

// AuctionCancelledPayload payload.
type AuctionCancelledPayload struct {
	AuctionID    string `json:"auction_id"`
	RefundedBids int    `json:"refunded_bids"`
}

// AuctionSoldPayload payload.
type AuctionSoldPayload struct {
	AuctionID string `json:"auction_id"`
	Price     int64  `json:"price"`
}

// CallSettledPayload payload.
type CallSettledPayload struct {
	CallID          string `json:"call_id"`
	DurationSeconds int64  `json:"duration_seconds"`
	Cost            int64  `json:"cost"`
}

// GigInvitationIssuedPayload carries the accept link for the invited model.
// AcceptURL embeds a bearer token and must only reach the invitee.
type GigInvitationIssuedPayload struct {
	GigID          string `json:"gig_id"`
	GigTitle       string `json:"gig_title"`
	ModelProfileID string `json:"model_profile_id"`
	AcceptURL      string `json:"-"`
}

// GigAcceptedPayload payload.
type GigAcceptedPayload struct {
	GigID          string `json:"gig_id"`
	ModelProfileID string `json:"model_profile_id"`
}
