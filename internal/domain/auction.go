package domain

import "time"

// AuctionStatus enumerates auction lifecycle states.
// active is the only non-terminal state.
type AuctionStatus string

const (
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusCancelled AuctionStatus = "cancelled"
	AuctionStatusCompleted AuctionStatus = "completed"
)

// BidStatus tracks the escrow held for a bid.
type BidStatus string

const (
	BidStatusHeld     BidStatus = "held"
	BidStatusRefunded BidStatus = "refunded"
	BidStatusCaptured BidStatus = "captured"
)

// Auction lists an item owned by a model for coin bids.
type Auction struct {
	ID              string
	OwnerActorID    string
	Title           string
	StartingBid     int64
	BuyNowPrice     *int64
	CurrentBid      *int64
	HighestBidderID *string
	WinnerActorID   *string
	Status          AuctionStatus
	EndsAt          time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Bid is a coin bid; Held bids have their amount escrowed.
type Bid struct {
	ID            string
	AuctionID     string
	BidderActorID string
	Amount        int64
	Status        BidStatus
	CreatedAt     time.Time
}
