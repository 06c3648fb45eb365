package dto

import (
	"time"

	"github.com/spec-kit/talent-ledger/internal/domain"
)

// PlaceBidRequest payload.
type PlaceBidRequest struct {
	Amount int64 `json:"amount"`
}

// AuctionResponse describes an auction listing.
type AuctionResponse struct {
	ID              string               `json:"id"`
	OwnerActorID    string               `json:"owner_actor_id"`
	Title           string               `json:"title"`
	StartingBid     int64                `json:"starting_bid"`
	BuyNowPrice     *int64               `json:"buy_now_price"`
	CurrentBid      *int64               `json:"current_bid"`
	HighestBidderID *string              `json:"highest_bidder_id"`
	WinnerActorID   *string              `json:"winner_actor_id,omitempty"`
	Status          domain.AuctionStatus `json:"status"`
	EndsAt          time.Time            `json:"ends_at"`
	CreatedAt       time.Time            `json:"created_at"`
}

// BidResponse describes an accepted bid.
type BidResponse struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	Amount    int64  `json:"amount"`
	Balance   int64  `json:"balance"`
}

// BuyNowResponse describes a buy-now purchase.
type BuyNowResponse struct {
	AuctionID string `json:"auction_id"`
	Price     int64  `json:"price"`
	Balance   int64  `json:"balance"`
}

// CancelAuctionResponse describes a cancelled auction.
type CancelAuctionResponse struct {
	AuctionID    string `json:"auction_id"`
	RefundedBids int    `json:"refunded_bids"`
	Balance      int64  `json:"balance"`
}
