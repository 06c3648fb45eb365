// Package ledger is the only path through which coin balances change.
// Each method maps to one atomic database procedure that checks its
// preconditions and mutates in the same transaction; callers never combine
// a read and a write themselves.
package ledger

import (
	"context"
	"fmt"
)

// Procedure names, as installed by the migrations.
const (
	ProcCredit        = "coin_credit"
	ProcDebit         = "coin_debit"
	ProcTransfer      = "coin_transfer"
	ProcPlaceBid      = "auction_place_bid"
	ProcBuyNow        = "auction_buy_now"
	ProcCancelAuction = "auction_cancel"
	ProcSettleCall    = "call_settle"
)

// Messages raised by the procedures. The Postgres functions use the same text.
const (
	MsgInsufficientBalance = "insufficient balance"
	MsgInvalidAmount       = "invalid amount"
	MsgTransferToSelf      = "cannot transfer to self"
	MsgActorNotFound       = "actor not found"
	MsgAuctionNotFound     = "auction not found"
	MsgAuctionNotActive    = "auction not active"
	MsgAuctionEnded        = "auction has ended"
	MsgOwnAuction          = "cannot bid on own auction"
	MsgBidTooLow           = "bid too low"
	MsgNotAuctionOwner     = "not auction owner"
	MsgBuyNowUnavailable   = "buy now not available"
	MsgCallNotFound        = "call not found"
	MsgCallSettled         = "call already settled"
	MsgNotCallParticipant  = "not call participant"
	MsgInvalidDuration     = "invalid duration"
)

// ProcedureError is a failure reported by a procedure.
type ProcedureError struct {
	Procedure string
	Message   string
}

func (e *ProcedureError) Error() string {
	return fmt.Sprintf("%s: %s", e.Procedure, e.Message)
}

// Operations is the typed boundary to the atomic balance procedures.
type Operations interface {
	Balance(ctx context.Context, actorID string) (int64, error)
	Credit(ctx context.Context, req CreditRequest) (*EntryResult, error)
	Debit(ctx context.Context, req DebitRequest) (*EntryResult, error)
	Transfer(ctx context.Context, req TransferRequest) (*EntryResult, error)
	PlaceBid(ctx context.Context, req PlaceBidRequest) (*BidResult, error)
	BuyNow(ctx context.Context, req BuyNowRequest) (*BuyNowResult, error)
	CancelAuction(ctx context.Context, req CancelAuctionRequest) (*CancelAuctionResult, error)
	SettleCall(ctx context.Context, req SettleCallRequest) (*SettleCallResult, error)
}

// CreditRequest adds coins to an actor.
type CreditRequest struct {
	ActorID     string
	Amount      int64
	Reason      string
	ReferenceID string
}

// DebitRequest removes coins from an actor.
type DebitRequest struct {
	ActorID     string
	Amount      int64
	Reason      string
	ReferenceID string
}

// TransferRequest moves coins between two actors.
type TransferRequest struct {
	FromActorID string
	ToActorID   string
	Amount      int64
}

// EntryResult identifies the coin transaction written for the caller.
type EntryResult struct {
	TransactionID string
}

// PlaceBidRequest escrows Amount from the bidder.
type PlaceBidRequest struct {
	AuctionID     string
	BidderActorID string
	Amount        int64
}

// BidResult identifies the accepted bid.
type BidResult struct {
	BidID string
}

// BuyNowRequest purchases an auction at its buy-now price.
type BuyNowRequest struct {
	AuctionID    string
	BuyerActorID string
}

// BuyNowResult reports the captured price.
type BuyNowResult struct {
	Price int64
}

// CancelAuctionRequest cancels an active auction on behalf of its owner.
type CancelAuctionRequest struct {
	AuctionID    string
	OwnerActorID string
}

// CancelAuctionResult reports how many escrowed bids were refunded.
type CancelAuctionResult struct {
	RefundedBids int
}

// SettleCallRequest charges a finished call to the fan who placed it.
type SettleCallRequest struct {
	CallID          string
	FanActorID      string
	DurationSeconds int64
}

// SettleCallResult reports the charged cost.
type SettleCallResult struct {
	Cost int64
}

var (
	_ Operations = (*Postgres)(nil)
	_ Operations = (*Memory)(nil)
)
