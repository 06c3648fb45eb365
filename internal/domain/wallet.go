package domain

import "time"

// Balance is the coin balance of an actor. Coins never go negative.
type Balance struct {
	ActorID   string
	Coins     int64
	UpdatedAt time.Time
}

// CoinTransaction is an immutable ledger line; Amount is signed.
type CoinTransaction struct {
	ID          string
	ActorID     string
	Amount      int64
	Reason      string
	ReferenceID string
	CreatedAt   time.Time
}

// Ledger reasons recorded on coin transactions.
const (
	ReasonGrant        = "grant"
	ReasonDebit        = "debit"
	ReasonTransferOut  = "transfer_out"
	ReasonTransferIn   = "transfer_in"
	ReasonBidEscrow    = "bid_escrow"
	ReasonBidRefund    = "bid_refund"
	ReasonAuctionBuy   = "auction_buy_now"
	ReasonAuctionSale  = "auction_sale"
	ReasonCallCharge   = "call_charge"
	ReasonCallEarnings = "call_earnings"

	ReasonContentUnlock = "content_unlock"
	ReasonProfileBoost  = "profile_boost"
)

// SpendReason reports whether reason is a purchase an actor may pay for
// from their own balance.
func SpendReason(reason string) bool {
	switch reason {
	case ReasonContentUnlock, ReasonProfileBoost:
		return true
	}
	return false
}
