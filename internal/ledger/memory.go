package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/talent-ledger/internal/domain"
)

// Memory is an in-process ledger that serializes every operation behind one
// lock. It raises the same messages as the Postgres procedures and backs
// tests and local runs without a database.
type Memory struct {
	mu           sync.Mutex
	now          func() time.Time
	balances     map[string]int64
	transactions []domain.CoinTransaction
	auctions     map[string]*domain.Auction
	bids         map[string][]*domain.Bid
	calls        map[string]*domain.CallSession
}

// NewMemory builds an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{
		now:      time.Now,
		balances: make(map[string]int64),
		auctions: make(map[string]*domain.Auction),
		bids:     make(map[string][]*domain.Bid),
		calls:    make(map[string]*domain.CallSession),
	}
}

// WithNowFunc overrides the time source.
func (m *Memory) WithNowFunc(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// OpenAccount provisions a balance row for actorID.
func (m *Memory) OpenAccount(actorID string, coins int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[actorID] = coins
}

// AddAuction stores a copy of auction.
func (m *Memory) AddAuction(auction domain.Auction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if auction.Status == "" {
		auction.Status = domain.AuctionStatusActive
	}
	m.auctions[auction.ID] = &auction
}

// Auction returns a snapshot of the stored auction.
func (m *Memory) Auction(id string) (domain.Auction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[id]
	if !ok {
		return domain.Auction{}, false
	}
	return *a, true
}

// Bids returns snapshots of every bid placed on an auction, oldest first.
func (m *Memory) Bids(auctionID string) []domain.Bid {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Bid, 0, len(m.bids[auctionID]))
	for _, b := range m.bids[auctionID] {
		out = append(out, *b)
	}
	return out
}

// AddCall stores a copy of call.
func (m *Memory) AddCall(call domain.CallSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if call.Status == "" {
		call.Status = domain.CallStatusPending
	}
	m.calls[call.ID] = &call
}

// Call returns a snapshot of the stored call.
func (m *Memory) Call(id string) (domain.CallSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calls[id]
	if !ok {
		return domain.CallSession{}, false
	}
	return *c, true
}

// Transactions returns the ledger lines of an actor, newest first.
func (m *Memory) Transactions(actorID string) []domain.CoinTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CoinTransaction
	for i := len(m.transactions) - 1; i >= 0; i-- {
		if m.transactions[i].ActorID == actorID {
			out = append(out, m.transactions[i])
		}
	}
	return out
}

func (m *Memory) Balance(_ context.Context, actorID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	balance, ok := m.balances[actorID]
	if !ok {
		return 0, &ProcedureError{Procedure: "coin_balance", Message: MsgActorNotFound}
	}
	return balance, nil
}

func (m *Memory) Credit(_ context.Context, req CreditRequest) (*EntryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.Amount <= 0 {
		return nil, &ProcedureError{Procedure: ProcCredit, Message: MsgInvalidAmount}
	}
	id, err := m.applyLocked(ProcCredit, req.ActorID, req.Amount, orDefault(req.Reason, domain.ReasonGrant), req.ReferenceID)
	if err != nil {
		return nil, err
	}
	return &EntryResult{TransactionID: id}, nil
}

func (m *Memory) Debit(_ context.Context, req DebitRequest) (*EntryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.Amount <= 0 {
		return nil, &ProcedureError{Procedure: ProcDebit, Message: MsgInvalidAmount}
	}
	id, err := m.applyLocked(ProcDebit, req.ActorID, -req.Amount, orDefault(req.Reason, domain.ReasonDebit), req.ReferenceID)
	if err != nil {
		return nil, err
	}
	return &EntryResult{TransactionID: id}, nil
}

func (m *Memory) Transfer(_ context.Context, req TransferRequest) (*EntryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.Amount <= 0 {
		return nil, &ProcedureError{Procedure: ProcTransfer, Message: MsgInvalidAmount}
	}
	if req.FromActorID == req.ToActorID {
		return nil, &ProcedureError{Procedure: ProcTransfer, Message: MsgTransferToSelf}
	}
	if err := m.requireAccountsLocked(ProcTransfer, req.FromActorID, req.ToActorID); err != nil {
		return nil, err
	}
	if err := m.requireFundsLocked(ProcTransfer, req.FromActorID, req.Amount); err != nil {
		return nil, err
	}
	id, _ := m.applyLocked(ProcTransfer, req.FromActorID, -req.Amount, domain.ReasonTransferOut, req.ToActorID)
	_, _ = m.applyLocked(ProcTransfer, req.ToActorID, req.Amount, domain.ReasonTransferIn, req.FromActorID)
	return &EntryResult{TransactionID: id}, nil
}

func (m *Memory) PlaceBid(_ context.Context, req PlaceBidRequest) (*BidResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.Amount <= 0 {
		return nil, &ProcedureError{Procedure: ProcPlaceBid, Message: MsgInvalidAmount}
	}
	auction, err := m.activeAuctionLocked(ProcPlaceBid, req.AuctionID)
	if err != nil {
		return nil, err
	}
	if auction.OwnerActorID == req.BidderActorID {
		return nil, &ProcedureError{Procedure: ProcPlaceBid, Message: MsgOwnAuction}
	}
	if (auction.CurrentBid == nil && req.Amount < auction.StartingBid) ||
		(auction.CurrentBid != nil && req.Amount <= *auction.CurrentBid) {
		return nil, &ProcedureError{Procedure: ProcPlaceBid, Message: MsgBidTooLow}
	}
	if err := m.requireAccountsLocked(ProcPlaceBid, req.BidderActorID); err != nil {
		return nil, err
	}
	// The bidder may be the current highest bidder, whose escrow comes back first.
	if err := m.requireFundsLocked(ProcPlaceBid, req.BidderActorID, req.Amount-m.heldForLocked(req.AuctionID, req.BidderActorID)); err != nil {
		return nil, err
	}

	m.refundHeldLocked(req.AuctionID)
	_, _ = m.applyLocked(ProcPlaceBid, req.BidderActorID, -req.Amount, domain.ReasonBidEscrow, req.AuctionID)

	bid := &domain.Bid{
		ID:            uuid.NewString(),
		AuctionID:     req.AuctionID,
		BidderActorID: req.BidderActorID,
		Amount:        req.Amount,
		Status:        domain.BidStatusHeld,
		CreatedAt:     m.now(),
	}
	m.bids[req.AuctionID] = append(m.bids[req.AuctionID], bid)

	amount, bidder := req.Amount, req.BidderActorID
	auction.CurrentBid = &amount
	auction.HighestBidderID = &bidder
	auction.UpdatedAt = m.now()
	return &BidResult{BidID: bid.ID}, nil
}

func (m *Memory) BuyNow(_ context.Context, req BuyNowRequest) (*BuyNowResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	auction, err := m.activeAuctionLocked(ProcBuyNow, req.AuctionID)
	if err != nil {
		return nil, err
	}
	if auction.OwnerActorID == req.BuyerActorID {
		return nil, &ProcedureError{Procedure: ProcBuyNow, Message: MsgOwnAuction}
	}
	if auction.BuyNowPrice == nil {
		return nil, &ProcedureError{Procedure: ProcBuyNow, Message: MsgBuyNowUnavailable}
	}
	price := *auction.BuyNowPrice
	if err := m.requireAccountsLocked(ProcBuyNow, req.BuyerActorID, auction.OwnerActorID); err != nil {
		return nil, err
	}
	if err := m.requireFundsLocked(ProcBuyNow, req.BuyerActorID, price-m.heldForLocked(req.AuctionID, req.BuyerActorID)); err != nil {
		return nil, err
	}

	m.refundHeldLocked(req.AuctionID)
	_, _ = m.applyLocked(ProcBuyNow, req.BuyerActorID, -price, domain.ReasonAuctionBuy, req.AuctionID)
	_, _ = m.applyLocked(ProcBuyNow, auction.OwnerActorID, price, domain.ReasonAuctionSale, req.AuctionID)

	buyer := req.BuyerActorID
	auction.Status = domain.AuctionStatusCompleted
	auction.WinnerActorID = &buyer
	auction.UpdatedAt = m.now()
	return &BuyNowResult{Price: price}, nil
}

func (m *Memory) CancelAuction(_ context.Context, req CancelAuctionRequest) (*CancelAuctionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	auction, ok := m.auctions[req.AuctionID]
	if !ok {
		return nil, &ProcedureError{Procedure: ProcCancelAuction, Message: MsgAuctionNotFound}
	}
	if auction.OwnerActorID != req.OwnerActorID {
		return nil, &ProcedureError{Procedure: ProcCancelAuction, Message: MsgNotAuctionOwner}
	}
	if auction.Status != domain.AuctionStatusActive {
		return nil, &ProcedureError{Procedure: ProcCancelAuction, Message: MsgAuctionNotActive}
	}

	refunded := m.refundHeldLocked(req.AuctionID)
	auction.Status = domain.AuctionStatusCancelled
	auction.UpdatedAt = m.now()
	return &CancelAuctionResult{RefundedBids: refunded}, nil
}

func (m *Memory) SettleCall(_ context.Context, req SettleCallRequest) (*SettleCallResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.DurationSeconds > domain.MaxCallDurationSeconds {
		return nil, &ProcedureError{Procedure: ProcSettleCall, Message: MsgInvalidDuration}
	}
	call, ok := m.calls[req.CallID]
	if !ok {
		return nil, &ProcedureError{Procedure: ProcSettleCall, Message: MsgCallNotFound}
	}
	if call.FanActorID != req.FanActorID {
		return nil, &ProcedureError{Procedure: ProcSettleCall, Message: MsgNotCallParticipant}
	}
	if call.Status != domain.CallStatusPending {
		return nil, &ProcedureError{Procedure: ProcSettleCall, Message: MsgCallSettled}
	}

	cost := domain.CallCost(req.DurationSeconds, call.RatePerMinute)
	if cost > 0 {
		if err := m.requireAccountsLocked(ProcSettleCall, call.FanActorID, call.ModelActorID); err != nil {
			return nil, err
		}
		if err := m.requireFundsLocked(ProcSettleCall, call.FanActorID, cost); err != nil {
			return nil, err
		}
		_, _ = m.applyLocked(ProcSettleCall, call.FanActorID, -cost, domain.ReasonCallCharge, call.ID)
		_, _ = m.applyLocked(ProcSettleCall, call.ModelActorID, cost, domain.ReasonCallEarnings, call.ID)
	}

	now := m.now()
	call.Status = domain.CallStatusSettled
	call.DurationSeconds = max(req.DurationSeconds, 0)
	call.Cost = cost
	call.SettledAt = &now
	return &SettleCallResult{Cost: cost}, nil
}

func (m *Memory) applyLocked(proc, actorID string, amount int64, reason, ref string) (string, error) {
	balance, ok := m.balances[actorID]
	if !ok {
		return "", &ProcedureError{Procedure: proc, Message: MsgActorNotFound}
	}
	if balance+amount < 0 {
		return "", &ProcedureError{Procedure: proc, Message: MsgInsufficientBalance}
	}
	m.balances[actorID] = balance + amount
	tx := domain.CoinTransaction{
		ID:          uuid.NewString(),
		ActorID:     actorID,
		Amount:      amount,
		Reason:      reason,
		ReferenceID: ref,
		CreatedAt:   m.now(),
	}
	m.transactions = append(m.transactions, tx)
	return tx.ID, nil
}

func (m *Memory) requireAccountsLocked(proc string, actorIDs ...string) error {
	for _, id := range actorIDs {
		if _, ok := m.balances[id]; !ok {
			return &ProcedureError{Procedure: proc, Message: MsgActorNotFound}
		}
	}
	return nil
}

func (m *Memory) requireFundsLocked(proc, actorID string, amount int64) error {
	if m.balances[actorID] < amount {
		return &ProcedureError{Procedure: proc, Message: MsgInsufficientBalance}
	}
	return nil
}

func (m *Memory) activeAuctionLocked(proc, id string) (*domain.Auction, error) {
	auction, ok := m.auctions[id]
	if !ok {
		return nil, &ProcedureError{Procedure: proc, Message: MsgAuctionNotFound}
	}
	if auction.Status != domain.AuctionStatusActive {
		return nil, &ProcedureError{Procedure: proc, Message: MsgAuctionNotActive}
	}
	if !auction.EndsAt.After(m.now()) {
		return nil, &ProcedureError{Procedure: proc, Message: MsgAuctionEnded}
	}
	return auction, nil
}

func (m *Memory) heldForLocked(auctionID, actorID string) int64 {
	var held int64
	for _, b := range m.bids[auctionID] {
		if b.Status == domain.BidStatusHeld && b.BidderActorID == actorID {
			held += b.Amount
		}
	}
	return held
}

func (m *Memory) refundHeldLocked(auctionID string) int {
	held := make([]*domain.Bid, 0)
	for _, b := range m.bids[auctionID] {
		if b.Status == domain.BidStatusHeld {
			held = append(held, b)
		}
	}
	sort.Slice(held, func(i, j int) bool { return held[i].ID < held[j].ID })
	for _, b := range held {
		_, _ = m.applyLocked("auction_refund_held", b.BidderActorID, b.Amount, domain.ReasonBidRefund, auctionID)
		b.Status = domain.BidStatusRefunded
	}
	return len(held)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
