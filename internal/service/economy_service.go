package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/talent-ledger/internal/domain"
	"github.com/spec-kit/talent-ledger/internal/events"
	"github.com/spec-kit/talent-ledger/internal/ledger"
	"github.com/spec-kit/talent-ledger/internal/observability"
	"github.com/spec-kit/talent-ledger/internal/repository"
	apperrors "github.com/spec-kit/talent-ledger/pkg/util/errorutil"
)

// EconomyService is the gateway for every coin-affecting action. Each
// operation resolves the caller's actor, makes exactly one ledger call, maps
// its failure, and re-reads the balance from the ledger on success.
type EconomyService struct {
	actors       repository.ActorRepository
	calls        repository.CallRepository
	transactions repository.TransactionRepository
	ledger       ledger.Operations
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// EconomyDependencies bundles collaborators for the economy service.
type EconomyDependencies struct {
	ActorRepo       repository.ActorRepository
	CallRepo        repository.CallRepository
	TransactionRepo repository.TransactionRepository
	Ledger          ledger.Operations
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Logger          *zap.Logger
}

// NewEconomyService constructs the service.
func NewEconomyService(deps EconomyDependencies) *EconomyService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EconomyService{
		actors:       deps.ActorRepo,
		calls:        deps.CallRepo,
		transactions: deps.TransactionRepo,
		ledger:       deps.Ledger,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       logger,
	}
}

// BalanceView is the authoritative balance of an actor.
type BalanceView struct {
	ActorID string
	Coins   int64
}

// TransferOutcome describes a completed transfer or grant.
type TransferOutcome struct {
	TransactionID string
	ToActorID     string
	Amount        int64
	Balance       int64
}

// SpendOutcome describes a completed purchase paid from the caller's balance.
type SpendOutcome struct {
	TransactionID string
	Reason        string
	Amount        int64
	Balance       int64
}

// BidOutcome describes an accepted bid.
type BidOutcome struct {
	BidID     string
	AuctionID string
	Amount    int64
	Balance   int64
}

// BuyNowOutcome describes a completed buy-now purchase.
type BuyNowOutcome struct {
	AuctionID string
	Price     int64
	Balance   int64
}

// CancelOutcome describes a cancelled auction.
type CancelOutcome struct {
	AuctionID    string
	RefundedBids int
	Balance      int64
}

// CallSettlement describes a charged call.
type CallSettlement struct {
	CallID          string
	DurationSeconds int64
	Cost            int64
	Balance         int64
}

// CallQuote is the price a call would cost for a duration.
type CallQuote struct {
	CallID          string
	DurationSeconds int64
	RatePerMinute   int64
	Cost            int64
}

// Balance returns the caller's balance.
func (s *EconomyService) Balance(ctx context.Context, authUserID string) (*BalanceView, error) {
	actor, err := s.resolveActor(ctx, authUserID)
	if err != nil {
		return nil, err
	}
	coins, err := s.currentBalance(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &BalanceView{ActorID: actor.ID, Coins: coins}, nil
}

// History lists the caller's coin transactions, newest first.
func (s *EconomyService) History(ctx context.Context, authUserID string, limit, offset int) ([]domain.CoinTransaction, error) {
	actor, err := s.resolveActor(ctx, authUserID)
	if err != nil {
		return nil, err
	}
	return s.transactions.ListByActor(ctx, actor.ID, limit, offset)
}

// Transfer moves coins from the caller to another actor.
func (s *EconomyService) Transfer(ctx context.Context, authUserID, toActorID string, amount int64) (*TransferOutcome, error) {
	if amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive", nil)
	}
	actor, err := s.resolveActor(ctx, authUserID, domain.ActorTypeFan, domain.ActorTypeBrand, domain.ActorTypeModel, domain.ActorTypeAdmin)
	if err != nil {
		return nil, err
	}
	if _, err := s.lookupActor(ctx, toActorID); err != nil {
		return nil, err
	}

	var res *ledger.EntryResult
	if err := s.invoke(ledger.ProcTransfer, func() (err error) {
		res, err = s.ledger.Transfer(ctx, ledger.TransferRequest{FromActorID: actor.ID, ToActorID: toActorID, Amount: amount})
		return err
	}); err != nil {
		return nil, err
	}

	balance, err := s.settled(ctx, actor, ledger.ProcTransfer, toActorID)
	if err != nil {
		return nil, err
	}
	return &TransferOutcome{TransactionID: res.TransactionID, ToActorID: toActorID, Amount: amount, Balance: balance}, nil
}

// Grant credits coins to an actor on behalf of an admin. The returned
// balance is the recipient's.
func (s *EconomyService) Grant(ctx context.Context, authUserID, toActorID string, amount int64, reason string) (*TransferOutcome, error) {
	if amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive", nil)
	}
	admin, err := s.resolveActor(ctx, authUserID, domain.ActorTypeAdmin)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = domain.ReasonGrant
	}
	recipient, err := s.lookupActor(ctx, toActorID)
	if err != nil {
		return nil, err
	}

	var res *ledger.EntryResult
	if err := s.invoke(ledger.ProcCredit, func() (err error) {
		res, err = s.ledger.Credit(ctx, ledger.CreditRequest{ActorID: toActorID, Amount: amount, Reason: reason, ReferenceID: admin.ID})
		return err
	}); err != nil {
		return nil, err
	}

	balance, err := s.settled(ctx, recipient, ledger.ProcCredit, admin.ID)
	if err != nil {
		return nil, err
	}
	return &TransferOutcome{TransactionID: res.TransactionID, ToActorID: toActorID, Amount: amount, Balance: balance}, nil
}

// Spend debits the caller for a purchase such as a content unlock. The
// ledger refuses the debit when the balance cannot cover it.
func (s *EconomyService) Spend(ctx context.Context, authUserID string, amount int64, reason, referenceID string) (*SpendOutcome, error) {
	if amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive", nil)
	}
	if !domain.SpendReason(reason) {
		return nil, apperrors.NewValidationError("unsupported reason", map[string]any{"field": "reason"})
	}
	actor, err := s.resolveActor(ctx, authUserID, domain.ActorTypeFan, domain.ActorTypeBrand, domain.ActorTypeModel)
	if err != nil {
		return nil, err
	}

	var res *ledger.EntryResult
	if err := s.invoke(ledger.ProcDebit, func() (err error) {
		res, err = s.ledger.Debit(ctx, ledger.DebitRequest{ActorID: actor.ID, Amount: amount, Reason: reason, ReferenceID: referenceID})
		return err
	}); err != nil {
		return nil, err
	}

	balance, err := s.settled(ctx, actor, ledger.ProcDebit, referenceID)
	if err != nil {
		return nil, err
	}
	return &SpendOutcome{TransactionID: res.TransactionID, Reason: reason, Amount: amount, Balance: balance}, nil
}

// PlaceBid escrows amount against an auction.
func (s *EconomyService) PlaceBid(ctx context.Context, authUserID, auctionID string, amount int64) (*BidOutcome, error) {
	if amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive", nil)
	}
	actor, err := s.resolveActor(ctx, authUserID, domain.ActorTypeFan, domain.ActorTypeBrand)
	if err != nil {
		return nil, err
	}

	var res *ledger.BidResult
	if err := s.invoke(ledger.ProcPlaceBid, func() (err error) {
		res, err = s.ledger.PlaceBid(ctx, ledger.PlaceBidRequest{AuctionID: auctionID, BidderActorID: actor.ID, Amount: amount})
		return err
	}); err != nil {
		return nil, err
	}

	balance, err := s.settled(ctx, actor, ledger.ProcPlaceBid, auctionID)
	if err != nil {
		return nil, err
	}
	return &BidOutcome{BidID: res.BidID, AuctionID: auctionID, Amount: amount, Balance: balance}, nil
}

// BuyNow purchases an auction at its buy-now price.
func (s *EconomyService) BuyNow(ctx context.Context, authUserID, auctionID string) (*BuyNowOutcome, error) {
	actor, err := s.resolveActor(ctx, authUserID, domain.ActorTypeFan, domain.ActorTypeBrand)
	if err != nil {
		return nil, err
	}

	var res *ledger.BuyNowResult
	if err := s.invoke(ledger.ProcBuyNow, func() (err error) {
		res, err = s.ledger.BuyNow(ctx, ledger.BuyNowRequest{AuctionID: auctionID, BuyerActorID: actor.ID})
		return err
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, actor, events.EventAuctionSold, events.AuctionSoldPayload{AuctionID: auctionID, Price: res.Price})
	balance, err := s.settled(ctx, actor, ledger.ProcBuyNow, auctionID)
	if err != nil {
		return nil, err
	}
	return &BuyNowOutcome{AuctionID: auctionID, Price: res.Price, Balance: balance}, nil
}

// CancelAuction cancels the caller's auction and refunds every escrowed bid.
func (s *EconomyService) CancelAuction(ctx context.Context, authUserID, auctionID string) (*CancelOutcome, error) {
	actor, err := s.resolveActor(ctx, authUserID, domain.ActorTypeModel)
	if err != nil {
		return nil, err
	}

	var res *ledger.CancelAuctionResult
	if err := s.invoke(ledger.ProcCancelAuction, func() (err error) {
		res, err = s.ledger.CancelAuction(ctx, ledger.CancelAuctionRequest{AuctionID: auctionID, OwnerActorID: actor.ID})
		return err
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, actor, events.EventAuctionCancelled, events.AuctionCancelledPayload{AuctionID: auctionID, RefundedBids: res.RefundedBids})
	balance, err := s.currentBalance(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &CancelOutcome{AuctionID: auctionID, RefundedBids: res.RefundedBids, Balance: balance}, nil
}

// SettleCall charges a finished call to the calling fan.
func (s *EconomyService) SettleCall(ctx context.Context, authUserID, callID string, durationSeconds int64) (*CallSettlement, error) {
	if !domain.ValidCallDuration(durationSeconds) {
		return nil, invalidDuration()
	}
	actor, err := s.resolveActor(ctx, authUserID, domain.ActorTypeFan)
	if err != nil {
		return nil, err
	}

	var res *ledger.SettleCallResult
	if err := s.invoke(ledger.ProcSettleCall, func() (err error) {
		res, err = s.ledger.SettleCall(ctx, ledger.SettleCallRequest{CallID: callID, FanActorID: actor.ID, DurationSeconds: durationSeconds})
		return err
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, actor, events.EventCallSettled, events.CallSettledPayload{CallID: callID, DurationSeconds: durationSeconds, Cost: res.Cost})
	balance, err := s.settled(ctx, actor, ledger.ProcSettleCall, callID)
	if err != nil {
		return nil, err
	}
	return &CallSettlement{CallID: callID, DurationSeconds: durationSeconds, Cost: res.Cost, Balance: balance}, nil
}

// QuoteCall prices a call for a participant without charging anything.
func (s *EconomyService) QuoteCall(ctx context.Context, authUserID, callID string, durationSeconds int64) (*CallQuote, error) {
	if !domain.ValidCallDuration(durationSeconds) {
		return nil, invalidDuration()
	}
	actor, err := s.resolveActor(ctx, authUserID)
	if err != nil {
		return nil, err
	}
	call, err := s.calls.GetByID(ctx, callID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("call", nil)
		}
		return nil, err
	}
	if call.FanActorID != actor.ID && call.ModelActorID != actor.ID {
		return nil, apperrors.NewForbidden("not a participant of this call")
	}
	return &CallQuote{
		CallID:          call.ID,
		DurationSeconds: durationSeconds,
		RatePerMinute:   call.RatePerMinute,
		Cost:            domain.CallCost(durationSeconds, call.RatePerMinute),
	}, nil
}

func invalidDuration() error {
	return apperrors.NewValidationError(
		fmt.Sprintf("duration_seconds must be between 0 and %d", domain.MaxCallDurationSeconds),
		map[string]any{"field": "duration_seconds"},
	)
}

// resolveActor maps the session identity to its actor and enforces the
// permitted actor types. No types means any actor.
func (s *EconomyService) resolveActor(ctx context.Context, authUserID string, allowed ...domain.ActorType) (*domain.Actor, error) {
	if authUserID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	actor, err := s.actors.GetByAuthUserID(ctx, authUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("actor", nil)
		}
		return nil, err
	}
	if len(allowed) > 0 && !actor.Is(allowed...) {
		return nil, apperrors.NewForbidden("action not permitted for " + string(actor.Type) + " accounts")
	}
	return actor, nil
}

// lookupActor loads the counterparty of an operation.
func (s *EconomyService) lookupActor(ctx context.Context, actorID string) (*domain.Actor, error) {
	actor, err := s.actors.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("actor", nil)
		}
		return nil, err
	}
	return actor, nil
}

// invoke runs a single ledger call, records it, and maps its failure.
func (s *EconomyService) invoke(procedure string, call func() error) error {
	start := time.Now()
	err := mapOperationError(call())
	outcome := "ok"
	if err != nil {
		de := apperrors.ToDomainError(err)
		outcome = de.Code
		if de.HTTPStatus >= 500 {
			s.logger.Error("ledger operation failed", zap.String("procedure", procedure), zap.Error(de.Unwrap()))
		}
	}
	s.metrics.RecordLedgerOperation(procedure, outcome, time.Since(start))
	return err
}

// settled re-reads the actor's balance after a successful mutation and
// announces it.
func (s *EconomyService) settled(ctx context.Context, actor *domain.Actor, operation, reference string) (int64, error) {
	balance, err := s.currentBalance(ctx, actor.ID)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, actor, events.EventBalanceChanged, events.BalanceChangedPayload{
		Operation:   operation,
		ReferenceID: reference,
		Balance:     balance,
	})
	return balance, nil
}

func (s *EconomyService) currentBalance(ctx context.Context, actorID string) (int64, error) {
	balance, err := s.ledger.Balance(ctx, actorID)
	if err != nil {
		return 0, mapOperationError(err)
	}
	return balance, nil
}

func (s *EconomyService) publish(ctx context.Context, actor *domain.Actor, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     events.Actor{ID: actor.ID, Type: actor.Type},
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
