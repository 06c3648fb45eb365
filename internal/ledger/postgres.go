package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	sqlStateRaiseException   = "P0001"
	sqlStateCheckViolation   = "23514"
	sqlStateInvalidTextInput = "22P02"
)

// Postgres calls the PL/pgSQL procedures installed by the migrations.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Postgres-backed ledger.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Balance(ctx context.Context, actorID string) (int64, error) {
	const query = `SELECT balance FROM coin_balances WHERE actor_id=$1`

	var balance int64
	if err := p.pool.QueryRow(ctx, query, actorID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, &ProcedureError{Procedure: "coin_balance", Message: MsgActorNotFound}
		}
		return 0, procedureError("coin_balance", err)
	}
	return balance, nil
}

func (p *Postgres) Credit(ctx context.Context, req CreditRequest) (*EntryResult, error) {
	var id string
	err := p.pool.QueryRow(ctx, `SELECT coin_credit($1, $2, $3, $4)`,
		req.ActorID, req.Amount, req.Reason, req.ReferenceID,
	).Scan(&id)
	if err != nil {
		return nil, procedureError(ProcCredit, err)
	}
	return &EntryResult{TransactionID: id}, nil
}

func (p *Postgres) Debit(ctx context.Context, req DebitRequest) (*EntryResult, error) {
	var id string
	err := p.pool.QueryRow(ctx, `SELECT coin_debit($1, $2, $3, $4)`,
		req.ActorID, req.Amount, req.Reason, req.ReferenceID,
	).Scan(&id)
	if err != nil {
		return nil, procedureError(ProcDebit, err)
	}
	return &EntryResult{TransactionID: id}, nil
}

func (p *Postgres) Transfer(ctx context.Context, req TransferRequest) (*EntryResult, error) {
	var id string
	err := p.pool.QueryRow(ctx, `SELECT coin_transfer($1, $2, $3)`,
		req.FromActorID, req.ToActorID, req.Amount,
	).Scan(&id)
	if err != nil {
		return nil, procedureError(ProcTransfer, err)
	}
	return &EntryResult{TransactionID: id}, nil
}

func (p *Postgres) PlaceBid(ctx context.Context, req PlaceBidRequest) (*BidResult, error) {
	var id string
	err := p.pool.QueryRow(ctx, `SELECT auction_place_bid($1, $2, $3)`,
		req.AuctionID, req.BidderActorID, req.Amount,
	).Scan(&id)
	if err != nil {
		return nil, procedureError(ProcPlaceBid, err)
	}
	return &BidResult{BidID: id}, nil
}

func (p *Postgres) BuyNow(ctx context.Context, req BuyNowRequest) (*BuyNowResult, error) {
	var price int64
	err := p.pool.QueryRow(ctx, `SELECT auction_buy_now($1, $2)`,
		req.AuctionID, req.BuyerActorID,
	).Scan(&price)
	if err != nil {
		return nil, procedureError(ProcBuyNow, err)
	}
	return &BuyNowResult{Price: price}, nil
}

func (p *Postgres) CancelAuction(ctx context.Context, req CancelAuctionRequest) (*CancelAuctionResult, error) {
	var refunded int
	err := p.pool.QueryRow(ctx, `SELECT auction_cancel($1, $2)`,
		req.AuctionID, req.OwnerActorID,
	).Scan(&refunded)
	if err != nil {
		return nil, procedureError(ProcCancelAuction, err)
	}
	return &CancelAuctionResult{RefundedBids: refunded}, nil
}

func (p *Postgres) SettleCall(ctx context.Context, req SettleCallRequest) (*SettleCallResult, error) {
	var cost int64
	err := p.pool.QueryRow(ctx, `SELECT call_settle($1, $2, $3)`,
		req.CallID, req.FanActorID, req.DurationSeconds,
	).Scan(&cost)
	if err != nil {
		return nil, procedureError(ProcSettleCall, err)
	}
	return &SettleCallResult{Cost: cost}, nil
}

// procedureError keeps the raised message of known failures and wraps the rest.
func procedureError(proc string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", proc, err)
	}
	switch pgErr.Code {
	case sqlStateRaiseException:
		return &ProcedureError{Procedure: proc, Message: pgErr.Message}
	case sqlStateCheckViolation:
		return &ProcedureError{Procedure: proc, Message: MsgInsufficientBalance}
	case sqlStateInvalidTextInput:
		return &ProcedureError{Procedure: proc, Message: "reference not found"}
	default:
		return fmt.Errorf("%s: %w", proc, err)
	}
}
