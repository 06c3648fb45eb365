package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/talent-ledger/internal/domain"
)

// AuctionRepository reads auctions. All mutations go through the ledger.
type AuctionRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Auction, error)
	ListActive(ctx context.Context, limit, offset int) ([]domain.Auction, error)
}

type auctionRepository struct {
	pool *pgxpool.Pool
}

// NewAuctionRepository instantiates repository.
func NewAuctionRepository(pool *pgxpool.Pool) AuctionRepository {
	return &auctionRepository{pool: pool}
}

const auctionColumns = `id, owner_actor_id, title, starting_bid, buy_now_price, current_bid,
        highest_bidder_id, winner_actor_id, status, ends_at, created_at, updated_at`

func (r *auctionRepository) GetByID(ctx context.Context, id string) (*domain.Auction, error) {
	const query = `SELECT ` + auctionColumns + ` FROM auctions WHERE id=$1`
	auction, err := scanAuction(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return auction, err
}

func (r *auctionRepository) ListActive(ctx context.Context, limit, offset int) ([]domain.Auction, error) {
	const query = `
        SELECT ` + auctionColumns + `
        FROM auctions
        WHERE status='active' AND ends_at > NOW()
        ORDER BY ends_at ASC
        LIMIT $1 OFFSET $2`

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []domain.Auction
	for rows.Next() {
		auction, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, *auction)
	}
	return auctions, rows.Err()
}

func scanAuction(row pgx.Row) (*domain.Auction, error) {
	var a domain.Auction
	if err := row.Scan(
		&a.ID,
		&a.OwnerActorID,
		&a.Title,
		&a.StartingBid,
		&a.BuyNowPrice,
		&a.CurrentBid,
		&a.HighestBidderID,
		&a.WinnerActorID,
		&a.Status,
		&a.EndsAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
