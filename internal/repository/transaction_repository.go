package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/talent-ledger/internal/domain"
)

// TransactionRepository reads the coin ledger lines of an actor.
type TransactionRepository interface {
	ListByActor(ctx context.Context, actorID string, limit, offset int) ([]domain.CoinTransaction, error)
}

type transactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository builds repository.
func NewTransactionRepository(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepository{pool: pool}
}

func (r *transactionRepository) ListByActor(ctx context.Context, actorID string, limit, offset int) ([]domain.CoinTransaction, error) {
	const query = `
        SELECT id, actor_id, amount, reason, reference_id, created_at
        FROM coin_transactions
        WHERE actor_id=$1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, query, actorID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.CoinTransaction
	for rows.Next() {
		var tx domain.CoinTransaction
		if err := rows.Scan(&tx.ID, &tx.ActorID, &tx.Amount, &tx.Reason, &tx.ReferenceID, &tx.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
