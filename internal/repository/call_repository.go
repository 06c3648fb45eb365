package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/talent-ledger/internal/domain"
)

// CallRepository reads paid call sessions.
type CallRepository interface {
	GetByID(ctx context.Context, id string) (*domain.CallSession, error)
}

type callRepository struct {
	pool *pgxpool.Pool
}

// NewCallRepository constructs repository.
func NewCallRepository(pool *pgxpool.Pool) CallRepository {
	return &callRepository{pool: pool}
}

func (r *callRepository) GetByID(ctx context.Context, id string) (*domain.CallSession, error) {
	const query = `
        SELECT id, fan_actor_id, model_actor_id, rate_per_minute, status, duration_seconds, cost, settled_at
        FROM call_sessions WHERE id=$1`

	var call domain.CallSession
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&call.ID,
		&call.FanActorID,
		&call.ModelActorID,
		&call.RatePerMinute,
		&call.Status,
		&call.DurationSeconds,
		&call.Cost,
		&call.SettledAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &call, nil
}
