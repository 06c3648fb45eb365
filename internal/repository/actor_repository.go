package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/talent-ledger/internal/domain"
)

// ActorRepository resolves actors from their identities.
type ActorRepository interface {
	GetByAuthUserID(ctx context.Context, authUserID string) (*domain.Actor, error)
	GetByID(ctx context.Context, id string) (*domain.Actor, error)
}

type actorRepository struct {
	pool *pgxpool.Pool
}

// NewActorRepository returns a Postgres-backed implementation.
func NewActorRepository(pool *pgxpool.Pool) ActorRepository {
	return &actorRepository{pool: pool}
}

const actorColumns = `id, auth_user_id, actor_type, profile_id, display_name, created_at`

func (r *actorRepository) GetByAuthUserID(ctx context.Context, authUserID string) (*domain.Actor, error) {
	// session subjects come from an external issuer and may not be UUIDs
	if _, err := uuid.Parse(authUserID); err != nil {
		return nil, ErrNotFound
	}
	const query = `SELECT ` + actorColumns + ` FROM actors WHERE auth_user_id=$1`
	return scanActor(r.pool.QueryRow(ctx, query, authUserID))
}

func (r *actorRepository) GetByID(ctx context.Context, id string) (*domain.Actor, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	const query = `SELECT ` + actorColumns + ` FROM actors WHERE id=$1`
	return scanActor(r.pool.QueryRow(ctx, query, id))
}

func scanActor(row pgx.Row) (*domain.Actor, error) {
	var actor domain.Actor
	if err := row.Scan(
		&actor.ID,
		&actor.AuthUserID,
		&actor.Type,
		&actor.ProfileID,
		&actor.DisplayName,
		&actor.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &actor, nil
}
