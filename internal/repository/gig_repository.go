package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/talent-ledger/internal/domain"
)

// GigRepository manages gigs and their invitations.
type GigRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Gig, error)
	Invite(ctx context.Context, gigID, modelProfileID string) (*domain.GigInvitation, error)
	// AcceptInvitation moves an invitation from invited to accepted in one
	// conditional update. changed is false when the row was already answered.
	AcceptInvitation(ctx context.Context, gigID, modelProfileID string) (inv *domain.GigInvitation, changed bool, err error)
}

type gigRepository struct {
	pool *pgxpool.Pool
}

// NewGigRepository constructs repository.
func NewGigRepository(pool *pgxpool.Pool) GigRepository {
	return &gigRepository{pool: pool}
}

func (r *gigRepository) GetByID(ctx context.Context, id string) (*domain.Gig, error) {
	const query = `SELECT id, brand_actor_id, title, created_at FROM gigs WHERE id=$1`

	var gig domain.Gig
	if err := r.pool.QueryRow(ctx, query, id).Scan(&gig.ID, &gig.BrandActorID, &gig.Title, &gig.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &gig, nil
}

// Invite is idempotent: re-inviting returns the existing row unchanged.
func (r *gigRepository) Invite(ctx context.Context, gigID, modelProfileID string) (*domain.GigInvitation, error) {
	const query = `
        INSERT INTO gig_invitations (gig_id, model_profile_id)
        VALUES ($1, $2)
        ON CONFLICT (gig_id, model_profile_id) DO UPDATE SET gig_id = EXCLUDED.gig_id
        RETURNING gig_id, model_profile_id, status, invited_at, responded_at`
	return scanInvitation(r.pool.QueryRow(ctx, query, gigID, modelProfileID))
}

func (r *gigRepository) AcceptInvitation(ctx context.Context, gigID, modelProfileID string) (*domain.GigInvitation, bool, error) {
	const update = `
        UPDATE gig_invitations SET status='accepted', responded_at=NOW()
        WHERE gig_id=$1 AND model_profile_id=$2 AND status='invited'
        RETURNING gig_id, model_profile_id, status, invited_at, responded_at`
	inv, err := scanInvitation(r.pool.QueryRow(ctx, update, gigID, modelProfileID))
	if err == nil {
		return inv, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	const current = `
        SELECT gig_id, model_profile_id, status, invited_at, responded_at
        FROM gig_invitations WHERE gig_id=$1 AND model_profile_id=$2`
	inv, err = scanInvitation(r.pool.QueryRow(ctx, current, gigID, modelProfileID))
	return inv, false, err
}

func scanInvitation(row pgx.Row) (*domain.GigInvitation, error) {
	var inv domain.GigInvitation
	if err := row.Scan(&inv.GigID, &inv.ModelProfileID, &inv.Status, &inv.InvitedAt, &inv.RespondedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}
