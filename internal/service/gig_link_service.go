package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/talent-ledger/internal/deeplink"
	"github.com/spec-kit/talent-ledger/internal/domain"
	"github.com/spec-kit/talent-ledger/internal/events"
	"github.com/spec-kit/talent-ledger/internal/repository"
	apperrors "github.com/spec-kit/talent-ledger/pkg/util/errorutil"
)

// GigAcceptPath is the public route that consumes gig invitation links.
const GigAcceptPath = "/links/gig-accept"

// LinkSigner issues and verifies deep-link tokens.
type LinkSigner interface {
	Issue(subjectID, objectID string) (string, error)
	Verify(token string) (deeplink.Claims, bool)
}

// GigLinkService invites models to gigs by email and accepts invitations
// from signed links without a session.
type GigLinkService struct {
	actors     repository.ActorRepository
	gigs       repository.GigRepository
	signer     LinkSigner
	baseURL    string
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// GigLinkDependencies bundles collaborators for the gig link service.
type GigLinkDependencies struct {
	ActorRepo  repository.ActorRepository
	GigRepo    repository.GigRepository
	Signer     LinkSigner
	BaseURL    string
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewGigLinkService constructs the service.
func NewGigLinkService(deps GigLinkDependencies) *GigLinkService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GigLinkService{
		actors:     deps.ActorRepo,
		gigs:       deps.GigRepo,
		signer:     deps.Signer,
		baseURL:    deps.BaseURL,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// InviteModel records an invitation on a gig owned by the calling brand and
// emails the model an accept link. The link is never returned to the brand.
func (s *GigLinkService) InviteModel(ctx context.Context, authUserID, gigID, modelProfileID string) (*domain.GigInvitation, error) {
	if authUserID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	brand, err := s.actors.GetByAuthUserID(ctx, authUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("actor", nil)
		}
		return nil, err
	}
	if !brand.Is(domain.ActorTypeBrand) {
		return nil, apperrors.NewForbidden("only brands can invite models")
	}

	gig, err := s.gigs.GetByID(ctx, gigID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("gig", nil)
		}
		return nil, err
	}
	if gig.BrandActorID != brand.ID {
		return nil, apperrors.NewForbidden("gig belongs to another brand")
	}

	token, err := s.signer.Issue(modelProfileID, gig.ID)
	if err != nil {
		if errors.Is(err, deeplink.ErrInvalidIdentifier) {
			return nil, apperrors.NewValidationError("invalid model_profile_id", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	inv, err := s.gigs.Invite(ctx, gig.ID, modelProfileID)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.InvitationStatusInvited {
		return nil, apperrors.NewBusinessRule("model already responded to this gig")
	}

	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventGigInvitationIssued,
		Actor:     events.Actor{ID: brand.ID, Type: brand.Type},
		Timestamp: time.Now(),
		Payload: events.GigInvitationIssuedPayload{
			GigID:          gig.ID,
			GigTitle:       gig.Title,
			ModelProfileID: modelProfileID,
			AcceptURL:      s.acceptURL(token),
		},
	}
	if s.dispatcher != nil {
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
	}
	return inv, nil
}

// AcceptByToken accepts the invitation a link refers to. Any verification
// failure yields the same invalid-link error. Accepting twice is a no-op.
func (s *GigLinkService) AcceptByToken(ctx context.Context, token string) (*domain.GigInvitation, error) {
	claims, ok := s.signer.Verify(token)
	if !ok {
		return nil, apperrors.NewInvalidLink()
	}

	inv, changed, err := s.gigs.AcceptInvitation(ctx, claims.ObjectID, claims.SubjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("invitation", nil)
		}
		return nil, err
	}
	switch inv.Status {
	case domain.InvitationStatusAccepted:
	case domain.InvitationStatusDeclined:
		return nil, apperrors.NewBusinessRule("invitation was declined")
	default:
		return nil, apperrors.NewInternalError(errors.New("unexpected invitation status " + string(inv.Status)))
	}

	if changed && s.dispatcher != nil {
		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventGigAccepted,
			Timestamp: time.Now(),
			Payload:   events.GigAcceptedPayload{GigID: inv.GigID, ModelProfileID: inv.ModelProfileID},
		}
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return inv, nil
}

func (s *GigLinkService) acceptURL(token string) string {
	return s.baseURL + GigAcceptPath + "?" + url.Values{"token": {token}}.Encode()
}
