package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-ledger/internal/api/dto"
	"github.com/spec-kit/talent-ledger/internal/auth"
	"github.com/spec-kit/talent-ledger/internal/domain"
	"github.com/spec-kit/talent-ledger/internal/service"
	apperrors "github.com/spec-kit/talent-ledger/pkg/util/errorutil"
)

// GigsHandler issues gig invitations and consumes their accept links.
type GigsHandler struct {
	links *service.GigLinkService
}

// NewGigsHandler constructs handler.
func NewGigsHandler(links *service.GigLinkService) *GigsHandler {
	return &GigsHandler{links: links}
}

// Invite POST /gigs/:id/invitations.
func (h *GigsHandler) Invite(c *fiber.Ctx) error {
	gigID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.InviteModelRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profileID, err := requireUUID(strings.TrimSpace(req.ModelProfileID), "model_profile_id")
	if err != nil {
		return err
	}
	inv, err := h.links.InviteModel(c.UserContext(), auth.AuthUserID(c), gigID, profileID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": invitationResponse(inv)})
}

// Accept GET /links/gig-accept?token=... is reachable without a session.
func (h *GigsHandler) Accept(c *fiber.Ctx) error {
	inv, err := h.links.AcceptByToken(c.UserContext(), c.Query("token"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"data": invitationResponse(inv)})
}

func invitationResponse(inv *domain.GigInvitation) dto.GigInvitationResponse {
	return dto.GigInvitationResponse{
		GigID:          inv.GigID,
		ModelProfileID: inv.ModelProfileID,
		Status:         inv.Status,
		InvitedAt:      inv.InvitedAt,
		RespondedAt:    inv.RespondedAt,
	}
}
