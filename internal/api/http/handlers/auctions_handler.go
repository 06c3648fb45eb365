package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-ledger/internal/api/dto"
	"github.com/spec-kit/talent-ledger/internal/auth"
	"github.com/spec-kit/talent-ledger/internal/domain"
	"github.com/spec-kit/talent-ledger/internal/repository"
	"github.com/spec-kit/talent-ledger/internal/service"
	apperrors "github.com/spec-kit/talent-ledger/pkg/util/errorutil"
)

// AuctionsHandler serves auction listings and the coin-moving auction actions.
type AuctionsHandler struct {
	economy  *service.EconomyService
	auctions repository.AuctionRepository
}

// NewAuctionsHandler constructs handler.
func NewAuctionsHandler(economy *service.EconomyService, auctions repository.AuctionRepository) *AuctionsHandler {
	return &AuctionsHandler{economy: economy, auctions: auctions}
}

// List GET /auctions.
func (h *AuctionsHandler) List(c *fiber.Ctx) error {
	limit, offset, err := parsePage(c)
	if err != nil {
		return err
	}
	auctions, err := h.auctions.ListActive(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.AuctionResponse, 0, len(auctions))
	for i := range auctions {
		items = append(items, auctionResponse(&auctions[i]))
	}
	return c.JSON(fiber.Map{"data": items, "limit": limit, "offset": offset})
}

// Get GET /auctions/:id.
func (h *AuctionsHandler) Get(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	auction, err := h.auctions.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("auction", nil)
		}
		return err
	}
	return c.JSON(fiber.Map{"data": auctionResponse(auction)})
}

// PlaceBid POST /auctions/:id/bids.
func (h *AuctionsHandler) PlaceBid(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.PlaceBidRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Amount <= 0 {
		return apperrors.NewValidationError("amount must be positive", map[string]any{"field": "amount"})
	}
	out, err := h.economy.PlaceBid(c.UserContext(), auth.AuthUserID(c), id, req.Amount)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.BidResponse{
		BidID:     out.BidID,
		AuctionID: out.AuctionID,
		Amount:    out.Amount,
		Balance:   out.Balance,
	}})
}

// BuyNow POST /auctions/:id/buy-now.
func (h *AuctionsHandler) BuyNow(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.economy.BuyNow(c.UserContext(), auth.AuthUserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BuyNowResponse{AuctionID: out.AuctionID, Price: out.Price, Balance: out.Balance}})
}

// Cancel POST /auctions/:id/cancel.
func (h *AuctionsHandler) Cancel(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.economy.CancelAuction(c.UserContext(), auth.AuthUserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CancelAuctionResponse{
		AuctionID:    out.AuctionID,
		RefundedBids: out.RefundedBids,
		Balance:      out.Balance,
	}})
}

func auctionResponse(a *domain.Auction) dto.AuctionResponse {
	return dto.AuctionResponse{
		ID:              a.ID,
		OwnerActorID:    a.OwnerActorID,
		Title:           a.Title,
		StartingBid:     a.StartingBid,
		BuyNowPrice:     a.BuyNowPrice,
		CurrentBid:      a.CurrentBid,
		HighestBidderID: a.HighestBidderID,
		WinnerActorID:   a.WinnerActorID,
		Status:          a.Status,
		EndsAt:          a.EndsAt,
		CreatedAt:       a.CreatedAt,
	}
}
