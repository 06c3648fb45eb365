package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-ledger/internal/api/dto"
	"github.com/spec-kit/talent-ledger/internal/auth"
	"github.com/spec-kit/talent-ledger/internal/domain"
	"github.com/spec-kit/talent-ledger/internal/service"
	apperrors "github.com/spec-kit/talent-ledger/pkg/util/errorutil"
)

// CallsHandler prices and settles paid calls.
type CallsHandler struct {
	economy *service.EconomyService
}

// NewCallsHandler constructs handler.
func NewCallsHandler(economy *service.EconomyService) *CallsHandler {
	return &CallsHandler{economy: economy}
}

// Quote GET /calls/:id/quote?duration_seconds=N.
func (h *CallsHandler) Quote(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	duration, err := strconv.ParseInt(c.Query("duration_seconds"), 10, 64)
	if err != nil || !domain.ValidCallDuration(duration) {
		return invalidDuration()
	}
	quote, err := h.economy.QuoteCall(c.UserContext(), auth.AuthUserID(c), id, duration)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CallQuoteResponse{
		CallID:          quote.CallID,
		DurationSeconds: quote.DurationSeconds,
		RatePerMinute:   quote.RatePerMinute,
		Cost:            quote.Cost,
	}})
}

// Settle POST /calls/:id/settle.
func (h *CallsHandler) Settle(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.SettleCallRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !domain.ValidCallDuration(req.DurationSeconds) {
		return invalidDuration()
	}
	out, err := h.economy.SettleCall(c.UserContext(), auth.AuthUserID(c), id, req.DurationSeconds)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CallSettlementResponse{
		CallID:          out.CallID,
		DurationSeconds: out.DurationSeconds,
		Cost:            out.Cost,
		Balance:         out.Balance,
	}})
}

func invalidDuration() error {
	return apperrors.NewValidationError(
		fmt.Sprintf("duration_seconds must be an integer between 0 and %d", domain.MaxCallDurationSeconds),
		map[string]any{"field": "duration_seconds"},
	)
}
