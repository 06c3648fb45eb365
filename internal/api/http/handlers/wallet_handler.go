package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-ledger/internal/api/dto"
	"github.com/spec-kit/talent-ledger/internal/auth"
	"github.com/spec-kit/talent-ledger/internal/domain"
	"github.com/spec-kit/talent-ledger/internal/service"
	apperrors "github.com/spec-kit/talent-ledger/pkg/util/errorutil"
)

// WalletHandler exposes the caller's coin balance, history and transfers.
type WalletHandler struct {
	economy *service.EconomyService
}

// NewWalletHandler constructs handler.
func NewWalletHandler(economy *service.EconomyService) *WalletHandler {
	return &WalletHandler{economy: economy}
}

// Balance GET /wallet/balance.
func (h *WalletHandler) Balance(c *fiber.Ctx) error {
	view, err := h.economy.Balance(c.UserContext(), auth.AuthUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BalanceResponse{ActorID: view.ActorID, Balance: view.Coins}})
}

// Transactions GET /wallet/transactions.
func (h *WalletHandler) Transactions(c *fiber.Ctx) error {
	limit, offset, err := parsePage(c)
	if err != nil {
		return err
	}
	txs, err := h.economy.History(c.UserContext(), auth.AuthUserID(c), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		items = append(items, transactionResponse(&txs[i]))
	}
	return c.JSON(fiber.Map{"data": items, "limit": limit, "offset": offset})
}

// Transfer POST /wallet/transfers.
func (h *WalletHandler) Transfer(c *fiber.Ctx) error {
	var req dto.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	toActorID, err := requireUUID(req.ToActorID, "to_actor_id")
	if err != nil {
		return err
	}
	if req.Amount <= 0 {
		return apperrors.NewValidationError("amount must be positive", map[string]any{"field": "amount"})
	}
	out, err := h.economy.Transfer(c.UserContext(), auth.AuthUserID(c), toActorID, req.Amount)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": transferResponse(out)})
}

// Spend POST /wallet/spend.
func (h *WalletHandler) Spend(c *fiber.Ctx) error {
	var req dto.SpendRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Amount <= 0 {
		return apperrors.NewValidationError("amount must be positive", map[string]any{"field": "amount"})
	}
	if len(req.ReferenceID) > 128 {
		return apperrors.NewValidationError("reference_id is too long", map[string]any{"field": "reference_id"})
	}
	out, err := h.economy.Spend(c.UserContext(), auth.AuthUserID(c), req.Amount, req.Reason, req.ReferenceID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SpendResponse{
		TransactionID: out.TransactionID,
		Reason:        out.Reason,
		Amount:        out.Amount,
		Balance:       out.Balance,
	}})
}

// AdminHandler exposes administrative coin operations.
type AdminHandler struct {
	economy *service.EconomyService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(economy *service.EconomyService) *AdminHandler {
	return &AdminHandler{economy: economy}
}

// Grant POST /admin/grants.
func (h *AdminHandler) Grant(c *fiber.Ctx) error {
	var req dto.GrantRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	actorID, err := requireUUID(req.ToActorID, "to_actor_id")
	if err != nil {
		return err
	}
	if req.Amount <= 0 {
		return apperrors.NewValidationError("amount must be positive", map[string]any{"field": "amount"})
	}
	out, err := h.economy.Grant(c.UserContext(), auth.AuthUserID(c), actorID, req.Amount, req.Reason)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": transferResponse(out)})
}

func transferResponse(out *service.TransferOutcome) dto.TransferResponse {
	return dto.TransferResponse{
		TransactionID: out.TransactionID,
		ToActorID:     out.ToActorID,
		Amount:        out.Amount,
		Balance:       out.Balance,
	}
}

func transactionResponse(tx *domain.CoinTransaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:          tx.ID,
		Amount:      tx.Amount,
		Reason:      tx.Reason,
		ReferenceID: tx.ReferenceID,
		CreatedAt:   tx.CreatedAt,
	}
}
