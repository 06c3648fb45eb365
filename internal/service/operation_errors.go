package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/spec-kit/talent-ledger/internal/ledger"
	apperrors "github.com/spec-kit/talent-ledger/pkg/util/errorutil"
)

type operationErrorRule struct {
	match string
	build func(message string) error
}

func businessRule(message string) error { return apperrors.NewBusinessRule(message) }

func validation(message string) error { return apperrors.NewValidationError(message, nil) }

func notFound(message string) error {
	return apperrors.NewDomainError(apperrors.CodeNotFound, message, http.StatusNotFound, nil)
}

// Checked in order; the first substring found in the procedure message wins.
var operationErrorRules = []operationErrorRule{
	{ledger.MsgInsufficientBalance, apperrors.NewInsufficientFunds},
	{ledger.MsgNotAuctionOwner, apperrors.NewForbidden},
	{ledger.MsgNotCallParticipant, apperrors.NewForbidden},
	{"not found", notFound},
	{ledger.MsgInvalidDuration, validation},
	{ledger.MsgInvalidAmount, businessRule},
	{ledger.MsgTransferToSelf, businessRule},
	{ledger.MsgAuctionNotActive, businessRule},
	{ledger.MsgAuctionEnded, businessRule},
	{ledger.MsgOwnAuction, businessRule},
	{ledger.MsgBidTooLow, businessRule},
	{ledger.MsgBuyNowUnavailable, businessRule},
	{ledger.MsgCallSettled, businessRule},
}

// mapOperationError translates a ledger failure into the client taxonomy.
// Anything that is not a recognized procedure message is internal.
func mapOperationError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeout(err)
	}

	var procErr *ledger.ProcedureError
	if !errors.As(err, &procErr) {
		return apperrors.NewInternalError(err)
	}
	msg := strings.ToLower(procErr.Message)
	for _, rule := range operationErrorRules {
		if strings.Contains(msg, rule.match) {
			return rule.build(procErr.Message)
		}
	}
	return apperrors.NewInternalError(err)
}
