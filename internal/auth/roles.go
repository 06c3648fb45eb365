package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-ledger/internal/domain"
	"github.com/spec-kit/talent-ledger/internal/repository"
	apperrors "github.com/spec-kit/talent-ledger/pkg/util/errorutil"
)

// RequireAuthenticated ensures a principal was attached to the request.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}

// RequireActorType gates a route group on the caller's actor type. Services
// repeat the check for every operation; this only rejects early.
func RequireActorType(actors repository.ActorRepository, allowed ...domain.ActorType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		actor, err := actors.GetByAuthUserID(c.UserContext(), principal.AuthUserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("actor", nil)
			}
			return apperrors.MapError(err)
		}
		if !actor.Is(allowed...) {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}
