package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "github.com/spec-kit/talent-ledger/pkg/util/errorutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// uuidParam returns the named path parameter when it is a UUID.
func uuidParam(c *fiber.Ctx, name string) (string, error) {
	return requireUUID(c.Params(name), name)
}

func requireUUID(val, field string) (string, error) {
	id, err := uuid.Parse(val)
	if err != nil {
		return "", apperrors.NewValidationError("invalid "+field, map[string]any{"field": field})
	}
	return id.String(), nil
}

// parsePage reads limit and offset. Absent values take defaults; anything
// present must be an integer in range.
func parsePage(c *fiber.Ctx) (limit, offset int, err error) {
	limit, err = queryInt(c, "limit", defaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	if limit < 1 || limit > maxPageSize {
		return 0, 0, apperrors.NewValidationError(
			fmt.Sprintf("limit must be between 1 and %d", maxPageSize),
			map[string]any{"field": "limit"},
		)
	}
	offset, err = queryInt(c, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	if offset < 0 {
		return 0, 0, apperrors.NewValidationError("offset must not be negative", map[string]any{"field": "offset"})
	}
	return limit, offset, nil
}

func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	val := c.Query(name)
	if val == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, apperrors.NewValidationError(name+" must be an integer", map[string]any{"field": name})
	}
	return parsed, nil
}
