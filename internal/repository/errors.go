package repository

import apperrors "github.com/spec-kit/talent-ledger/pkg/util/errorutil"

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = apperrors.ErrNotFound
