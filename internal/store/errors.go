package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an update or lookup targets an unknown local id.
var ErrNotFound = errors.New("record not found")

// ErrConstraint is returned on local constraint violations (duplicate remote
// id, missing required column). Local storage should not otherwise fail.
var ErrConstraint = errors.New("constraint violation")

// wrapErr maps driver-level failures onto the store error taxonomy so
// callers can use errors.Is without knowing about gorm or postgres.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23 — integrity constraint violation
		if len(pgErr.Code) == 5 && pgErr.Code[:2] == "23" {
			return fmt.Errorf("%s: %w: %s", op, ErrConstraint, pgErr.Message)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, ErrConstraint)
	}
	return fmt.Errorf("%s: %w", op, err)
}
