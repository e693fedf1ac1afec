package service

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrNotFound                 = errors.New("not found")
	ErrDuplicateEntry           = errors.New("already exists")
	ErrNotEntered               = errors.New("user is not entered in this tournament")
	ErrCapacityExceeded         = errors.New("waitlist full")
	ErrForbidden                = errors.New("operation not allowed for the current user")
	ErrInvalidState             = errors.New("invalid state")
	ErrInsufficientParticipants = errors.New("not enough participants")
	ErrValidation               = errors.New("validation failed")
)

// notFound turns a missing row into ErrNotFound and leaves other errors alone.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func badState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}
