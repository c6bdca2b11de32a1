// Package apperr defines the error categories the game engine reports to its
// callers. Handlers map them to transport status codes with errors.Is.
package apperr

import "errors"

var (
	// ErrNotFound is returned when a room, round, card or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrState is returned when an action is invalid for the current status,
	// e.g. drawing on a finished round or joining an active room.
	ErrState = errors.New("invalid state")

	// ErrUnauthorized is returned when a non-host attempts a host-only
	// action, or a caller claims with a card that is not theirs.
	ErrUnauthorized = errors.New("not authorized")

	// ErrInsufficientBalance is returned when a user's balance cannot cover
	// the entry fee or a debit.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAlreadyMember is returned when a user joins a room twice.
	ErrAlreadyMember = errors.New("already a member of this room")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrDrawExhausted signals that all 75 numbers have been drawn. It is a
	// terminal signal for the draw loop, not a failure.
	ErrDrawExhausted = errors.New("all numbers drawn")

	// ErrAlreadyDecided is returned when a settlement is attempted on a round
	// that already has a winner recorded.
	ErrAlreadyDecided = errors.New("round already decided")
)
