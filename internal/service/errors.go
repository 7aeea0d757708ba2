package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidSeats        = fmt.Errorf("%w: you can only book 1 or 2 seats per event", ErrValidation)
	ErrCapacityBelowBooked = fmt.Errorf("%w: capacity cannot be lower than seats already booked", ErrValidation)

	ErrEventNotFound   = errors.New("event not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")

	ErrCapacityExceeded = errors.New("not enough seats available")
	ErrPerUserLimit     = errors.New("per-user seat limit exceeded")
	ErrDuplicateUser    = errors.New("user already exists")
	ErrEventInUse       = errors.New("event is still referenced by bookings")

	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrInconsistentState = errors.New("booked seats would become negative")
)

// PerUserLimitError reports how many seats the user already holds when a
// booking would take them past the per-event cap.  It matches ErrPerUserLimit.
type PerUserLimitError struct {
	AlreadyBooked int
	Limit         int
}

func (e *PerUserLimitError) Error() string {
	return fmt.Sprintf("You can only book up to %d seats for this event. You've already booked %d", e.Limit, e.AlreadyBooked)
}

func (e *PerUserLimitError) Is(target error) bool { return target == ErrPerUserLimit }

// Kind classifies service errors for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindAuth:
		return "AuthError"
	default:
		return "InternalError"
	}
}

// KindOf maps err onto the error taxonomy.  Anything unrecognised,
// including ErrInconsistentState, is internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrEventNotFound), errors.Is(err, ErrBookingNotFound),
		errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrCapacityExceeded), errors.Is(err, ErrPerUserLimit), errors.Is(err, ErrDuplicateUser),
		errors.Is(err, ErrEventInUse):
		return KindConflict
	case errors.Is(err, ErrInvalidCredentials):
		return KindAuth
	default:
		return KindInternal
	}
}

// validationError wraps a human-readable message so it matches ErrValidation.
func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
