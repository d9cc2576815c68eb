package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAirportNotFound     = errors.New("airport code not found")
	ErrSearchUnavailable   = errors.New("flight search unavailable")
	ErrBookingRejected     = errors.New("booking rejected")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("payment transaction not found")
	ErrPaymentFailed       = errors.New("payment gateway error")
)

// AirportNotFoundError carries the location text nothing could resolve.
type AirportNotFoundError struct {
	Location string
}

func (e *AirportNotFoundError) Error() string {
	return fmt.Sprintf("could not find airport code for: %s", e.Location)
}

func (e *AirportNotFoundError) Is(target error) bool {
	return target == ErrAirportNotFound
}
