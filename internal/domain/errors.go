package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound         = errors.New("booking not found")
	ErrBookingAlreadyCancelled = errors.New("booking already cancelled")
	ErrBookingBusy             = errors.New("booking is being modified by another request")
	ErrRequestInProgress       = errors.New("a request with this idempotency key is still in progress")
	ErrNoFlightsFound          = errors.New("no flights found on any provider")
	ErrInvalidInput            = errors.New("invalid input")
	ErrProviderUnavailable     = errors.New("provider unavailable")
	ErrUnsupportedOperation    = errors.New("operation not supported by provider")
	ErrHotelDetailsUnavailable = errors.New("failed to fetch hotel details")
	ErrURLNotAllowed           = errors.New("url is not allowed")
)

// InvalidInput wraps ErrInvalidInput with a human readable message.
func InvalidInput(msg string) error {
	return &ValidationError{Message: msg}
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// BookingFailedError is returned when a booking row was created but a later
// step (payment or provider) failed and the row was moved to failed.
type BookingFailedError struct {
	BookingID string
	Err       error
}

func (e *BookingFailedError) Error() string {
	return fmt.Sprintf("booking failed: %v", e.Err)
}

func (e *BookingFailedError) Unwrap() error { return e.Err }
