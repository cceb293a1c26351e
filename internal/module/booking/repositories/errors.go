package repositories

import "errors"

// Sentinel errors let usecases distinguish storage outcomes without parsing
// messages. They are mapped onto HTTP-coded errors at the usecase layer.
var (
	// ErrUnavailableDates is returned when the requested interval overlaps an
	// active booking for the same car, including losing the race against a
	// concurrent create.
	ErrUnavailableDates = errors.New("car is not available for the selected dates")

	// ErrStaleState is returned by guarded status updates when the stored
	// status is no longer one of the expected states. Callers should re-read
	// rather than retry the same mutation.
	ErrStaleState = errors.New("booking state changed concurrently")

	// ErrNotFound is returned when no booking (or car) matches the given id.
	ErrNotFound = errors.New("record not found")

	// ErrIntentAlreadySet is returned when a payment intent reference would be
	// overwritten; the reference is immutable once set.
	ErrIntentAlreadySet = errors.New("payment intent reference already set")
)
