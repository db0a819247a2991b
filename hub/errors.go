package hub

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by Watch once the mailbox will never yield another event.
	ErrClosed = errors.New("receptor closed")

	// ErrAddressConflict matches any AddressConflictError.
	ErrAddressConflict = errors.New("address conflict")

	// ErrWatchInProgress is returned when a second Watch is issued on a receptor
	// that already has one outstanding.
	ErrWatchInProgress = errors.New("watch already in progress")
)

// AddressConflictError is returned by CreateMessenger when the requested
// address already has a live registration.
type AddressConflictError[A comparable] struct {
	Address A
}

func (e *AddressConflictError[A]) Error() string {
	return fmt.Sprintf("address conflict: %v is already registered", e.Address)
}

func (e *AddressConflictError[A]) Unwrap() error {
	return ErrAddressConflict
}
