package hub

import (
	"context"
	"sync"
	"sync/atomic"
)

// Receptor is the receive capability over a single mailbox. It supports one
// outstanding Watch at a time.
//
// A receptor returned by CreateMessenger backs a registration; closing it
// deregisters the identity. A receptor returned by Send or Observe only
// tracks one envelope and is closed by the hub once that envelope is terminal.
type Receptor[A comparable, P any] struct {
	hub      *Hub[A, P]
	mailbox  *mailbox[MessageEvent[A, P]]
	reg      *hop[A, P]
	watching atomic.Bool
	once     sync.Once
}

func newReceptor[A comparable, P any](h *Hub[A, P], mb *mailbox[MessageEvent[A, P]], reg *hop[A, P]) *Receptor[A, P] {
	return &Receptor[A, P]{
		hub:     h,
		mailbox: mb,
		reg:     reg,
	}
}

// Watch blocks until the next event is available. Events already queued are
// returned even if ctx is done. It returns ErrClosed once the mailbox is
// closed and empty.
func (r *Receptor[A, P]) Watch(ctx context.Context) (MessageEvent[A, P], error) {
	if !r.watching.CompareAndSwap(false, true) {
		return MessageEvent[A, P]{}, ErrWatchInProgress
	}
	defer r.watching.Store(false)

	return r.mailbox.receive(ctx)
}

// TryWatch returns the next queued event without blocking.
func (r *Receptor[A, P]) TryWatch() (MessageEvent[A, P], bool) {
	if !r.watching.CompareAndSwap(false, true) {
		return MessageEvent[A, P]{}, false
	}
	defer r.watching.Store(false)

	return r.mailbox.tryReceive()
}

// Handle watches for one event and passes it to fn. The event's client, if
// any, is released when fn returns or panics; replying inside fn makes the
// release a no-op.
func (r *Receptor[A, P]) Handle(ctx context.Context, fn func(MessageEvent[A, P]) error) error {
	event, err := r.Watch(ctx)
	if err != nil {
		return err
	}
	defer event.Client.Release()

	return fn(event)
}

// Close drops the receptor. For a registration this removes the address or
// broker entry; every message still queued is released and therefore
// forwarded along its path.
func (r *Receptor[A, P]) Close() {
	r.once.Do(func() {
		var pending []MessageEvent[A, P]
		if r.reg != nil {
			pending = r.hub.deregister(r.reg)
		} else {
			pending = r.mailbox.drain()
		}

		for _, event := range pending {
			event.Client.Release()
		}
	})
}

// Pending returns the number of queued events.
func (r *Receptor[A, P]) Pending() int {
	return r.mailbox.len()
}

func (r *Receptor[A, P]) Closed() bool {
	return r.mailbox.isClosed()
}
