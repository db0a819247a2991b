package hub

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/tailored-agentic-units/settingsbus/observability"
)

const (
	clientPending int32 = iota
	clientReplied
	clientForwarded
)

// MessageClient is delivered with each message a hop receives. It ends in
// exactly one of two states: replied, or released without a reply. Release
// forwards the envelope to the next hop on its path.
//
// Callers should `defer client.Release()` (or use Receptor.Handle) so the
// forward happens on every exit path. A client that becomes unreachable while
// still pending is forwarded by a runtime cleanup as a last resort.
type MessageClient[A comparable, P any] struct {
	hub       *Hub[A, P]
	env       *envelope[A, P]
	at        *hop[A, P]
	broadcast bool
	state     *atomic.Int32
	cleanup   runtime.Cleanup
}

type leakedClient[A comparable, P any] struct {
	hub   *Hub[A, P]
	env   *envelope[A, P]
	hop   uint64
	state *atomic.Int32
}

func newClient[A comparable, P any](h *Hub[A, P], env *envelope[A, P], at *hop[A, P]) *MessageClient[A, P] {
	state := new(atomic.Int32)
	c := &MessageClient[A, P]{
		hub:   h,
		env:   env,
		at:    at,
		state: state,
	}
	c.cleanup = runtime.AddCleanup(c, forwardLeaked[A, P], leakedClient[A, P]{
		hub:   h,
		env:   env,
		hop:   at.id,
		state: state,
	})
	return c
}

func newBroadcastClient[A comparable, P any](h *Hub[A, P], env *envelope[A, P], at *hop[A, P]) *MessageClient[A, P] {
	state := new(atomic.Int32)
	state.Store(clientForwarded)
	return &MessageClient[A, P]{
		hub:       h,
		env:       env,
		at:        at,
		broadcast: true,
		state:     state,
	}
}

func forwardLeaked[A comparable, P any](leaked leakedClient[A, P]) {
	if !leaked.state.CompareAndSwap(clientPending, clientForwarded) {
		return
	}
	leaked.hub.emit(context.Background(), EventClientLeaked, observability.LevelWarning, map[string]any{
		"envelope_id": leaked.env.id,
		"hop":         leaked.hop,
	})
	leaked.hub.forward(leaked.env)
}

// disarm retires a client that never left the hub.
func (c *MessageClient[A, P]) disarm() {
	c.state.Store(clientForwarded)
	c.cleanup.Stop()
}

// ID returns the identifier of the envelope this client was delivered with.
func (c *MessageClient[A, P]) ID() string {
	return c.env.id
}

// Author returns the address of the messenger that sent the message, or
// false when the author is a broker.
func (c *MessageClient[A, P]) Author() (A, bool) {
	return c.env.author.kind.Address()
}

func (c *MessageClient[A, P]) Audience() Audience[A] {
	return c.env.audience
}

func (c *MessageClient[A, P]) IsBroadcast() bool {
	return c.broadcast
}

// Reply prepares a reply that travels back to the author and every observer
// of this envelope, bypassing audience resolution. Sending it ends the
// envelope's trip along its path.
func (c *MessageClient[A, P]) Reply(payload P) *MessageBuilder[A, P] {
	return &MessageBuilder[A, P]{
		hub:     c.hub,
		author:  c.at,
		payload: payload,
		client:  c,
	}
}

// Observe taps the eventual reply to this envelope. Each call returns an
// independent receptor; all taps registered before the reply receive a copy,
// including taps opened by the hop that replies. The receptor is closed
// without an event if the envelope ends undeliverable, and is returned
// already closed once the client has been replied through or released.
func (c *MessageClient[A, P]) Observe() *Receptor[A, P] {
	if c.broadcast || c.state.Load() != clientPending {
		closed := newMailbox[MessageEvent[A, P]]()
		closed.seal()
		return newReceptor(c.hub, closed, nil)
	}
	return newReceptor(c.hub, c.hub.observe(c.env), nil)
}

// Release ends this hop's hold on the envelope. If no reply was sent the
// envelope moves on to the next hop. Release is idempotent and safe on a nil
// client, so it can be deferred unconditionally.
func (c *MessageClient[A, P]) Release() {
	if c == nil || c.broadcast {
		return
	}
	if !c.state.CompareAndSwap(clientPending, clientForwarded) {
		return
	}
	c.cleanup.Stop()
	c.hub.forward(c.env)
}

func (c *MessageClient[A, P]) sendReply(payload P, result *mailbox[MessageEvent[A, P]]) {
	if c.broadcast {
		c.hub.logger.Debug(
			"reply to broadcast dropped",
			slog.String("hub_name", c.hub.name),
			slog.String("envelope_id", c.env.id),
		)
		result.push(statusEvent[A, P](StatusUndeliverable))
		result.seal()
		return
	}

	if !c.state.CompareAndSwap(clientPending, clientReplied) {
		result.push(statusEvent[A, P](StatusUndeliverable))
		result.seal()
		return
	}
	c.cleanup.Stop()
	c.hub.completeReply(c.env, payload, result)
}
