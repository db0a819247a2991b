package hub

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tailored-agentic-units/settingsbus/config"
	"github.com/tailored-agentic-units/settingsbus/observability"
)

// Hub is the process-local registry and router. All routing state (the
// address table, the broker list, and every envelope cursor) is mutated under
// a single lock, so registration order and per-author send order are well
// defined under concurrent callers.
type Hub[A comparable, P any] struct {
	name string

	mu        sync.Mutex
	addresses map[A]*hop[A, P]
	brokers   []*hop[A, P]
	nextHop   uint64

	logger   *slog.Logger
	observer observability.Observer
	metrics  *Metrics
}

// Option configures a Hub after config-driven initialization.
type Option func(*options)

type options struct {
	observer observability.Observer
}

// WithObserver overrides the observer resolved from HubConfig.Observer.
func WithObserver(o observability.Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// New creates a Hub. The observer named by cfg.Observer is resolved through
// the observability registry; an unknown name falls back to NoOpObserver.
func New[A comparable, P any](cfg config.HubConfig, opts ...Option) *Hub[A, P] {
	merged := config.DefaultHubConfig()
	merged.Merge(&cfg)

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.observer == nil {
		obs, err := observability.GetObserver(merged.Observer)
		if err != nil {
			merged.Logger.Warn(
				"falling back to noop observer",
				slog.String("hub_name", merged.Name),
				slog.String("observer", merged.Observer),
				slog.String("error", err.Error()),
			)
			obs = observability.NoOpObserver{}
		}
		o.observer = obs
	}

	return &Hub[A, P]{
		name:      merged.Name,
		addresses: make(map[A]*hop[A, P]),
		logger:    merged.Logger,
		observer:  o.observer,
		metrics:   NewMetrics(),
	}
}

func (h *Hub[A, P]) Name() string {
	return h.name
}

func (h *Hub[A, P]) Metrics() MetricsSnapshot {
	return h.metrics.Snapshot()
}

// CreateMessenger registers a new identity and returns its send and receive
// handles. It fails with *AddressConflictError when the address already has
// a live registration; a stale entry for the address is replaced.
func (h *Hub[A, P]) CreateMessenger(ctx context.Context, kind MessengerType[A]) (*Messenger[A, P], *Receptor[A, P], error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	h.mu.Lock()
	if address, ok := kind.Address(); ok {
		if existing, exists := h.addresses[address]; exists && existing.live() {
			h.mu.Unlock()
			h.emit(ctx, EventMessengerConflict, observability.LevelWarning, map[string]any{
				"address": address,
			})
			return nil, nil, &AddressConflictError[A]{Address: address}
		}
	}

	h.nextHop++
	reg := &hop[A, P]{
		id:      h.nextHop,
		kind:    kind,
		mailbox: newMailbox[MessageEvent[A, P]](),
	}

	if address, ok := kind.Address(); ok {
		h.addresses[address] = reg
	} else {
		h.brokers = append(h.brokers, reg)
	}
	h.mu.Unlock()

	h.metrics.RecordRegistration(kind.IsBroker(), 1)
	h.emit(ctx, EventMessengerCreated, observability.LevelVerbose, map[string]any{
		"hop":  reg.id,
		"kind": kind.String(),
	})

	messenger := &Messenger[A, P]{hub: h, author: reg}
	receptor := newReceptor(h, reg.mailbox, reg)
	return messenger, receptor, nil
}

// deregister removes reg from the routing tables and closes its mailbox.
// Messages still queued are returned so their clients can be released
// outside the lock.
func (h *Hub[A, P]) deregister(reg *hop[A, P]) []MessageEvent[A, P] {
	h.mu.Lock()
	if address, ok := reg.kind.Address(); ok {
		if current, exists := h.addresses[address]; exists && current == reg {
			delete(h.addresses, address)
		}
	} else {
		h.brokers = slices.DeleteFunc(h.brokers, func(b *hop[A, P]) bool {
			return b == reg
		})
	}
	pending := reg.mailbox.drain()
	h.mu.Unlock()

	h.metrics.RecordRegistration(reg.kind.IsBroker(), -1)
	h.emit(context.Background(), EventMessengerClosed, observability.LevelVerbose, map[string]any{
		"hop":     reg.id,
		"kind":    reg.kind.String(),
		"pending": len(pending),
	})
	return pending
}

// send builds an envelope from author and routes it. It never blocks on a
// recipient.
func (h *Hub[A, P]) send(author *hop[A, P], payload P, audience Audience[A], result *mailbox[MessageEvent[A, P]]) {
	env := newEnvelope(author, payload, audience, result)
	h.metrics.RecordSent(1)

	h.mu.Lock()
	defer h.mu.Unlock()

	if audience.IsBroadcast() {
		h.broadcastLocked(env)
		return
	}

	address, _ := audience.Address()
	h.routeLocked(env, address)
	h.emit(context.Background(), EventEnvelopeSent, observability.LevelVerbose, map[string]any{
		"envelope_id": env.id,
		"audience":    audience.String(),
		"path_len":    len(env.path),
		"has_target":  env.hasTarget,
	})
	h.advanceLocked(env)
}

// routeLocked snapshots the path: live brokers in registration order, then
// the target if it is live. Brokers never intercept their own sends.
func (h *Hub[A, P]) routeLocked(env *envelope[A, P], address A) {
	path := make([]*hop[A, P], 0, len(h.brokers)+1)
	for _, b := range h.brokers {
		if b != env.author && b.live() {
			path = append(path, b)
		}
	}

	if target, exists := h.addresses[address]; exists && target.live() {
		path = append(path, target)
		env.hasTarget = true
	}
	env.path = path
}

// advanceLocked delivers env into the hop at its cursor, or marks it
// undeliverable when no live hop remains there.
func (h *Hub[A, P]) advanceLocked(env *envelope[A, P]) {
	if env.done {
		return
	}

	if env.cursor >= len(env.path) || !env.path[env.cursor].live() {
		h.undeliverableLocked(env)
		return
	}

	next := env.path[env.cursor]
	atTarget := env.atTarget()

	// Received is queued before the message so it is already observable by
	// the time the target can dequeue.
	if atTarget && !env.received {
		env.received = true
		env.result.push(statusEvent[A, P](StatusReceived))
		h.metrics.RecordReceived(1)
		h.emit(context.Background(), EventEnvelopeReceived, observability.LevelVerbose, map[string]any{
			"envelope_id": env.id,
			"hop":         next.id,
		})
	}

	client := newClient(h, env, next)
	if !next.mailbox.push(messageEvent(env.payload, client)) {
		client.disarm()
		h.undeliverableLocked(env)
		return
	}

	h.metrics.RecordDelivery(1)
	h.emit(context.Background(), EventEnvelopeDelivered, observability.LevelVerbose, map[string]any{
		"envelope_id": env.id,
		"hop":         next.id,
		"cursor":      env.cursor,
		"target":      atTarget,
	})
}

// forward advances env past the hop that released it without replying.
func (h *Hub[A, P]) forward(env *envelope[A, P]) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if env.done {
		return
	}

	env.cursor++
	h.emit(context.Background(), EventEnvelopeForwarded, observability.LevelVerbose, map[string]any{
		"envelope_id": env.id,
		"cursor":      env.cursor,
		"path_len":    len(env.path),
	})
	h.advanceLocked(env)
}

// observe taps env's eventual reply. The returned mailbox is already sealed
// when env is terminal.
func (h *Hub[A, P]) observe(env *envelope[A, P]) *mailbox[MessageEvent[A, P]] {
	tap := newMailbox[MessageEvent[A, P]]()

	h.mu.Lock()
	defer h.mu.Unlock()

	if env.done {
		tap.seal()
		return tap
	}
	env.observers = append(env.observers, tap)
	return tap
}

// completeReply delivers payload to the author's result mailbox and to every
// observer tap, then finishes env. The outcome of the reply itself is
// reported on replyResult.
func (h *Hub[A, P]) completeReply(env *envelope[A, P], payload P, replyResult *mailbox[MessageEvent[A, P]]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	defer replyResult.seal()

	if env.done {
		replyResult.push(statusEvent[A, P](StatusUndeliverable))
		return
	}

	delivered := env.result.push(messageEvent[A, P](payload, nil))
	for _, obs := range env.observers {
		obs.push(messageEvent[A, P](payload, nil))
	}

	h.metrics.RecordReply(1)
	h.emit(context.Background(), EventEnvelopeReplied, observability.LevelVerbose, map[string]any{
		"envelope_id": env.id,
		"cursor":      env.cursor,
		"observers":   len(env.observers),
		"delivered":   delivered,
	})
	env.finish()

	if delivered {
		replyResult.push(statusEvent[A, P](StatusReceived))
	} else {
		replyResult.push(statusEvent[A, P](StatusUndeliverable))
	}
}

func (h *Hub[A, P]) undeliverableLocked(env *envelope[A, P]) {
	env.result.push(statusEvent[A, P](StatusUndeliverable))
	h.metrics.RecordUndeliverable(1)
	h.emit(context.Background(), EventEnvelopeUndeliverable, observability.LevelInfo, map[string]any{
		"envelope_id": env.id,
		"audience":    env.audience.String(),
		"cursor":      env.cursor,
		"path_len":    len(env.path),
	})
	env.finish()
}

// broadcastLocked fans env out to every live addressable hop except the
// author. Each recipient gets an independent copy with no reply path.
func (h *Hub[A, P]) broadcastLocked(env *envelope[A, P]) {
	delivered := 0
	for _, reg := range h.addresses {
		if reg == env.author || !reg.live() {
			continue
		}
		if reg.mailbox.push(messageEvent(env.payload, newBroadcastClient(h, env, reg))) {
			delivered++
		}
	}

	h.metrics.RecordBroadcast(1)
	h.metrics.RecordDelivery(delivered)
	h.emit(context.Background(), EventBroadcastSent, observability.LevelVerbose, map[string]any{
		"envelope_id": env.id,
		"delivered":   delivered,
	})

	if delivered == 0 {
		h.undeliverableLocked(env)
		return
	}

	env.received = true
	env.result.push(statusEvent[A, P](StatusReceived))
	h.metrics.RecordReceived(1)
	env.finish()
}

// emit forwards an event to the observer. Observers run on the caller's
// goroutine, possibly with the routing lock held, and must not call back into
// the hub.
func (h *Hub[A, P]) emit(ctx context.Context, eventType observability.EventType, level observability.Level, data map[string]any) {
	data["hub_name"] = h.name
	h.observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "hub",
		Data:      data,
	})
}
