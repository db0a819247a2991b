package hub

import "github.com/tailored-agentic-units/settingsbus/observability"

// Hub event types emitted while routing.
const (
	EventMessengerCreated      observability.EventType = "hub.messenger.created"
	EventMessengerConflict     observability.EventType = "hub.messenger.conflict"
	EventMessengerClosed       observability.EventType = "hub.messenger.closed"
	EventEnvelopeSent          observability.EventType = "hub.envelope.sent"
	EventEnvelopeDelivered     observability.EventType = "hub.envelope.delivered"
	EventEnvelopeForwarded     observability.EventType = "hub.envelope.forwarded"
	EventEnvelopeReceived      observability.EventType = "hub.envelope.received"
	EventEnvelopeUndeliverable observability.EventType = "hub.envelope.undeliverable"
	EventEnvelopeReplied       observability.EventType = "hub.envelope.replied"
	EventBroadcastSent         observability.EventType = "hub.broadcast.sent"
	EventClientLeaked          observability.EventType = "hub.client.leaked"
)
