package hub

import "fmt"

// MessengerType selects the identity a messenger is created with: a unique
// address, or an unaddressed broker interposed on every addressed send.
type MessengerType[A comparable] struct {
	broker  bool
	address A
}

// Addressable returns a MessengerType bound to address. At most one live
// messenger may hold a given address.
func Addressable[A comparable](address A) MessengerType[A] {
	return MessengerType[A]{address: address}
}

// Broker returns a MessengerType for a broker. Brokers are visited in the
// order their registration completed.
func Broker[A comparable]() MessengerType[A] {
	return MessengerType[A]{broker: true}
}

func (t MessengerType[A]) IsBroker() bool {
	return t.broker
}

// Address returns the bound address, or false for brokers.
func (t MessengerType[A]) Address() (A, bool) {
	if t.broker {
		var zero A
		return zero, false
	}
	return t.address, true
}

func (t MessengerType[A]) String() string {
	if t.broker {
		return "broker"
	}
	return fmt.Sprintf("addressable(%v)", t.address)
}

// Audience is the addressing mode of a send.
type Audience[A comparable] struct {
	broadcast bool
	address   A
}

// AddressAudience targets the messenger currently registered at address.
func AddressAudience[A comparable](address A) Audience[A] {
	return Audience[A]{address: address}
}

// BroadcastAudience targets every live addressable messenger except the author.
func BroadcastAudience[A comparable]() Audience[A] {
	return Audience[A]{broadcast: true}
}

func (a Audience[A]) IsBroadcast() bool {
	return a.broadcast
}

func (a Audience[A]) Address() (A, bool) {
	if a.broadcast {
		var zero A
		return zero, false
	}
	return a.address, true
}

func (a Audience[A]) String() string {
	if a.broadcast {
		return "broadcast"
	}
	return fmt.Sprintf("address(%v)", a.address)
}

// DeliveryStatus is an acknowledgment reported on a sender's result receptor.
type DeliveryStatus int

const (
	// StatusReceived reports that the message was placed into a live target mailbox.
	StatusReceived DeliveryStatus = iota + 1
	// StatusUndeliverable reports that no live recipient remained on the path.
	StatusUndeliverable
)

func (s DeliveryStatus) String() string {
	switch s {
	case StatusReceived:
		return "received"
	case StatusUndeliverable:
		return "undeliverable"
	default:
		return "unknown"
	}
}

type EventKind int

const (
	EventMessage EventKind = iota + 1
	EventStatus
)

// MessageEvent is the only thing a Receptor yields.
//
// For messages delivered to a hop, Client is the per-delivery handle and must
// be released (or replied through) exactly once. Replies arriving on a result
// or observer receptor carry a nil Client.
type MessageEvent[A comparable, P any] struct {
	Kind    EventKind
	Payload P
	Client  *MessageClient[A, P]
	Status  DeliveryStatus
}

func (e MessageEvent[A, P]) IsMessage() bool {
	return e.Kind == EventMessage
}

func (e MessageEvent[A, P]) IsStatus() bool {
	return e.Kind == EventStatus
}

func messageEvent[A comparable, P any](payload P, client *MessageClient[A, P]) MessageEvent[A, P] {
	return MessageEvent[A, P]{Kind: EventMessage, Payload: payload, Client: client}
}

func statusEvent[A comparable, P any](status DeliveryStatus) MessageEvent[A, P] {
	return MessageEvent[A, P]{Kind: EventStatus, Status: status}
}
