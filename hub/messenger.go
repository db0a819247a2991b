package hub

// Messenger is the send capability of a registered identity. A Messenger is
// safe for concurrent use; Clone returns another handle to the same identity
// without creating a second registration.
type Messenger[A comparable, P any] struct {
	hub    *Hub[A, P]
	author *hop[A, P]
}

// Message starts a send of payload to audience.
func (m *Messenger[A, P]) Message(payload P, audience Audience[A]) *MessageBuilder[A, P] {
	return &MessageBuilder[A, P]{
		hub:      m.hub,
		author:   m.author,
		payload:  payload,
		audience: audience,
	}
}

func (m *Messenger[A, P]) Clone() *Messenger[A, P] {
	return &Messenger[A, P]{hub: m.hub, author: m.author}
}

// Address returns the messenger's address, or false for brokers.
func (m *Messenger[A, P]) Address() (A, bool) {
	return m.author.kind.Address()
}

func (m *Messenger[A, P]) IsBroker() bool {
	return m.author.kind.IsBroker()
}

// MessageBuilder holds a pending send. Each Send produces an independent
// envelope (or, for replies, an independent reply attempt).
type MessageBuilder[A comparable, P any] struct {
	hub      *Hub[A, P]
	author   *hop[A, P]
	payload  P
	audience Audience[A]
	client   *MessageClient[A, P]
}

// Send hands the message to the hub and returns a receptor dedicated to its
// outcome. It never blocks on a recipient.
//
// For a message, the receptor yields StatusReceived once a live target
// accepts it, then either the reply or StatusUndeliverable. For a reply, it
// yields StatusReceived if the author's result receptor was still open and
// StatusUndeliverable otherwise.
func (b *MessageBuilder[A, P]) Send() *Receptor[A, P] {
	result := newMailbox[MessageEvent[A, P]]()
	if b.client != nil {
		b.client.sendReply(b.payload, result)
	} else {
		b.hub.send(b.author, b.payload, b.audience, result)
	}
	return newReceptor(b.hub, result, nil)
}
