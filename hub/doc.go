// Package hub provides an in-process publish/request/reply bus that lets
// independent components talk without holding references to one another.
//
// # Identities
//
// A Hub mints Messenger/Receptor pairs. An addressable messenger owns a
// unique address for as long as its Receptor is open; a broker has no
// address and is interposed on every addressed send, in the order brokers
// were registered:
//
//	h := hub.New[Address, Payload](config.DefaultHubConfig())
//	storage, storageRx, err := h.CreateMessenger(ctx, hub.Addressable(StorageAddress))
//	audit, auditRx, err := h.CreateMessenger(ctx, hub.Broker[Address]())
//
// Creating a second messenger for a live address fails with an
// *AddressConflictError. Closing the Receptor frees the address.
//
// # Sending
//
// Send never blocks on a recipient. It returns a Receptor dedicated to that
// one message:
//
//	result := messenger.Message(request, hub.AddressAudience(StorageAddress)).Send()
//	for {
//	    event, err := result.Watch(ctx)
//	    ...
//	}
//
// The result receptor yields StatusReceived once a live target accepted the
// message, and then exactly one of the reply or StatusUndeliverable.
//
// # Handling
//
// Every delivered message carries a MessageClient. A hop either replies, or
// releases the client without replying, which forwards the message to the
// next hop on its path. Handle releases the client on every exit path:
//
//	err := rx.Handle(ctx, func(event hub.MessageEvent[Address, Payload]) error {
//	    if shouldAnswer(event.Payload) {
//	        event.Client.Reply(answer).Send()
//	    }
//	    return nil
//	})
//
// A hop that wants to see the eventual reply without answering calls
// Observe before releasing.
//
// # Broadcast
//
// A broadcast reaches every live addressable messenger except its author. It
// bypasses brokers and has no reply path.
//
// # Concurrency
//
// All routing state lives behind one lock inside the Hub. Mailboxes are
// unbounded, so delivery never waits on a consumer, and each Receptor supports
// a single outstanding Watch. Observers attached to the hub are invoked on the
// routing goroutine and must not call back into it.
package hub
