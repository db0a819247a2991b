package hub

import "github.com/google/uuid"

// hop binds a registered participant to its mailbox. The id is stable for the
// participant's lifetime; a hop whose mailbox is closed is no longer routable.
type hop[A comparable, P any] struct {
	id      uint64
	kind    MessengerType[A]
	mailbox *mailbox[MessageEvent[A, P]]
}

func (h *hop[A, P]) live() bool {
	return h != nil && !h.mailbox.isClosed()
}

// envelope is one message in flight. All fields after path are mutated only
// while the owning hub's lock is held.
type envelope[A comparable, P any] struct {
	id        string
	payload   P
	author    *hop[A, P]
	audience  Audience[A]
	result    *mailbox[MessageEvent[A, P]]
	path      []*hop[A, P]
	hasTarget bool

	cursor    int
	observers []*mailbox[MessageEvent[A, P]]
	received  bool
	done      bool
}

func newEnvelope[A comparable, P any](
	author *hop[A, P],
	payload P,
	audience Audience[A],
	result *mailbox[MessageEvent[A, P]],
) *envelope[A, P] {
	return &envelope[A, P]{
		id:       generateID(),
		payload:  payload,
		author:   author,
		audience: audience,
		result:   result,
	}
}

// atTarget reports whether the cursor points at the resolved target hop.
func (e *envelope[A, P]) atTarget() bool {
	return e.hasTarget && e.cursor == len(e.path)-1
}

// finish marks the envelope terminal and seals every mailbox that was waiting
// on its outcome.
func (e *envelope[A, P]) finish() {
	e.done = true
	e.result.seal()
	for _, obs := range e.observers {
		obs.seal()
	}
	e.observers = nil
}

func generateID() string {
	return uuid.Must(uuid.NewV7()).String()
}
