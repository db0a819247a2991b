package hub

import (
	"context"
	"sync"
)

// mailbox is an unbounded single-consumer queue. Pushes never block so the
// hub can deliver while holding its routing lock.
type mailbox[T any] struct {
	mu     sync.Mutex
	queue  []T
	closed bool
	signal chan struct{}
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{
		signal: make(chan struct{}, 1),
	}
}

// push enqueues item and reports false if the mailbox is closed.
func (m *mailbox[T]) push(item T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, item)
	m.mu.Unlock()

	m.wake()
	return true
}

// receive returns the next queued item. Queued items are returned even when
// ctx is already done; ErrClosed is returned only once the queue is empty.
func (m *mailbox[T]) receive(ctx context.Context) (T, error) {
	for {
		if item, ok, closed := m.pop(); ok {
			return item, nil
		} else if closed {
			var zero T
			return zero, ErrClosed
		}

		select {
		case <-m.signal:
		case <-ctx.Done():
			if item, ok, _ := m.pop(); ok {
				return item, nil
			}
			var zero T
			return zero, ctx.Err()
		}
	}
}

func (m *mailbox[T]) tryReceive() (T, bool) {
	item, ok, _ := m.pop()
	return item, ok
}

func (m *mailbox[T]) pop() (item T, ok bool, closed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return item, false, m.closed
	}

	item = m.queue[0]
	var zero T
	m.queue[0] = zero
	m.queue = m.queue[1:]
	if len(m.queue) == 0 {
		m.queue = nil
	}
	return item, true, m.closed
}

// seal closes the mailbox but keeps queued items readable.
func (m *mailbox[T]) seal() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wake()
}

// drain closes the mailbox and hands back everything still queued.
func (m *mailbox[T]) drain() []T {
	m.mu.Lock()
	m.closed = true
	items := m.queue
	m.queue = nil
	m.mu.Unlock()

	m.wake()
	return items
}

func (m *mailbox[T]) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mailbox[T]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *mailbox[T]) wake() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}
