package hub

import "sync/atomic"

type MetricsSnapshot struct {
	Addressable   int64
	Brokers       int64
	EnvelopesSent int64
	Deliveries    int64
	Received      int64
	Replies       int64
	Undeliverable int64
	Broadcasts    int64
}

type Metrics struct {
	addressable   atomic.Int64
	brokers       atomic.Int64
	envelopesSent atomic.Int64
	deliveries    atomic.Int64
	received      atomic.Int64
	replies       atomic.Int64
	undeliverable atomic.Int64
	broadcasts    atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordRegistration(broker bool, delta int) {
	if broker {
		m.brokers.Add(int64(delta))
		return
	}
	m.addressable.Add(int64(delta))
}

func (m *Metrics) RecordSent(delta int) {
	m.envelopesSent.Add(int64(delta))
}

func (m *Metrics) RecordDelivery(delta int) {
	m.deliveries.Add(int64(delta))
}

func (m *Metrics) RecordReceived(delta int) {
	m.received.Add(int64(delta))
}

func (m *Metrics) RecordReply(delta int) {
	m.replies.Add(int64(delta))
}

func (m *Metrics) RecordUndeliverable(delta int) {
	m.undeliverable.Add(int64(delta))
}

func (m *Metrics) RecordBroadcast(delta int) {
	m.broadcasts.Add(int64(delta))
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Addressable:   m.addressable.Load(),
		Brokers:       m.brokers.Load(),
		EnvelopesSent: m.envelopesSent.Load(),
		Deliveries:    m.deliveries.Load(),
		Received:      m.received.Load(),
		Replies:       m.replies.Load(),
		Undeliverable: m.undeliverable.Load(),
		Broadcasts:    m.broadcasts.Load(),
	}
}
