package settings

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/settingsbus/hub"
)

// AuditEntry records one envelope seen by the AuditBroker and, once it
// arrives, the reply it produced.
type AuditEntry struct {
	ID        string
	Author    Address
	HasAuthor bool
	Audience  hub.Audience[Address]
	Request   Payload
	Reply     Payload
	Replied   bool
	Broadcast bool
}

// AuditBroker sits on every path, opens an observation tap on each message,
// and forwards it immediately. Replies are collected by one goroutine per tap.
type AuditBroker struct {
	receptor *Receptor
	logger   *slog.Logger

	mu      sync.RWMutex
	entries []AuditEntry
	index   map[string]int
}

func NewAuditBroker(ctx context.Context, bus *Bus, logger *slog.Logger) (*AuditBroker, error) {
	_, receptor, err := bus.CreateMessenger(ctx, hub.Broker[Address]())
	if err != nil {
		return nil, fmt.Errorf("failed to register audit broker: %w", err)
	}

	return &AuditBroker{
		receptor: receptor,
		logger:   logger,
		index:    make(map[string]int),
	}, nil
}

// Run serves the broker until its receptor is closed or ctx is done, then
// waits for every outstanding tap.
func (a *AuditBroker) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return serve(gctx, a.receptor, a.logger, "audit", func(event Event) error {
			if !event.IsMessage() {
				return nil
			}

			tap := event.Client.Observe()
			id := a.begin(event)
			g.Go(func() error {
				a.collect(gctx, id, tap)
				return nil
			})
			return nil
		})
	})

	return g.Wait()
}

func (a *AuditBroker) Close() {
	a.receptor.Close()
}

// Entries returns a copy of the audit log in arrival order.
func (a *AuditBroker) Entries() []AuditEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]AuditEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

func (a *AuditBroker) begin(event Event) string {
	client := event.Client
	author, hasAuthor := client.Author()

	entry := AuditEntry{
		ID:        client.ID(),
		Author:    author,
		HasAuthor: hasAuthor,
		Audience:  client.Audience(),
		Request:   event.Payload,
		Broadcast: client.IsBroadcast(),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.index[entry.ID] = len(a.entries)
	a.entries = append(a.entries, entry)
	return entry.ID
}

func (a *AuditBroker) collect(ctx context.Context, id string, tap *Receptor) {
	defer tap.Close()

	for {
		event, err := tap.Watch(ctx)
		if err != nil {
			return
		}
		if !event.IsMessage() {
			continue
		}

		a.mu.Lock()
		if i, ok := a.index[id]; ok {
			a.entries[i].Reply = event.Payload
			a.entries[i].Replied = true
		}
		a.mu.Unlock()

		a.logger.Debug("reply audited",
			slog.String("envelope_id", id),
			slog.String("reply", event.Payload.String()))
	}
}
