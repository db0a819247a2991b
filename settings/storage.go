package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tailored-agentic-units/settingsbus/hub"
)

// StorageAgent answers Get and Set requests addressed to StorageAddress
// from a Store. With a Persister, a Set is written through before the Store
// changes; a failed write leaves the Store untouched and answers with an
// error payload.
type StorageAgent struct {
	store     *Store
	persister Persister
	receptor  *Receptor
	logger    *slog.Logger
}

// NewStorageAgent registers the storage address. persister may be nil.
func NewStorageAgent(ctx context.Context, bus *Bus, store *Store, persister Persister, logger *slog.Logger) (*StorageAgent, error) {
	_, receptor, err := bus.CreateMessenger(ctx, hub.Addressable(StorageAddress()))
	if err != nil {
		return nil, fmt.Errorf("failed to register storage: %w", err)
	}

	return &StorageAgent{
		store:     store,
		persister: persister,
		receptor:  receptor,
		logger:    logger,
	}, nil
}

func (a *StorageAgent) Run(ctx context.Context) error {
	return serve(ctx, a.receptor, a.logger, "storage", func(event Event) error {
		return a.handle(ctx, event)
	})
}

func (a *StorageAgent) Close() {
	a.receptor.Close()
}

func (a *StorageAgent) handle(ctx context.Context, event Event) error {
	if !event.IsMessage() {
		return nil
	}

	request := event.Payload
	switch request.Kind {
	case PayloadGet:
		value, ok := a.store.Load(request.Setting)
		if !ok {
			event.Client.Reply(Failure(request.Setting, "not stored")).Send()
			return nil
		}
		event.Client.Reply(Value(request.Setting, value)).Send()
	case PayloadSet:
		if a.persister != nil {
			if err := a.persister.Save(ctx, a.store.With(request.Setting, request.Value)); err != nil {
				a.logger.Error("setting not persisted",
					slog.String("setting", string(request.Setting)),
					slog.String("error", err.Error()))
				event.Client.Reply(Failure(request.Setting, err.Error())).Send()
				return nil
			}
		}
		a.store.Save(request.Setting, request.Value)
		a.logger.Debug("setting stored",
			slog.String("setting", string(request.Setting)),
			slog.String("value", request.Value))
		event.Client.Reply(Value(request.Setting, request.Value)).Send()
	}
	return nil
}
