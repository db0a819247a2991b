package settings

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tailored-agentic-units/settingsbus/hub"
)

// serve handles events from r until r is closed or ctx is done. Handler
// errors are logged and do not stop the loop.
func serve(ctx context.Context, r *Receptor, logger *slog.Logger, component string, fn func(Event) error) error {
	for {
		err := r.Handle(ctx, fn)
		switch {
		case err == nil:
		case errors.Is(err, hub.ErrClosed):
			return nil
		case ctx.Err() != nil:
			return nil
		default:
			logger.Warn("event handling failed",
				slog.String("component", component),
				slog.String("error", err.Error()))
		}
	}
}

// awaitReply waits for the reply carried by a result receptor. Received
// statuses are skipped; an undeliverable status or a closed receptor yields
// ErrUndeliverable.
func awaitReply(ctx context.Context, r *Receptor) (Payload, error) {
	defer r.Close()

	for {
		event, err := r.Watch(ctx)
		if errors.Is(err, hub.ErrClosed) {
			return Payload{}, ErrUndeliverable
		}
		if err != nil {
			return Payload{}, err
		}

		if event.IsMessage() {
			return event.Payload, nil
		}
		if event.Status == hub.StatusUndeliverable {
			return Payload{}, ErrUndeliverable
		}
	}
}
