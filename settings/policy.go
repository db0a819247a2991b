package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tailored-agentic-units/settingsbus/hub"
)

// PolicyBroker intercepts Set requests bound for handlers and answers them
// with an error when the setting is on its deny list. Everything else passes
// through untouched.
type PolicyBroker struct {
	deny     map[SettingType]bool
	receptor *Receptor
	logger   *slog.Logger
}

func NewPolicyBroker(ctx context.Context, bus *Bus, deny []SettingType, logger *slog.Logger) (*PolicyBroker, error) {
	_, receptor, err := bus.CreateMessenger(ctx, hub.Broker[Address]())
	if err != nil {
		return nil, fmt.Errorf("failed to register policy broker: %w", err)
	}

	denied := make(map[SettingType]bool, len(deny))
	for _, setting := range deny {
		denied[setting] = true
	}

	return &PolicyBroker{
		deny:     denied,
		receptor: receptor,
		logger:   logger,
	}, nil
}

func (p *PolicyBroker) Run(ctx context.Context) error {
	return serve(ctx, p.receptor, p.logger, "policy", p.handle)
}

func (p *PolicyBroker) Close() {
	p.receptor.Close()
}

func (p *PolicyBroker) handle(event Event) error {
	if !event.IsMessage() || event.Payload.Kind != PayloadSet {
		return nil
	}

	target, ok := event.Client.Audience().Address()
	if !ok || target.Kind != KindHandler || !p.deny[event.Payload.Setting] {
		return nil
	}

	p.logger.Info("set denied by policy",
		slog.String("setting", string(event.Payload.Setting)),
		slog.String("envelope_id", event.Client.ID()))
	event.Client.Reply(Failure(event.Payload.Setting, "denied by policy")).Send()
	return nil
}
