package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tailored-agentic-units/settingsbus/hub"
)

// Handler owns one setting. It validates writes, persists them through the
// storage agent, and broadcasts a Changed payload after every accepted Set.
type Handler struct {
	def       Definition
	messenger *Messenger
	receptor  *Receptor
	logger    *slog.Logger
}

func NewHandler(ctx context.Context, bus *Bus, def Definition, logger *slog.Logger) (*Handler, error) {
	messenger, receptor, err := bus.CreateMessenger(ctx, hub.Addressable(HandlerAddress(def.Setting)))
	if err != nil {
		return nil, fmt.Errorf("failed to register handler for %s: %w", def.Setting, err)
	}

	return &Handler{
		def:       def,
		messenger: messenger,
		receptor:  receptor,
		logger:    logger.With(slog.String("setting", string(def.Setting))),
	}, nil
}

func (h *Handler) Setting() SettingType {
	return h.def.Setting
}

func (h *Handler) Run(ctx context.Context) error {
	return serve(ctx, h.receptor, h.logger, "handler", func(event Event) error {
		return h.handle(ctx, event)
	})
}

func (h *Handler) Close() {
	h.receptor.Close()
}

func (h *Handler) handle(ctx context.Context, event Event) error {
	if !event.IsMessage() || event.Client.IsBroadcast() {
		return nil
	}

	request := event.Payload
	if request.Setting != h.def.Setting {
		event.Client.Reply(Failure(request.Setting, "wrong handler")).Send()
		return nil
	}

	switch request.Kind {
	case PayloadGet:
		event.Client.Reply(h.get(ctx)).Send()
	case PayloadSet:
		reply, changed := h.set(ctx, request.Value)
		event.Client.Reply(reply).Send()
		if changed {
			h.messenger.Message(Changed(h.def.Setting, request.Value), hub.BroadcastAudience[Address]()).Send().Close()
		}
	default:
		event.Client.Reply(Failure(request.Setting, fmt.Sprintf("unsupported request %s", request.Kind))).Send()
	}
	return nil
}

func (h *Handler) get(ctx context.Context) Payload {
	stored, err := h.request(ctx, Get(h.def.Setting))
	if err != nil {
		h.logger.Warn("storage read failed", slog.String("error", err.Error()))
		return Failure(h.def.Setting, err.Error())
	}
	if stored.Kind == PayloadError {
		return Value(h.def.Setting, h.def.Default)
	}
	return Value(h.def.Setting, stored.Value)
}

func (h *Handler) set(ctx context.Context, value string) (Payload, bool) {
	if err := h.def.validate(value); err != nil {
		return Failure(h.def.Setting, err.Error()), false
	}

	stored, err := h.request(ctx, Set(h.def.Setting, value))
	if err != nil {
		h.logger.Warn("storage write failed", slog.String("error", err.Error()))
		return Failure(h.def.Setting, err.Error()), false
	}
	if stored.Kind == PayloadError {
		return stored, false
	}
	return Value(h.def.Setting, value), true
}

func (h *Handler) request(ctx context.Context, payload Payload) (Payload, error) {
	result := h.messenger.Message(payload, hub.AddressAudience(StorageAddress())).Send()
	return awaitReply(ctx, result)
}
