package settings

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/settingsbus/hub"
)

// Client issues requests to setting handlers and receives Changed
// broadcasts on its own receptor.
type Client struct {
	address   Address
	messenger *Messenger
	receptor  *Receptor
}

func newClient(ctx context.Context, bus *Bus) (*Client, error) {
	address := ClientAddress(uuid.NewString())

	messenger, receptor, err := bus.CreateMessenger(ctx, hub.Addressable(address))
	if err != nil {
		return nil, fmt.Errorf("failed to register client: %w", err)
	}

	return &Client{
		address:   address,
		messenger: messenger,
		receptor:  receptor,
	}, nil
}

func (c *Client) Address() Address {
	return c.address
}

// Get returns the current value of setting, or its default when nothing
// has been stored.
func (c *Client) Get(ctx context.Context, setting SettingType) (string, error) {
	reply, err := c.request(ctx, Get(setting))
	if err != nil {
		return "", fmt.Errorf("get %s: %w", setting, err)
	}
	return reply.Value, nil
}

func (c *Client) Set(ctx context.Context, setting SettingType, value string) error {
	if _, err := c.request(ctx, Set(setting, value)); err != nil {
		return fmt.Errorf("set %s: %w", setting, err)
	}
	return nil
}

// NextChange blocks until a Changed broadcast arrives. Other inbound
// messages are released unanswered.
func (c *Client) NextChange(ctx context.Context) (Payload, error) {
	for {
		event, err := c.receptor.Watch(ctx)
		if err != nil {
			return Payload{}, err
		}
		if !event.IsMessage() {
			continue
		}

		event.Client.Release()
		if event.Payload.Kind == PayloadChanged {
			return event.Payload, nil
		}
	}
}

func (c *Client) Close() {
	c.receptor.Close()
}

func (c *Client) request(ctx context.Context, payload Payload) (Payload, error) {
	result := c.messenger.Message(payload, hub.AddressAudience(HandlerAddress(payload.Setting))).Send()

	reply, err := awaitReply(ctx, result)
	if err != nil {
		return Payload{}, err
	}
	if err := reply.Err(); err != nil {
		return Payload{}, err
	}
	return reply, nil
}
