package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/settingsbus/hub"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Run the two-party round trip and teardown scenario on a numeric hub",
	Long: `Register addresses 1 and 2, send "Foo" from 1 to 2, reply "Bar", then
close 2 and send again. Every event seen by either side is printed.`,
	RunE: runScenario,
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr())
	h := hub.New[int, string](cfg.hubConfig(logger))

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	m1, r1, err := h.CreateMessenger(ctx, hub.Addressable(1))
	if err != nil {
		return err
	}
	defer r1.Close()

	_, r2, err := h.CreateMessenger(ctx, hub.Addressable(2))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	result := m1.Message("Foo", hub.AddressAudience(2)).Send()

	event, err := r2.Watch(ctx)
	if err != nil {
		return fmt.Errorf("address 2 watch: %w", err)
	}
	fmt.Fprintf(out, "2 received %s\n", describe(event))
	event.Client.Reply("Bar").Send()

	if err := drain(ctx, out, result); err != nil {
		return err
	}

	r2.Close()
	fmt.Fprintln(out, "2 closed")

	retry := m1.Message("Foo", hub.AddressAudience(2)).Send()
	return drain(ctx, out, retry)
}

func drain(ctx context.Context, w io.Writer, r *hub.Receptor[int, string]) error {
	for {
		event, err := r.Watch(ctx)
		if errors.Is(err, hub.ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "1 observed %s\n", describe(event))
	}
}

func describe(event hub.MessageEvent[int, string]) string {
	if event.IsMessage() {
		return fmt.Sprintf("message(%q)", event.Payload)
	}
	return fmt.Sprintf("status(%s)", event.Status)
}
