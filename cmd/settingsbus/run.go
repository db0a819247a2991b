package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/settingsbus/hub"
	"github.com/tailored-agentic-units/settingsbus/observability"
	"github.com/tailored-agentic-units/settingsbus/settings"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the settings service and apply requests through the bus",
	Long: `Start the settings service, apply every --set in order, then read every
--get. Each request travels through the audit and policy brokers before
reaching its setting handler.`,
	Example: `  settingsbus run --set audio.volume=40 --get audio.volume
  settingsbus run --deny intl.locale --set intl.locale=fr-FR --dump`,
	RunE: runRun,
}

var (
	runSets []string
	runGets []string
	runDeny []string
	runDump bool
)

func init() {
	runCmd.Flags().StringArrayVar(&runSets, "set", nil, "set a value, as type=value (repeatable)")
	runCmd.Flags().StringArrayVar(&runGets, "get", nil, "read a setting (repeatable)")
	runCmd.Flags().StringArrayVar(&runDeny, "deny", nil, "reject sets for a setting (repeatable)")
	runCmd.Flags().BoolVar(&runDump, "dump", false, "print a YAML snapshot of the store and audit log")
	runCmd.Flags().String("state", "", "YAML file that persists accepted writes")
	_ = viper.BindPFlag("state", runCmd.Flags().Lookup("state"))
	rootCmd.AddCommand(runCmd)
}

type assignment struct {
	setting settings.SettingType
	value   string
}

func parseAssignments(raw []string) ([]assignment, error) {
	out := make([]assignment, 0, len(raw))
	for _, r := range raw {
		name, value, ok := strings.Cut(r, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected type=value", r)
		}
		out = append(out, assignment{setting: settings.SettingType(name), value: value})
	}
	return out, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	assignments, err := parseAssignments(runSets)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr())
	svcCfg := cfg.serviceConfig(logger)
	svcCfg.Deny = append(svcCfg.Deny, settingTypes(runDeny)...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	observer, err := observability.GetObserver(cfg.Hub.Observer)
	if err != nil {
		logger.Warn("falling back to noop observer", slog.String("observer", cfg.Hub.Observer))
		observer = observability.NoOpObserver{}
	}
	recorder := observability.NewRecorder()

	svc, err := settings.NewService(ctx, svcCfg, hub.WithObserver(observability.NewMultiObserver(observer, recorder)))
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	errc := make(chan error, 1)
	go func() { errc <- svc.Run(ctx) }()

	client, err := svc.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	out := cmd.OutOrStdout()
	for _, a := range assignments {
		reqCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		err := client.Set(reqCtx, a.setting, a.value)
		cancel()

		if err != nil {
			fmt.Fprintf(out, "set %s=%s: %v\n", a.setting, a.value, err)
			continue
		}
		fmt.Fprintf(out, "set %s=%s: ok\n", a.setting, a.value)
	}

	for _, name := range runGets {
		reqCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		value, err := client.Get(reqCtx, settings.SettingType(name))
		cancel()

		if err != nil {
			fmt.Fprintf(out, "get %s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(out, "%s = %s\n", name, value)
	}

	if runDump {
		if err := writeDump(out, svc, recorder); err != nil {
			return err
		}
	}

	client.Close()
	svc.Close()
	return <-errc
}

type dump struct {
	Hub      string            `yaml:"hub"`
	Settings map[string]string `yaml:"settings"`
	Metrics  map[string]int64  `yaml:"metrics"`
	Events   map[string]int    `yaml:"events"`
	Audit    []auditRecord     `yaml:"audit,omitempty"`
}

type auditRecord struct {
	ID       string `yaml:"id"`
	Author   string `yaml:"author,omitempty"`
	Audience string `yaml:"audience"`
	Request  string `yaml:"request"`
	Reply    string `yaml:"reply,omitempty"`
}

func writeDump(w io.Writer, svc *settings.Service, recorder *observability.Recorder) error {
	m := svc.Metrics()
	d := dump{
		Hub:      svc.Bus().Name(),
		Settings: svc.Store().Snapshot(),
		Metrics: map[string]int64{
			"addressable":    m.Addressable,
			"brokers":        m.Brokers,
			"envelopes_sent": m.EnvelopesSent,
			"deliveries":     m.Deliveries,
			"received":       m.Received,
			"replies":        m.Replies,
			"undeliverable":  m.Undeliverable,
			"broadcasts":     m.Broadcasts,
		},
		Events: make(map[string]int),
	}

	for _, event := range recorder.Events() {
		d.Events[string(event.Type)]++
	}

	for _, entry := range svc.Audit() {
		record := auditRecord{
			ID:       entry.ID,
			Audience: entry.Audience.String(),
			Request:  entry.Request.String(),
		}
		if entry.HasAuthor {
			record.Author = entry.Author.String()
		}
		if entry.Replied {
			record.Reply = entry.Reply.String()
		}
		d.Audit = append(d.Audit, record)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode dump: %w", err)
	}
	return enc.Close()
}
