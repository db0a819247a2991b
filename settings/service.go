package settings

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/settingsbus/config"
	"github.com/tailored-agentic-units/settingsbus/hub"
)

// Config defines the participants a Service registers.
type Config struct {
	Hub         config.HubConfig
	Definitions []Definition
	Deny        []SettingType

	// Seed values are loaded before any persisted state, which wins on
	// conflict.
	Seed map[SettingType]string

	// StatePath names a YAML file that persists accepted writes. Empty keeps
	// values in memory only.
	StatePath string
}

func DefaultConfig() Config {
	return Config{
		Hub:         config.DefaultHubConfig(),
		Definitions: DefaultDefinitions(),
	}
}

func (c *Config) Merge(source *Config) {
	c.Hub.Merge(&source.Hub)

	if len(source.Definitions) > 0 {
		c.Definitions = source.Definitions
	}

	if len(source.Deny) > 0 {
		c.Deny = source.Deny
	}

	if source.Seed != nil {
		c.Seed = source.Seed
	}

	if source.StatePath != "" {
		c.StatePath = source.StatePath
	}
}

// Service wires a storage agent, one handler per definition, and the audit
// and policy brokers onto a single bus. The audit broker registers first and
// so sees every message before the policy broker can answer it.
type Service struct {
	bus      *Bus
	store    *Store
	storage  *StorageAgent
	handlers []*Handler
	audit    *AuditBroker
	policy   *PolicyBroker
	logger   *slog.Logger
}

// NewService registers every participant. Nothing is served until Run.
func NewService(ctx context.Context, cfg Config, opts ...hub.Option) (*Service, error) {
	merged := DefaultConfig()
	merged.Merge(&cfg)

	var persister Persister
	store := NewStore(merged.Seed)
	if merged.StatePath != "" {
		persister = NewFilePersister(merged.StatePath)
		persisted, err := persister.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to restore settings: %w", err)
		}
		for setting, value := range persisted {
			store.Save(setting, value)
		}
	}

	s := &Service{
		bus:    hub.New[Address, Payload](merged.Hub, opts...),
		store:  store,
		logger: merged.Hub.Logger.With(slog.String("hub_name", merged.Hub.Name)),
	}

	var err error
	if s.audit, err = NewAuditBroker(ctx, s.bus, s.logger); err != nil {
		return nil, err
	}

	if s.policy, err = NewPolicyBroker(ctx, s.bus, merged.Deny, s.logger); err != nil {
		s.Close()
		return nil, err
	}

	if s.storage, err = NewStorageAgent(ctx, s.bus, s.store, persister, s.logger); err != nil {
		s.Close()
		return nil, err
	}

	for _, def := range merged.Definitions {
		handler, err := NewHandler(ctx, s.bus, def, s.logger)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.handlers = append(s.handlers, handler)
	}

	s.logger.Info("settings service created",
		slog.Int("handlers", len(s.handlers)),
		slog.Int("denied", len(merged.Deny)))
	return s, nil
}

// Run serves every participant until ctx is done or Close is called.
func (s *Service) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.audit.Run(gctx) })
	g.Go(func() error { return s.policy.Run(gctx) })
	g.Go(func() error { return s.storage.Run(gctx) })
	for _, h := range s.handlers {
		g.Go(func() error { return h.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("settings service stopped: %w", err)
	}
	return nil
}

// Close deregisters every participant, which ends Run.
func (s *Service) Close() {
	for _, h := range s.handlers {
		h.Close()
	}
	if s.storage != nil {
		s.storage.Close()
	}
	if s.policy != nil {
		s.policy.Close()
	}
	if s.audit != nil {
		s.audit.Close()
	}
}

// NewClient registers a client identity under a fresh address.
func (s *Service) NewClient(ctx context.Context) (*Client, error) {
	return newClient(ctx, s.bus)
}

func (s *Service) Bus() *Bus {
	return s.bus
}

func (s *Service) Store() *Store {
	return s.store
}

func (s *Service) Audit() []AuditEntry {
	return s.audit.Entries()
}

func (s *Service) Metrics() hub.MetricsSnapshot {
	return s.bus.Metrics()
}
