package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// HubConfig defines configuration for a Hub instance.
type HubConfig struct {
	// Hub identity, attached to every log line and event.
	Name string `json:"name"`

	// Observer names a registered observability.Observer.
	Observer string `json:"observer"`

	Logger *slog.Logger `json:"-"`
}

// DefaultHubConfig returns a HubConfig with sensible defaults.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		Name:     "default",
		Observer: "noop",
		Logger:   slog.Default(),
	}
}

func (c *HubConfig) Merge(source *HubConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}

	if source.Logger != nil {
		c.Logger = source.Logger
	}
}

// LoadHubConfig reads a JSON config file and merges it over the defaults.
func LoadHubConfig(filename string) (*HubConfig, error) {
	cfg := DefaultHubConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded HubConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
