package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/tailored-agentic-units/settingsbus/config"
	"github.com/tailored-agentic-units/settingsbus/settings"
)

type cliConfig struct {
	Hub struct {
		Name     string `mapstructure:"name"`
		Observer string `mapstructure:"observer"`
	} `mapstructure:"hub"`
	Deny    []string          `mapstructure:"deny"`
	Seed    map[string]string `mapstructure:"seed"`
	State   string            `mapstructure:"state"`
	Timeout time.Duration     `mapstructure:"timeout"`
}

func setDefaults() {
	viper.SetDefault("hub.name", "settingsbus")
	viper.SetDefault("hub.observer", "slog")
	viper.SetDefault("timeout", "5s")
}

func loadConfig() (*cliConfig, error) {
	var cfg cliConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &cfg, nil
}

func (c *cliConfig) hubConfig(logger *slog.Logger) config.HubConfig {
	return config.HubConfig{
		Name:     c.Hub.Name,
		Observer: c.Hub.Observer,
		Logger:   logger,
	}
}

func (c *cliConfig) serviceConfig(logger *slog.Logger) settings.Config {
	cfg := settings.Config{
		Hub:       c.hubConfig(logger),
		Deny:      settingTypes(c.Deny),
		StatePath: c.State,
	}

	if len(c.Seed) > 0 {
		cfg.Seed = make(map[settings.SettingType]string, len(c.Seed))
		for k, v := range c.Seed {
			cfg.Seed[settings.SettingType(k)] = v
		}
	}
	return cfg
}

func settingTypes(names []string) []settings.SettingType {
	out := make([]settings.SettingType, 0, len(names))
	for _, name := range names {
		out = append(out, settings.SettingType(name))
	}
	return out
}
