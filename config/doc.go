// Package config provides configuration structures for the message hub.
//
// Configuration only exists during initialization; it does not persist into
// runtime components. Loaded configs merge over defaults:
//
//	cfg := config.DefaultHubConfig()
//	var loaded config.HubConfig
//	json.Unmarshal(data, &loaded)
//	cfg.Merge(&loaded)
//
// Merge semantics by field type:
//
//   - Strings: Merge if source is non-empty
//   - Pointers: Merge if source is non-nil
//
// The Observer field names an observer in the observability registry
// ("noop" and "slog" are always available), so JSON configs can select one:
//
//	{"name": "settings", "observer": "slog"}
package config
