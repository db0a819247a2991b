package settings

import (
	"maps"
	"slices"
	"sync"
)

// Store holds persisted setting values in memory. All methods are safe for
// concurrent use.
type Store struct {
	values map[SettingType]string
	mu     sync.RWMutex
}

// NewStore creates a Store seeded with a copy of seed.
func NewStore(seed map[SettingType]string) *Store {
	values := make(map[SettingType]string, len(seed))
	maps.Copy(values, seed)
	return &Store{values: values}
}

func (s *Store) Load(setting SettingType) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[setting]
	return value, ok
}

func (s *Store) Save(setting SettingType, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[setting] = value
}

// Keys returns the stored settings in sorted order.
func (s *Store) Keys() []SettingType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

// With returns a copy of the stored values with setting set to value. The
// store itself is unchanged.
func (s *Store) With(setting SettingType, value string) map[SettingType]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := maps.Clone(s.values)
	out[setting] = value
	return out
}

// Snapshot returns a copy of all stored values keyed by setting name.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[string(k)] = v
	}
	return out
}
