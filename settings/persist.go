package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Persister keeps setting values outside the process so a restarted
// service sees the last accepted writes.
type Persister interface {
	Load(ctx context.Context) (map[SettingType]string, error)
	Save(ctx context.Context, values map[SettingType]string) error
}

type filePersister struct {
	path string
}

// NewFilePersister stores every value in one YAML document at path. Writes
// go through a temporary file in the same directory and are renamed into
// place, so a crash never leaves a partial document behind.
func NewFilePersister(path string) Persister {
	return &filePersister{path: path}
}

func (p *filePersister) Load(_ context.Context) (map[SettingType]string, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[SettingType]string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, p.path, err)
	}

	values := make(map[SettingType]string, len(raw))
	for k, v := range raw {
		values[SettingType(k)] = v
	}
	return values, nil
}

func (p *filePersister) Save(_ context.Context, values map[SettingType]string) error {
	raw := make(map[string]string, len(values))
	for k, v := range values {
		raw[string(k)] = v
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	if err := os.Rename(tmpName, p.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return nil
}
