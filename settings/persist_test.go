package settings_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tailored-agentic-units/settingsbus/config"
	"github.com/tailored-agentic-units/settingsbus/hub"
	"github.com/tailored-agentic-units/settingsbus/settings"
)

func TestFilePersister_LoadMissingFile(t *testing.T) {
	p := settings.NewFilePersister(filepath.Join(t.TempDir(), "state.yaml"))

	values, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(values) != 0 {
		t.Errorf("Load() returned %d values, want 0", len(values))
	}
}

func TestFilePersister_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.yaml")
	p := settings.NewFilePersister(path)
	ctx := context.Background()

	want := map[settings.SettingType]string{
		settings.SettingAudioVolume: "40",
		settings.SettingLocale:      "ja-JP",
	}
	if err := p.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Load() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Load()[%s] = %q, want %q", k, got[k], v)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the state file", len(entries))
	}
}

func TestFilePersister_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	if err := os.WriteFile(path, []byte("- not\n- a map\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := settings.NewFilePersister(path).Load(context.Background())
	if !errors.Is(err, settings.ErrLoadFailed) {
		t.Errorf("Load() error = %v, want ErrLoadFailed", err)
	}
}

func TestFilePersister_SaveFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	p := settings.NewFilePersister(filepath.Join(blocker, "state.yaml"))
	err := p.Save(context.Background(), map[settings.SettingType]string{settings.SettingLocale: "en-US"})
	if !errors.Is(err, settings.ErrSaveFailed) {
		t.Errorf("Save() error = %v, want ErrSaveFailed", err)
	}
}

func TestService_StatePathRestoresWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")

	first, ctx := startService(t, settings.Config{StatePath: path})
	client := newClient(t, first, ctx)
	if err := client.Set(ctx, settings.SettingDisplayBrightness, "80"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	first.Close()

	second, ctx := startService(t, settings.Config{
		StatePath: path,
		Seed:      map[settings.SettingType]string{settings.SettingDisplayBrightness: "1"},
	})
	got, err := newClient(t, second, ctx).Get(ctx, settings.SettingDisplayBrightness)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "80" {
		t.Errorf("Get() = %q, want %q", got, "80")
	}
}

type failingPersister struct{}

func (failingPersister) Load(context.Context) (map[settings.SettingType]string, error) {
	return nil, nil
}

func (failingPersister) Save(context.Context, map[settings.SettingType]string) error {
	return settings.ErrSaveFailed
}

func TestStorageAgent_PersistFailureRejectsSet(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := hub.New[settings.Address, settings.Payload](config.HubConfig{Name: "storage-test"})
	store := settings.NewStore(nil)

	agent, err := settings.NewStorageAgent(ctx, bus, store, failingPersister{}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("NewStorageAgent() error = %v", err)
	}
	defer agent.Close()
	go agent.Run(ctx)

	messenger, receptor, err := bus.CreateMessenger(ctx, hub.Addressable(settings.ClientAddress("writer")))
	if err != nil {
		t.Fatalf("CreateMessenger() error = %v", err)
	}
	defer receptor.Close()

	result := messenger.Message(
		settings.Set(settings.SettingAudioVolume, "10"),
		hub.AddressAudience(settings.StorageAddress()),
	).Send()

	for {
		event, err := result.Watch(ctx)
		if err != nil {
			t.Fatalf("Watch() error = %v", err)
		}
		if event.IsStatus() {
			continue
		}
		if event.Payload.Kind != settings.PayloadError {
			t.Errorf("reply = %v, want an error payload", event.Payload)
		}
		break
	}

	if _, ok := store.Load(settings.SettingAudioVolume); ok {
		t.Error("value should not be stored when persistence fails")
	}
}
