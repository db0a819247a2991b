package settings_test

import (
	"slices"
	"testing"

	"github.com/tailored-agentic-units/settingsbus/settings"
)

func TestStore(t *testing.T) {
	seed := map[settings.SettingType]string{settings.SettingLocale: "en-US"}
	store := settings.NewStore(seed)
	seed[settings.SettingLocale] = "changed"

	if got, ok := store.Load(settings.SettingLocale); !ok || got != "en-US" {
		t.Errorf("Load() = (%q, %v), want (%q, true)", got, ok, "en-US")
	}
	if _, ok := store.Load(settings.SettingAudioVolume); ok {
		t.Error("Load() of unset setting should report false")
	}

	store.Save(settings.SettingAudioVolume, "10")

	want := []settings.SettingType{settings.SettingAudioVolume, settings.SettingLocale}
	if got := store.Keys(); !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	snapshot := store.Snapshot()
	snapshot["audio.volume"] = "99"
	if got, _ := store.Load(settings.SettingAudioVolume); got != "10" {
		t.Errorf("Snapshot() should be a copy; Load() = %q", got)
	}
}
