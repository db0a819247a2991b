package settings_test

import (
	"errors"
	"testing"

	"github.com/tailored-agentic-units/settingsbus/settings"
)

func TestAddress_String(t *testing.T) {
	tests := []struct {
		address settings.Address
		want    string
	}{
		{settings.HandlerAddress(settings.SettingAudioVolume), "handler:audio.volume"},
		{settings.StorageAddress(), "storage"},
		{settings.ClientAddress("abc"), "client:abc"},
		{settings.Address{}, "unknown"},
	}

	for _, tt := range tests {
		if got := tt.address.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestPayload_Err(t *testing.T) {
	if err := settings.Value(settings.SettingLocale, "en-US").Err(); err != nil {
		t.Errorf("Value().Err() = %v, want nil", err)
	}

	err := settings.Failure(settings.SettingLocale, "denied").Err()
	if !errors.Is(err, settings.ErrRequestFailed) {
		t.Fatalf("Failure().Err() = %v, want ErrRequestFailed", err)
	}
	if got := err.Error(); got != "intl.locale: denied" {
		t.Errorf("Error() = %q, want %q", got, "intl.locale: denied")
	}
}

func TestPayload_String(t *testing.T) {
	tests := []struct {
		payload settings.Payload
		want    string
	}{
		{settings.Get(settings.SettingAudioVolume), "get(audio.volume)"},
		{settings.Set(settings.SettingAudioVolume, "3"), "set(audio.volume=3)"},
		{settings.Changed(settings.SettingAudioVolume, "3"), "changed(audio.volume=3)"},
		{settings.Failure(settings.SettingAudioVolume, "bad"), "error(audio.volume: bad)"},
	}

	for _, tt := range tests {
		if got := tt.payload.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
