package settings_test

import (
	"testing"

	"github.com/tailored-agentic-units/settingsbus/settings"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name     string
		validate settings.Validator
		value    string
		wantErr  bool
	}{
		{"int in range", settings.IntRange(0, 100), "42", false},
		{"int at bound", settings.IntRange(0, 100), "100", false},
		{"int above range", settings.IntRange(0, 100), "101", true},
		{"int below range", settings.IntRange(0, 100), "-1", true},
		{"not an int", settings.IntRange(0, 100), "loud", true},
		{"bool true", settings.Bool(), "true", false},
		{"bool numeric", settings.Bool(), "0", false},
		{"not a bool", settings.Bool(), "yes please", true},
		{"allowed value", settings.OneOf("a", "b"), "b", false},
		{"disallowed value", settings.OneOf("a", "b"), "c", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestDefaultDefinitions(t *testing.T) {
	seen := make(map[settings.SettingType]bool)
	for _, def := range settings.DefaultDefinitions() {
		if seen[def.Setting] {
			t.Errorf("duplicate definition for %s", def.Setting)
		}
		seen[def.Setting] = true

		if def.Validate != nil {
			if err := def.Validate(def.Default); err != nil {
				t.Errorf("default %q for %s is invalid: %v", def.Default, def.Setting, err)
			}
		}
	}
}
