package settings

import (
	"fmt"
	"slices"
	"strconv"
)

// Validator rejects values a setting cannot hold.
type Validator func(value string) error

// Definition describes one setting served by a Handler.
type Definition struct {
	Setting  SettingType
	Default  string
	Validate Validator
}

func (d Definition) validate(value string) error {
	if d.Validate == nil {
		return nil
	}
	return d.Validate(value)
}

func DefaultDefinitions() []Definition {
	return []Definition{
		{Setting: SettingDisplayBrightness, Default: "50", Validate: IntRange(0, 100)},
		{Setting: SettingAudioVolume, Default: "30", Validate: IntRange(0, 100)},
		{Setting: SettingDoNotDisturb, Default: "false", Validate: Bool()},
		{Setting: SettingLocale, Default: "en-US", Validate: OneOf("en-US", "fr-FR", "de-DE", "ja-JP")},
	}
}

func IntRange(low, high int) Validator {
	return func(value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%q is not an integer", value)
		}
		if n < low || n > high {
			return fmt.Errorf("%d is outside [%d, %d]", n, low, high)
		}
		return nil
	}
}

func Bool() Validator {
	return func(value string) error {
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%q is not a boolean", value)
		}
		return nil
	}
}

func OneOf(values ...string) Validator {
	return func(value string) error {
		if !slices.Contains(values, value) {
			return fmt.Errorf("%q is not one of %v", value, values)
		}
		return nil
	}
}
