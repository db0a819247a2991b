package settings

import (
	"fmt"

	"github.com/tailored-agentic-units/settingsbus/hub"
)

// SettingType identifies one setting, e.g. "display.brightness".
type SettingType string

const (
	SettingDisplayBrightness SettingType = "display.brightness"
	SettingAudioVolume       SettingType = "audio.volume"
	SettingDoNotDisturb      SettingType = "do_not_disturb"
	SettingLocale            SettingType = "intl.locale"
)

type AddressKind int

const (
	KindHandler AddressKind = iota + 1
	KindStorage
	KindClient
)

func (k AddressKind) String() string {
	switch k {
	case KindHandler:
		return "handler"
	case KindStorage:
		return "storage"
	case KindClient:
		return "client"
	default:
		return "unknown"
	}
}

// Address identifies a participant on the settings bus.
type Address struct {
	Kind    AddressKind
	Setting SettingType
	ID      string
}

func HandlerAddress(setting SettingType) Address {
	return Address{Kind: KindHandler, Setting: setting}
}

func StorageAddress() Address {
	return Address{Kind: KindStorage}
}

func ClientAddress(id string) Address {
	return Address{Kind: KindClient, ID: id}
}

func (a Address) String() string {
	switch a.Kind {
	case KindHandler:
		return fmt.Sprintf("handler:%s", a.Setting)
	case KindClient:
		return fmt.Sprintf("client:%s", a.ID)
	default:
		return a.Kind.String()
	}
}

type PayloadKind int

const (
	PayloadGet PayloadKind = iota + 1
	PayloadSet
	PayloadValue
	PayloadError
	PayloadChanged
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadGet:
		return "get"
	case PayloadSet:
		return "set"
	case PayloadValue:
		return "value"
	case PayloadError:
		return "error"
	case PayloadChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// Payload is the message body carried on the settings bus. Payloads are
// shared between every receiver of a reply and are never mutated.
type Payload struct {
	Kind    PayloadKind
	Setting SettingType
	Value   string
	Reason  string
}

func Get(setting SettingType) Payload {
	return Payload{Kind: PayloadGet, Setting: setting}
}

func Set(setting SettingType, value string) Payload {
	return Payload{Kind: PayloadSet, Setting: setting, Value: value}
}

func Value(setting SettingType, value string) Payload {
	return Payload{Kind: PayloadValue, Setting: setting, Value: value}
}

func Failure(setting SettingType, reason string) Payload {
	return Payload{Kind: PayloadError, Setting: setting, Reason: reason}
}

func Changed(setting SettingType, value string) Payload {
	return Payload{Kind: PayloadChanged, Setting: setting, Value: value}
}

// Err returns a *RequestError for error payloads and nil otherwise.
func (p Payload) Err() error {
	if p.Kind != PayloadError {
		return nil
	}
	return &RequestError{Setting: p.Setting, Reason: p.Reason}
}

func (p Payload) String() string {
	switch p.Kind {
	case PayloadError:
		return fmt.Sprintf("%s(%s: %s)", p.Kind, p.Setting, p.Reason)
	case PayloadGet:
		return fmt.Sprintf("%s(%s)", p.Kind, p.Setting)
	default:
		return fmt.Sprintf("%s(%s=%s)", p.Kind, p.Setting, p.Value)
	}
}

// Bus types bound to the settings address and payload.
type (
	Bus       = hub.Hub[Address, Payload]
	Messenger = hub.Messenger[Address, Payload]
	Receptor  = hub.Receptor[Address, Payload]
	Event     = hub.MessageEvent[Address, Payload]
)
