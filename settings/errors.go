package settings

import (
	"errors"
	"fmt"
)

var (
	// ErrUndeliverable is returned when no live participant answered a request.
	ErrUndeliverable = errors.New("request undeliverable")

	// ErrRequestFailed matches every RequestError.
	ErrRequestFailed = errors.New("request failed")

	ErrLoadFailed = errors.New("load failed")
	ErrSaveFailed = errors.New("save failed")
)

// RequestError carries the reason from an error payload.
type RequestError struct {
	Setting SettingType
	Reason  string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Setting, e.Reason)
}

func (e *RequestError) Unwrap() error {
	return ErrRequestFailed
}
