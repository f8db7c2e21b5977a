package apperrors

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindProcess      Kind = "process"
	KindSettingsLoad Kind = "settings_load"
	KindSettingsSave Kind = "settings_save"
)

type Error struct {
	Kind Kind
	// SafeMessage is intended for user-facing output and logs.
	SafeMessage string
	// Cause keeps the original internal error for troubleshooting.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func defaultSafeMessage(kind Kind) string {
	switch kind {
	case KindValidation:
		return "Please fill in all fields."
	case KindProcess:
		return "The translator exited with an error."
	case KindSettingsLoad:
		return "Saved settings could not be read."
	case KindSettingsSave:
		return "Settings could not be saved."
	default:
		return "Request failed."
	}
}

func New(kind Kind, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind)
	}
	return &Error{
		Kind:        kind,
		SafeMessage: msg,
		Cause:       cause,
	}
}

func Process(err error) error {
	return New(KindProcess, "", err)
}

func SettingsLoad(err error) error {
	return New(KindSettingsLoad, "", err)
}

func SettingsSave(err error) error {
	return New(KindSettingsSave, "", err)
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}
