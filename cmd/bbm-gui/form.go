package main

import (
	"path/filepath"
	"strings"

	"github.com/gianting/bilingual-book-maker/internal/apperrors"
	"github.com/gianting/bilingual-book-maker/internal/invoke"
	"github.com/gianting/bilingual-book-maker/internal/language"
	"github.com/gianting/bilingual-book-maker/internal/metadata"
	"github.com/gianting/bilingual-book-maker/internal/session"
)

type AppState int

const (
	StateIdle AppState = iota
	StateRunning
	StateSuccess
	StateFailure
)

// bookExtensions are offered by the file picker; typed paths are not filtered.
var bookExtensions = []string{".epub", ".srt"}

func isBookPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range bookExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func languageOptions() []string { return language.Codes() }

func modelOptions() []string { return metadata.ModelIDs() }

var fieldLabels = map[string]string{
	session.FieldFilePath:   "Book file",
	session.FieldCredential: "API key",
	session.FieldLanguage:   "Target language",
	session.FieldModel:      "Model",
}

func fieldLabel(name string) string {
	if l, ok := fieldLabels[name]; ok {
		return l
	}
	return name
}

type notice struct {
	title   string
	message string
	isError bool
}

// noticeFor maps an outcome to the modal shown when a run ends.
func noticeFor(out invoke.Outcome) notice {
	switch out.Kind {
	case invoke.Success:
		return notice{title: "Translation finished", message: "The bilingual book has been created."}
	case invoke.ValidationFailed:
		labels := make([]string, 0, len(out.Missing))
		for _, m := range out.Missing {
			labels = append(labels, fieldLabel(m))
		}
		return notice{
			title:   "Missing fields",
			message: "Please fill in all fields: " + strings.Join(labels, ", ") + ".",
		}
	default:
		msg := out.Detail
		if msg == "" {
			msg = apperrors.PublicMessage(out.Err)
		}
		if msg == "" {
			msg = "The translator exited with an error."
		}
		return notice{title: "Translation failed", message: msg, isError: true}
	}
}

func stateAfter(out invoke.Outcome) AppState {
	switch out.Kind {
	case invoke.Success:
		return StateSuccess
	case invoke.ProcessFailed:
		return StateFailure
	default:
		return StateIdle
	}
}

func statusText(s AppState) string {
	switch s {
	case StateRunning:
		return "Translating…"
	case StateSuccess:
		return "Done."
	case StateFailure:
		return "Failed."
	default:
		return "Ready."
	}
}
