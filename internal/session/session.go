// Package session holds the in-memory form values for one run of the
// launcher and the pure functions that move them to and from disk.
package session

import (
	"os"
	"strings"

	"github.com/gianting/bilingual-book-maker/internal/language"
	"github.com/gianting/bilingual-book-maker/internal/metadata"
	"github.com/gianting/bilingual-book-maker/internal/settings"
)

// EnvCredentialVar supplies a default credential at startup. It is read once
// and never written.
const EnvCredentialVar = "OPENAI_API_KEY"

// Field names reported by Missing, in form order.
const (
	FieldFilePath   = "filePath"
	FieldCredential = "credential"
	FieldLanguage   = "language"
	FieldModel      = "model"
)

type State struct {
	FilePath   string
	Credential string
	Language   string
	Model      string
	KeepOnTop  bool
}

// Request is the read-only projection handed to the translator.
type Request struct {
	SourcePath     string
	Credential     string
	TargetLanguage string
	ModelID        string
}

// Defaults returns the built-in starting values.
func Defaults() State {
	return State{
		Language:  language.DefaultCode,
		Model:     metadata.DefaultModelID,
		KeepOnTop: true,
	}
}

// Initialize merges defaults, the persisted record and the environment
// credential, lowest precedence first. The environment only ever supplies the
// credential.
func Initialize(envCredential string, persisted settings.Record) State {
	s := Defaults()
	if persisted.FilePath != "" {
		s.FilePath = persisted.FilePath
	}
	if persisted.Credential != "" {
		s.Credential = persisted.Credential
	}
	if persisted.Language != "" {
		s.Language = persisted.Language
	}
	if persisted.Model != "" {
		s.Model = persisted.Model
	}
	if persisted.KeepOnTop != nil {
		s.KeepOnTop = *persisted.KeepOnTop
	}
	if env := strings.TrimSpace(envCredential); env != "" {
		s.Credential = env
	}
	return s
}

// CredentialFromEnv reads EnvCredentialVar through lookup; nil means os.LookupEnv.
func CredentialFromEnv(lookup func(string) (string, bool)) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(EnvCredentialVar)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// Missing lists the required fields that are empty or whitespace.
func (s State) Missing() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{FieldFilePath, s.FilePath},
		{FieldCredential, s.Credential},
		{FieldLanguage, s.Language},
		{FieldModel, s.Model},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func (s State) Request() Request {
	return Request{
		SourcePath:     strings.TrimSpace(s.FilePath),
		Credential:     strings.TrimSpace(s.Credential),
		TargetLanguage: strings.TrimSpace(s.Language),
		ModelID:        strings.TrimSpace(s.Model),
	}
}

// SuccessRecord is written right after a successful run; it is the only
// record that carries the credential.
func (s State) SuccessRecord() settings.Record {
	rec := s.CloseRecord()
	rec.Credential = s.Credential
	return rec
}

// CloseRecord is written when the window closes. It never carries the credential.
func (s State) CloseRecord() settings.Record {
	return settings.Record{
		FilePath:  s.FilePath,
		Language:  s.Language,
		Model:     s.Model,
		KeepOnTop: settings.Bool(s.KeepOnTop),
	}
}
