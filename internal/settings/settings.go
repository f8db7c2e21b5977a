// Package settings persists the launcher form between sessions.
//
// The record is a small JSON document at a fixed relative path. Loading never
// fails the caller: a missing or malformed file yields an empty Record plus an
// error the caller may log or ignore. Saving is best-effort in the same way.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gianting/bilingual-book-maker/internal/apperrors"
	"github.com/gianting/bilingual-book-maker/internal/files"
	"github.com/gianting/bilingual-book-maker/internal/logger"
)

// DefaultPath is resolved against the working directory.
const DefaultPath = "bbm_settings.json"

// Record is the on-disk shape. Every field is optional on read.
type Record struct {
	FilePath   string `json:"filePath"`
	Credential string `json:"credential,omitempty"`
	Language   string `json:"language"`
	Model      string `json:"model"`
	KeepOnTop  *bool  `json:"keepOnTop,omitempty"`
}

// IsEmpty reports whether no field is set.
func (r Record) IsEmpty() bool {
	return r == Record{}
}

// Redacted returns a copy safe to print.
func (r Record) Redacted() Record {
	if r.Credential != "" {
		r.Credential = "[REDACTED]"
	}
	return r
}

// Bool returns a pointer to v, for populating KeepOnTop.
func Bool(v bool) *bool { return &v }

type Store struct {
	path string
}

func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load reads the record. The returned Record is always usable; on any failure
// it is empty and err has kind settings_load.
func (s *Store) Load() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, apperrors.New(apperrors.KindSettingsLoad, "No saved settings.", err)
		}
		return Record{}, apperrors.SettingsLoad(fmt.Errorf("read %s: %w", s.path, err))
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, apperrors.SettingsLoad(fmt.Errorf("parse %s: %w", s.path, err))
	}
	return rec, nil
}

// LoadOrEmpty applies the startup policy: any load failure means "no prior
// settings" and is only logged.
func (s *Store) LoadOrEmpty() Record {
	rec, err := s.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("No saved settings", "path", s.path)
		} else {
			logger.Warn("Ignoring unreadable settings", "path", s.path, "error", err)
		}
	}
	return rec
}

// Save overwrites the record. The file is created 0600 because a record
// written after a successful run carries the credential.
func (s *Store) Save(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return apperrors.SettingsSave(fmt.Errorf("encode settings: %w", err))
	}
	data = append(data, '\n')
	if err := files.AtomicWrite(s.path, data, 0600); err != nil {
		return apperrors.SettingsSave(fmt.Errorf("write %s: %w", s.path, err))
	}
	return nil
}

// Clear removes the record. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}
