package session

import (
	"reflect"
	"testing"

	"github.com/gianting/bilingual-book-maker/internal/settings"
)

func TestInitialize_Precedence(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		persisted settings.Record
		want      State
	}{
		{
			name: "defaults only",
			want: State{Language: "zh-hant", Model: "gpt4o", KeepOnTop: true},
		},
		{
			name:      "persisted overrides defaults",
			persisted: settings.Record{FilePath: "book.epub", Language: "ja", Model: "gpt-4", KeepOnTop: settings.Bool(false)},
			want:      State{FilePath: "book.epub", Language: "ja", Model: "gpt-4", KeepOnTop: false},
		},
		{
			name:      "env credential wins over persisted",
			env:       "sk-env",
			persisted: settings.Record{Credential: "sk-saved"},
			want:      State{Credential: "sk-env", Language: "zh-hant", Model: "gpt4o", KeepOnTop: true},
		},
		{
			name:      "persisted credential used without env",
			persisted: settings.Record{Credential: "sk-saved"},
			want:      State{Credential: "sk-saved", Language: "zh-hant", Model: "gpt4o", KeepOnTop: true},
		},
		{
			name:      "blank env ignored",
			env:       "   ",
			persisted: settings.Record{Credential: "sk-saved"},
			want:      State{Credential: "sk-saved", Language: "zh-hant", Model: "gpt4o", KeepOnTop: true},
		},
		{
			name: "env does not touch other fields",
			env:  "sk-env",
			persisted: settings.Record{
				Language: "fr",
			},
			want: State{Credential: "sk-env", Language: "fr", Model: "gpt4o", KeepOnTop: true},
		},
		{
			name:      "free text values kept",
			persisted: settings.Record{Language: "pt-br", Model: "my-finetune"},
			want:      State{Language: "pt-br", Model: "my-finetune", KeepOnTop: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Initialize(tc.env, tc.persisted)
			if got != tc.want {
				t.Fatalf("Initialize() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestInitialize_NoCredentialAnywhere(t *testing.T) {
	got := Initialize("", settings.Record{})
	if got.Credential != "" {
		t.Fatalf("credential = %q, want empty", got.Credential)
	}
}

func TestCredentialFromEnv(t *testing.T) {
	lookup := func(env map[string]string) func(string) (string, bool) {
		return func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		}
	}
	if got := CredentialFromEnv(lookup(map[string]string{EnvCredentialVar: " sk-1 "})); got != "sk-1" {
		t.Fatalf("CredentialFromEnv() = %q, want %q", got, "sk-1")
	}
	if got := CredentialFromEnv(lookup(nil)); got != "" {
		t.Fatalf("CredentialFromEnv() = %q, want empty", got)
	}
	t.Setenv(EnvCredentialVar, "sk-real-env")
	if got := CredentialFromEnv(nil); got != "sk-real-env" {
		t.Fatalf("CredentialFromEnv(nil) = %q", got)
	}
}

func TestMissing(t *testing.T) {
	full := State{FilePath: "book.epub", Credential: "sk-123", Language: "en", Model: "gpt-4"}
	if m := full.Missing(); len(m) != 0 {
		t.Fatalf("Missing() = %v, want none", m)
	}

	cases := []struct {
		name  string
		edit  func(*State)
		field string
	}{
		{name: "file", edit: func(s *State) { s.FilePath = "" }, field: FieldFilePath},
		{name: "credential", edit: func(s *State) { s.Credential = " " }, field: FieldCredential},
		{name: "language", edit: func(s *State) { s.Language = "" }, field: FieldLanguage},
		{name: "model", edit: func(s *State) { s.Model = "\t" }, field: FieldModel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := full
			tc.edit(&s)
			if got := s.Missing(); !reflect.DeepEqual(got, []string{tc.field}) {
				t.Fatalf("Missing() = %v, want [%s]", got, tc.field)
			}
		})
	}

	if got := (State{}).Missing(); len(got) != 4 {
		t.Fatalf("Missing() on empty state = %v", got)
	}
}

func TestRequest(t *testing.T) {
	s := State{FilePath: " book.epub ", Credential: "sk-123", Language: "zh-hant", Model: "gpt4o"}
	want := Request{SourcePath: "book.epub", Credential: "sk-123", TargetLanguage: "zh-hant", ModelID: "gpt4o"}
	if got := s.Request(); got != want {
		t.Fatalf("Request() = %+v, want %+v", got, want)
	}
}

func TestRecords(t *testing.T) {
	s := State{FilePath: "book.epub", Credential: "sk-123", Language: "zh-hant", Model: "gpt4o", KeepOnTop: false}

	closeRec := s.CloseRecord()
	if closeRec.Credential != "" {
		t.Fatalf("CloseRecord leaked credential")
	}
	if closeRec.FilePath != "book.epub" || closeRec.Language != "zh-hant" || closeRec.Model != "gpt4o" {
		t.Fatalf("CloseRecord() = %+v", closeRec)
	}
	if closeRec.KeepOnTop == nil || *closeRec.KeepOnTop != false {
		t.Fatalf("CloseRecord keepOnTop = %v", closeRec.KeepOnTop)
	}

	okRec := s.SuccessRecord()
	if okRec.Credential != "sk-123" || okRec.FilePath != "book.epub" {
		t.Fatalf("SuccessRecord() = %+v", okRec)
	}
}

func TestRoundTripThroughRecord(t *testing.T) {
	s := State{FilePath: "a.srt", Credential: "sk-1", Language: "ko", Model: "groq", KeepOnTop: false}
	restored := Initialize("", s.CloseRecord())
	s.Credential = ""
	if restored != s {
		t.Fatalf("restored = %+v, want %+v", restored, s)
	}
}
