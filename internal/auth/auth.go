// Package auth stores the translation service credential in the OS keychain.
package auth

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"

	"github.com/gianting/bilingual-book-maker/internal/session"
)

const (
	serviceName = "bilingual-book-maker"
	account     = "translator-credential"
)

// Source names where a credential was found.
type Source string

const (
	SourceNone     Source = ""
	SourceKeychain Source = "Keychain"
	SourceEnv      Source = "Environment Variable"
)

var (
	keyringGet    = keyring.Get
	keyringSet    = keyring.Set
	keyringDelete = keyring.Delete
	readPassword  = term.ReadPassword
	stdinFd       = func() int { return int(os.Stdin.Fd()) }
)

// ErrEmptyKey is returned when saving a blank credential.
var ErrEmptyKey = errors.New("credential is empty")

// GetKey returns the stored credential. When allowEnv is set, the
// OPENAI_API_KEY variable is checked after the keychain.
func GetKey(allowEnv bool) (string, Source) {
	key, err := keyringGet(serviceName, account)
	if err == nil && strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), SourceKeychain
	}
	if allowEnv {
		if key := session.CredentialFromEnv(nil); key != "" {
			return key, SourceEnv
		}
	}
	return "", SourceNone
}

func SaveKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	return keyringSet(serviceName, account, key)
}

// DeleteKey removes the stored credential. A missing entry is not an error.
func DeleteKey() error {
	err := keyringDelete(serviceName, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// HasKey reports whether the keychain holds a credential.
func HasKey() bool {
	key, err := keyringGet(serviceName, account)
	return err == nil && strings.TrimSpace(key) != ""
}

// PromptForKey reads a credential from the terminal without echo.
func PromptForKey(out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	b, err := readPassword(stdinFd())
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
