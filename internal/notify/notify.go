// Package notify posts a desktop notification when a translation ends, so a
// long run can be left in the background.
package notify

import (
	"path/filepath"
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/gianting/bilingual-book-maker/internal/invoke"
	"github.com/gianting/bilingual-book-maker/internal/logger"
)

const appName = "Bilingual Book Maker"

const maxMessageGraphemes = 200

var send = func(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Message builds the title and body for out. book is the source path.
func Message(out invoke.Outcome, book string) (string, string) {
	name := filepath.Base(strings.TrimSpace(book))
	switch out.Kind {
	case invoke.Success:
		return appName, "Finished translating " + name + "."
	case invoke.ValidationFailed:
		return appName, "Missing required fields: " + strings.Join(out.Missing, ", ")
	default:
		msg := "Translation of " + name + " failed."
		if out.Detail != "" {
			msg += " " + out.Detail
		}
		return appName + ": error", invoke.TruncateGraphemes(msg, maxMessageGraphemes)
	}
}

// Finished posts the notification for out. Delivery failures are logged only.
func Finished(out invoke.Outcome, book string) {
	title, msg := Message(out, book)
	if err := send(title, msg); err != nil {
		logger.Debug("Desktop notification failed", "error", err)
	}
}
