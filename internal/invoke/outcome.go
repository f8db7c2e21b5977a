package invoke

import (
	"strings"

	"github.com/rivo/uniseg"
)

type OutcomeKind int

const (
	Success OutcomeKind = iota
	ValidationFailed
	ProcessFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case ValidationFailed:
		return "validation_failed"
	case ProcessFailed:
		return "process_failed"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one invocation.
type Outcome struct {
	Kind OutcomeKind
	// Missing lists empty required fields for ValidationFailed.
	Missing []string
	// Detail is a short, redacted, user-facing description for ProcessFailed.
	Detail string
	// Err is the underlying apperrors value for anything but Success.
	Err error
}

func (o Outcome) OK() bool { return o.Kind == Success }

// maxDetailGraphemes bounds the failure text shown in a dialog.
const maxDetailGraphemes = 300

// TruncateGraphemes shortens s to at most max user-perceived characters so
// CJK text and emoji in translator output are never split mid-character.
func TruncateGraphemes(s string, max int) string {
	if uniseg.GraphemeClusterCount(s) <= max {
		return s
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for n := 0; n < max-1 && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	b.WriteString("…")
	return b.String()
}
