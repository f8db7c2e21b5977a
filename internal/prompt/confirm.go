package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

type Confirmer struct {
	In            io.Reader
	Out           io.Writer
	IsInteractive func() bool
}

func DefaultConfirmer() Confirmer {
	return Confirmer{
		In:  os.Stdin,
		Out: os.Stdout,
		IsInteractive: func() bool {
			info, err := os.Stdin.Stat()
			if err != nil {
				return false
			}
			return (info.Mode() & os.ModeCharDevice) != 0
		},
	}
}

// Confirm asks question and reports whether the answer was "y" or "yes".
// force skips the question; without a terminal it fails unless forced.
func (c Confirmer) Confirm(question string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	if c.IsInteractive == nil || !c.IsInteractive() {
		return false, fmt.Errorf("non-interactive stdin: use -y to confirm")
	}
	if c.Out != nil {
		fmt.Fprintf(c.Out, "%s (y/n): ", question)
	}
	response, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// ConfirmClear asks before deleting the saved settings at path.
func (c Confirmer) ConfirmClear(path string, force bool) (bool, error) {
	return c.Confirm(fmt.Sprintf("Delete saved settings %s?", path), force)
}

// ConfirmDeleteKey asks before removing the keychain credential.
func (c Confirmer) ConfirmDeleteKey(force bool) (bool, error) {
	return c.Confirm("Remove the stored credential from the keychain?", force)
}
