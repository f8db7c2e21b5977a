package invoke

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gianting/bilingual-book-maker/internal/session"
)

// TranslatorEnvVar overrides the translator command line, e.g.
// "uv run make_book.py" or "/opt/bbm/bin/python3 /opt/bbm/make_book.py".
const TranslatorEnvVar = "BBM_TRANSLATOR"

// Argument names understood by make_book.py.
const (
	ArgBookName = "--book_name"
	ArgKey      = "--openai_key"
	ArgLanguage = "--language"
	ArgModel    = "-m"
)

// Command is the translator executable plus any fixed leading arguments.
type Command struct {
	Executable string
	Prefix     []string
}

func DefaultCommand() Command {
	return Command{Executable: "python3", Prefix: []string{"make_book.py"}}
}

// Argv returns the full argument vector for req, executable first.
func (c Command) Argv(req session.Request) []string {
	argv := make([]string, 0, len(c.Prefix)+9)
	argv = append(argv, c.Executable)
	argv = append(argv, c.Prefix...)
	return append(argv,
		ArgBookName, req.SourcePath,
		ArgKey, req.Credential,
		ArgLanguage, req.TargetLanguage,
		ArgModel, req.ModelID,
	)
}

// String renders the command without any per-run arguments.
func (c Command) String() string {
	return strings.Join(append([]string{c.Executable}, c.Prefix...), " ")
}

// ParseCommand splits a command line into a Command, honoring simple quotes.
func ParseCommand(line string) (Command, error) {
	args, err := splitCommandLine(line)
	if err != nil {
		return Command{}, err
	}
	if len(args) == 0 {
		return Command{}, fmt.Errorf("translator command is empty")
	}
	return Command{Executable: args[0], Prefix: args[1:]}, nil
}

// CommandFromEnv returns the override from TranslatorEnvVar, or the default
// when unset. lookup nil means os.LookupEnv.
func CommandFromEnv(lookup func(string) (string, bool)) (Command, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(TranslatorEnvVar)
	if !ok || strings.TrimSpace(v) == "" {
		return DefaultCommand(), nil
	}
	cmd, err := ParseCommand(v)
	if err != nil {
		return Command{}, fmt.Errorf("invalid %s: %w", TranslatorEnvVar, err)
	}
	return cmd, nil
}

func splitCommandLine(input string) ([]string, error) {
	var args []string
	var current strings.Builder
	var quote rune
	escaped := false
	inArg := false

	for _, r := range input {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inArg = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t' || r == '\n':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}

	if escaped {
		return nil, errors.New("unfinished escape sequence in command")
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote in command")
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}
