package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gianting/bilingual-book-maker/internal/apperrors"
	"github.com/gianting/bilingual-book-maker/internal/invoke"
	"github.com/gianting/bilingual-book-maker/internal/language"
	"github.com/gianting/bilingual-book-maker/internal/logger"
	"github.com/gianting/bilingual-book-maker/internal/metadata"
	"github.com/gianting/bilingual-book-maker/internal/progress"
	"github.com/gianting/bilingual-book-maker/internal/session"
	"github.com/gianting/bilingual-book-maker/internal/settings"
)

type translateOptions struct {
	language        string
	model           string
	translator      string
	keyFromKeychain bool
	notify          bool
}

func newTranslateCmd(root *rootOptions) *cobra.Command {
	opts := translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate [book]",
		Short: "Run make_book.py on a book with the saved settings",
		Long: `Run the translator on a book. Values not given on the command line come
from the saved settings, then the built-in defaults. OPENAI_API_KEY, when set,
supplies the credential.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args, root, &opts)
		},
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addTranslateFlags(cmd.Flags(), &opts)
	return cmd
}

func addTranslateFlags(fs *pflag.FlagSet, opts *translateOptions) {
	fs.StringVarP(&opts.language, "language", "l", "", "Target language code (default: saved value or zh-hant)")
	fs.StringVarP(&opts.model, "model", "m", "", "Model identifier (default: saved value or gpt4o)")
	fs.StringVar(&opts.translator, "translator", "", "Translator command line (overrides BBM_TRANSLATOR)")
	fs.BoolVar(&opts.keyFromKeychain, "key-from-keychain", false, "Use the keychain credential when no other credential is set")
	fs.BoolVar(&opts.notify, "notify", false, "Show a desktop notification when the run ends")
}

// changedFlags lists the flags set on the command line, for the debug log.
func changedFlags(fs *pflag.FlagSet) []string {
	var names []string
	fs.Visit(func(f *pflag.Flag) {
		names = append(names, f.Name)
	})
	return names
}

func runTranslate(cmd *cobra.Command, args []string, root *rootOptions, opts *translateOptions) error {
	logger.Debug("Translate flags", "changed", changedFlags(cmd.Flags()))
	store := settings.NewStore(root.settingsPath)
	state := session.Initialize(session.CredentialFromEnv(lookupEnv), store.LoadOrEmpty())
	if err := applyTranslateArgs(&state, args, opts); err != nil {
		return err
	}
	if err := resolveCredential(cmd, &state, opts.keyFromKeychain); err != nil {
		return err
	}
	warnUnsuggested(state)

	command, err := resolveCommand(opts.translator)
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	ctrl := invoke.NewController(invoke.Config{
		Runner:   newRunner(cmd.OutOrStdout(), errOut),
		Store:    store,
		Command:  command,
		Schedule: progress.DefaultSchedule(progress.DefaultStepDelay),
		OnProgress: func(p int) {
			fmt.Fprintf(errOut, "Progress: %d%%\n", p)
		},
	})

	ctx, stop := signalContext()
	defer stop()
	out, next, err := ctrl.Run(ctx, state)
	if err != nil {
		return err
	}
	if opts.notify {
		notifyFinished(out, next.FilePath)
	}
	if err := outcomeError(out); err != nil {
		if ctx.Err() != nil {
			logger.Warn("Translation canceled")
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Translation finished: %s\n", next.FilePath)
	return nil
}

func applyTranslateArgs(state *session.State, args []string, opts *translateOptions) error {
	if len(args) > 0 {
		if err := validateBookExtension(args[0]); err != nil {
			return err
		}
		state.FilePath = args[0]
	}
	if v := language.Resolve(opts.language); v != "" {
		state.Language = v
	}
	if v := strings.TrimSpace(opts.model); v != "" {
		state.Model = v
	}
	return nil
}

// resolveCredential fills an empty credential from the keychain (opt-in) or a
// terminal prompt. A credential from settings or the environment is kept.
func resolveCredential(cmd *cobra.Command, state *session.State, fromKeychain bool) error {
	if strings.TrimSpace(state.Credential) != "" {
		return nil
	}
	if fromKeychain {
		if key, source := getKey(false); key != "" {
			logger.Info("Using credential", "source", string(source))
			state.Credential = key
			return nil
		}
	}
	if !stdinIsTerminal() {
		return nil
	}
	key, err := promptForKey(cmd.ErrOrStderr(), "API key (press Enter to skip): ")
	if err != nil {
		return fmt.Errorf("error reading API key: %w", err)
	}
	state.Credential = key
	return nil
}

func resolveCommand(flagValue string) (invoke.Command, error) {
	if strings.TrimSpace(flagValue) != "" {
		command, err := invoke.ParseCommand(flagValue)
		if err != nil {
			return invoke.Command{}, fmt.Errorf("invalid --translator: %w", err)
		}
		return command, nil
	}
	return invoke.CommandFromEnv(lookupEnv)
}

func warnUnsuggested(state session.State) {
	if lang := strings.TrimSpace(state.Language); lang != "" && !language.IsSuggested(lang) {
		logger.Warn("Language is not in the suggested list; passing it through", "language", lang)
	}
	if model := strings.TrimSpace(state.Model); model != "" {
		if _, ok := metadata.LookupModel(model); !ok {
			logger.Warn("Model is not in the suggested list; passing it through", "model", model)
		}
	}
}

func outcomeError(out invoke.Outcome) error {
	switch out.Kind {
	case invoke.Success:
		return nil
	case invoke.ValidationFailed:
		return fmt.Errorf("missing required fields: %s", strings.Join(out.Missing, ", "))
	case invoke.ProcessFailed:
		if out.Detail != "" {
			return errors.New(out.Detail)
		}
		return errors.New(apperrors.PublicMessage(out.Err))
	default:
		return fmt.Errorf("translation finished with unknown outcome: %s", out.Kind)
	}
}

var supportedBookExtensions = map[string]struct{}{
	".epub": {},
	".srt":  {},
}

const supportedBookExtensionsLabel = ".epub, .srt"

func validateBookExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedBookExtensions[ext]; ok {
		return nil
	}
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Errorf("unsupported book extension %q (supported: %s)", ext, supportedBookExtensionsLabel)
}
