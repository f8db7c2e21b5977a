package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gianting/bilingual-book-maker/internal/cleanup"
	"github.com/gianting/bilingual-book-maker/internal/files"
	"github.com/gianting/bilingual-book-maker/internal/logger"
	"github.com/gianting/bilingual-book-maker/internal/settings"
	"github.com/gianting/bilingual-book-maker/internal/version"
)

type rootOptions struct {
	settingsPath string
	logFilePath  string
	debug        bool
}

func execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "bbm",
		Short: "Bilingual Book Maker launcher",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(opts)
		},
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)

	cmd.PersistentFlags().StringVar(&opts.settingsPath, "settings", settings.DefaultPath, "Path to the saved settings file")
	cmd.PersistentFlags().StringVar(&opts.logFilePath, "log-file", "", "Path to save machine-readable JSONL logs")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		newAboutCmd(),
		newTranslateCmd(opts),
		newSettingsCmd(opts),
		newLanguagesCmd(),
		newModelsCmd(),
		newKeyCmd(),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" {
			sub.SetUsageTemplate(subcommandUsageTemplate)
			break
		}
	}

	return cmd
}

func setupLogging(opts *rootOptions) error {
	level := logger.LevelInfo
	if opts.debug {
		level = logger.LevelDebug
	}
	var logFile io.Writer
	if opts.logFilePath != "" {
		if err := files.RejectSymlinkPath(opts.logFilePath); err != nil {
			return err
		}
		f, err := os.OpenFile(opts.logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register("log file", f.Close)
		logFile = f
	}
	logger.Init(level, logFile)
	return nil
}
