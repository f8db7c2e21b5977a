package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gianting/bilingual-book-maker/internal/settings"
)

type clearOptions struct {
	yes bool
}

func newSettingsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or clear the saved form settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsShow(cmd, root)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved settings (credential redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsShow(cmd, root)
		},
	}
	showCmd.SetUsageTemplate(subcommandUsageTemplate)

	opts := clearOptions{}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsClear(cmd, root, &opts)
		},
	}
	clearCmd.SetUsageTemplate(subcommandUsageTemplate)
	clearCmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Delete without asking")

	cmd.AddCommand(showCmd, clearCmd)
	return cmd
}

func runSettingsShow(cmd *cobra.Command, root *rootOptions) error {
	store := settings.NewStore(root.settingsPath)
	rec, err := store.Load()
	out := cmd.OutOrStdout()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(out, "No saved settings at %s\n", store.Path())
			return nil
		}
		return fmt.Errorf("saved settings are unreadable: %w", errors.Unwrap(err))
	}
	if rec.IsEmpty() {
		fmt.Fprintf(out, "Saved settings at %s are empty\n", store.Path())
		return nil
	}
	data, err := json.MarshalIndent(rec.Redacted(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n%s\n", store.Path(), data)
	return nil
}

func runSettingsClear(cmd *cobra.Command, root *rootOptions, opts *clearOptions) error {
	store := settings.NewStore(root.settingsPath)
	if _, err := os.Lstat(store.Path()); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(cmd.OutOrStdout(), "No saved settings at %s\n", store.Path())
		return nil
	}
	confirmer := newConfirmer()
	confirmer.Out = cmd.OutOrStdout()
	ok, err := confirmer.ConfirmClear(store.Path(), opts.yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
		return nil
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", store.Path(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", store.Path())
	return nil
}
