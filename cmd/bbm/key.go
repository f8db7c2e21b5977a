package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gianting/bilingual-book-maker/internal/session"
)

type keyDeleteOptions struct {
	yes bool
}

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the translator credential in the OS keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyStatus(cmd)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.AddCommand(
		newKeySetupCmd(),
		newKeyDeleteCmd(),
		newKeyStatusCmd(),
	)
	return cmd
}

func newKeySetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Save a credential to the keychain (prompt only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeySetup(cmd)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newKeyDeleteCmd() *cobra.Command {
	opts := keyDeleteOptions{}
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the credential from the keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyDelete(cmd, &opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Delete without asking")
	return cmd
}

func newKeyStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show where a credential is available (default if no action given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyStatus(cmd)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func runKeySetup(cmd *cobra.Command) error {
	if !stdinIsTerminal() {
		return fmt.Errorf("key setup needs an interactive terminal")
	}
	key, err := promptForKey(cmd.ErrOrStderr(), "API key: ")
	if err != nil {
		return fmt.Errorf("error reading key: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("API key is required for setup")
	}
	if err := saveKey(key); err != nil {
		return fmt.Errorf("error saving key: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Saved credential to keychain.")
	return nil
}

func runKeyDelete(cmd *cobra.Command, opts *keyDeleteOptions) error {
	confirmer := newConfirmer()
	confirmer.Out = cmd.OutOrStdout()
	ok, err := confirmer.ConfirmDeleteKey(opts.yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
		return nil
	}
	if err := deleteKey(); err != nil {
		return fmt.Errorf("error deleting key: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Deleted credential from keychain.")
	return nil
}

func runKeyStatus(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if hasKey() {
		fmt.Fprintln(out, "Keychain: Found (used with translate --key-from-keychain)")
	} else {
		fmt.Fprintln(out, "Keychain: Not Found")
	}
	if session.CredentialFromEnv(lookupEnv) != "" {
		fmt.Fprintf(out, "%s: Set\n", session.EnvCredentialVar)
	} else {
		fmt.Fprintf(out, "%s: Not Set\n", session.EnvCredentialVar)
	}
	return nil
}
