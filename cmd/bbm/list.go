package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gianting/bilingual-book-maker/internal/language"
	"github.com/gianting/bilingual-book-maker/internal/metadata"
)

func newLanguagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List suggested target languages",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Suggested Languages:")
			for _, l := range language.Suggested {
				marker := " "
				if l.Code == language.DefaultCode {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %-10s %s\n", marker, l.Code, l.Name)
			}
			fmt.Fprintln(out, "Other codes are passed to the translator as typed.")
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List suggested models",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Suggested Models:")
			for _, m := range metadata.Models {
				marker := " "
				if m.ID == metadata.DefaultModelID {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %-26s %-8s %s\n", marker, m.ID, m.Provider, m.Label)
			}
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
