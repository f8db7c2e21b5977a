package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAboutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "about",
		Short: "Show a short description and link",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "bbm: launcher for bilingual_book_maker (make_book.py)")
			fmt.Fprintln(out, "https://github.com/yihong0618/bilingual_book_maker")
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
