package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/restdemo/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// No configuration is needed to print the version.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(a.stdout, version.GetFullVersion())
		},
	}
}
