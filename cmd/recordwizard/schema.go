package main

import (
	"github.com/spf13/cobra"
)

func newSchemaCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <type>",
		Short: "Print the form schema of a wizard as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.wizards(cmd)
			if err != nil {
				return err
			}
			engine, err := w.Engine(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), engine.FormSchema())
		},
	}
}
