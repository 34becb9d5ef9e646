package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the available wizards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.wizards(cmd)
			if err != nil {
				return err
			}
			metadata := w.Metadata()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), metadata)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tRECORD\tNAME")
			for _, m := range metadata {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Type, m.RecordType, m.Name)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
