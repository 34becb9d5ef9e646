package main

import (
	"github.com/spf13/cobra"

	"github.com/poweradmin/go-recordwizard/pkg/record"
)

func newParseCmd(opts *rootOptions) *cobra.Command {
	var meta record.Meta
	cmd := &cobra.Command{
		Use:   "parse <type> <content>",
		Short: "Rebuild form data from stored record content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.wizards(cmd)
			if err != nil {
				return err
			}
			engine, err := w.Engine(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), engine.ParseExistingRecord(args[1], meta))
		},
	}
	cmd.Flags().StringVar(&meta.Name, "name", "", "stored record name, relative to the zone")
	cmd.Flags().IntVar(&meta.TTL, "ttl", 0, "stored record TTL")
	cmd.Flags().IntVar(&meta.Priority, "priority", 0, "stored record priority")
	return cmd
}
