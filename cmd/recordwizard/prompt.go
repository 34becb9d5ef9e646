package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/tui"
)

func newPromptCmd(opts *rootOptions) *cobra.Command {
	var (
		zone   bool
		origin string
		from   string
	)
	cmd := &cobra.Command{
		Use:   "prompt <type>",
		Short: "Answer the wizard questions interactively",
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

			var initial record.FormData
			if from != "" {
				initial = engine.ParseExistingRecord(from, record.Meta{})
			}
			collector := tui.NewCollector(tui.WithPromptDriver(tui.NewSurveyDriver(cmd.ErrOrStderr())))
			data, err := collector.Collect(cmd.Context(), engine.FormSchema(), initial)
			if errors.Is(err, tui.ErrAborted) {
				return nil
			}
			if err != nil {
				return err
			}
			return emit(cmd, engine, data, zone, origin, false)
		},
	}
	cmd.Flags().BoolVar(&zone, "zone", false, "print a zone file line instead of JSON")
	cmd.Flags().StringVar(&origin, "origin", "example.com.", "zone origin used with --zone")
	cmd.Flags().StringVar(&from, "from", "", "existing record content used as defaults")
	return cmd
}
