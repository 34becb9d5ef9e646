package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/poweradmin/go-recordwizard/pkg/openapi"
)

type violation struct {
	location string
	message  string
}

func newLintCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Check every available wizard schema and the API document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.wizards(cmd)
			if err != nil {
				return err
			}

			var violations []violation
			for _, wizardType := range w.AvailableTypes() {
				engine, err := w.Engine(wizardType)
				if err != nil {
					violations = append(violations, violation{location: wizardType, message: err.Error()})
					continue
				}
				if err := engine.FormSchema().Validate(); err != nil {
					violations = append(violations, violation{location: wizardType, message: err.Error()})
				}
			}
			if _, err := openapi.Document(cmd.Context()); err != nil {
				violations = append(violations, violation{location: "openapi", message: err.Error()})
			}

			if len(violations) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no issues found")
				return nil
			}
			for _, v := range violations {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", v.location, v.message)
			}
			return fmt.Errorf("%d issue(s) found", len(violations))
		},
	}
}
