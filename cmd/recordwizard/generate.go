package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/wizard"
)

type generateOptions struct {
	dataFile string
	values   []string
	zone     bool
	origin   string
	preview  bool
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	g := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate <type>",
		Short: "Validate form data and print the generated record",
		Long: "Form data is read from --data (a JSON object, '-' for stdin) and\n" +
			"overridden by --set key=value pairs. Repeat --set for checkbox groups.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.wizards(cmd)
			if err != nil {
				return err
			}
			engine, err := w.Engine(args[0])
			if err != nil {
				return err
			}
			data, err := g.formData(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return emit(cmd, engine, data, g.zone, g.origin, g.preview)
		},
	}
	cmd.Flags().StringVarP(&g.dataFile, "data", "d", "", "JSON file with form data, '-' for stdin")
	cmd.Flags().StringArrayVarP(&g.values, "set", "s", nil, "form value as key=value")
	cmd.Flags().BoolVar(&g.zone, "zone", false, "print a zone file line instead of JSON")
	cmd.Flags().StringVar(&g.origin, "origin", "example.com.", "zone origin used with --zone")
	cmd.Flags().BoolVar(&g.preview, "preview", false, "print the preview text instead of JSON")
	return cmd
}

func (g *generateOptions) formData(stdin io.Reader) (record.FormData, error) {
	data := record.FormData{}
	if g.dataFile != "" {
		var raw []byte
		var err error
		if g.dataFile == "-" {
			raw, err = io.ReadAll(stdin)
		} else {
			raw, err = os.ReadFile(g.dataFile)
		}
		if err != nil {
			return nil, fmt.Errorf("read form data: %w", err)
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("decode form data: %w", err)
		}
	}
	for _, pair := range g.values {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, expected key=value", pair)
		}
		switch existing := data[key].(type) {
		case string:
			data[key] = []string{existing, value}
		case []string:
			data[key] = append(existing, value)
		default:
			data[key] = value
		}
	}
	return data, nil
}

func emit(cmd *cobra.Command, engine wizard.Engine, data record.FormData, zone bool, origin string, preview bool) error {
	out := cmd.OutOrStdout()
	if preview {
		fmt.Fprintln(out, engine.Preview(data))
		return nil
	}

	result := engine.Validate(data)
	for _, warning := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
	}
	if !result.Valid {
		for _, msg := range result.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", msg)
		}
		return fmt.Errorf("%s: form data is invalid", engine.Type())
	}

	rec, err := engine.GenerateRecord(data)
	if err != nil {
		return err
	}
	if zone {
		line, err := rec.ZoneLine(origin)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, line)
		return nil
	}
	return writeJSON(out, rec)
}
