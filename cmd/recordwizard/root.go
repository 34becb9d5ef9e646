package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"

	recordwizard "github.com/poweradmin/go-recordwizard"
	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/registry"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "recordwizard",
		Short:        "Build DMARC, SPF, DKIM, CAA, TLSA and SRV records from simple answers",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file (defaults apply when empty)")

	cmd.AddCommand(
		newListCmd(opts),
		newSchemaCmd(opts),
		newGenerateCmd(opts),
		newParseCmd(opts),
		newPromptCmd(opts),
		newServeCmd(opts),
		newLintCmd(opts),
	)
	return cmd
}

func (o *rootOptions) wizards(cmd *cobra.Command) (*recordwizard.Wizards, error) {
	logger := log.New(cmd.ErrOrStderr(), "recordwizard: ", 0)
	if strings.TrimSpace(o.configPath) == "" {
		return recordwizard.New(config.Default(), registry.WithLogger(logger)), nil
	}
	return recordwizard.NewFromFile(o.configPath, registry.WithLogger(logger))
}

func writeJSON(out io.Writer, payload any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
