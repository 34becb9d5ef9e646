package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	recordwizard "github.com/poweradmin/go-recordwizard"
	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/openapi"
)

func main() {
	outputDir := flag.String("output", "docs/schemas", "directory receiving <type>.json and openapi.json")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	w := recordwizard.New(config.Default())
	for _, wizardType := range w.AvailableTypes() {
		engine, err := w.Engine(wizardType)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to build %s: %v\n", wizardType, err)
			os.Exit(1)
		}
		payload, err := json.MarshalIndent(engine.FormSchema(), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode %s schema: %v\n", wizardType, err)
			os.Exit(1)
		}
		if err := writeSnapshot(*outputDir, wizardType+".json", payload); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	doc, err := openapi.Document(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build API document: %v\n", err)
		os.Exit(1)
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode API document: %v\n", err)
		os.Exit(1)
	}
	if err := writeSnapshot(*outputDir, "openapi.json", payload); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func writeSnapshot(dir, name string, payload []byte) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
