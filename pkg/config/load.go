package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	RecordWizards struct {
		Enabled *bool    `yaml:"enabled"`
		Types   []string `yaml:"types"`
	} `yaml:"record_wizards"`
	DNS struct {
		TTL          *int        `yaml:"ttl"`
		CAAProviders CAProviders `yaml:"caa_providers"`
	} `yaml:"dns"`
}

// Load reads a YAML configuration file and fills defaults for absent keys.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration bytes. An empty document yields Default().
func Parse(data []byte) (Config, error) {
	var raw fileConfig
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse yaml: %w", err)
		}
	}

	cfg := Default()
	if raw.RecordWizards.Enabled != nil {
		cfg.Enabled = *raw.RecordWizards.Enabled
	}
	if raw.RecordWizards.Types != nil {
		cfg.EnabledTypes = normaliseTypes(raw.RecordWizards.Types)
	}
	if raw.DNS.TTL != nil {
		if *raw.DNS.TTL < 0 || *raw.DNS.TTL > MaxTTL {
			return Config{}, fmt.Errorf("dns.ttl must be between 0 and %d, got %d", MaxTTL, *raw.DNS.TTL)
		}
		cfg.DefaultTTL = *raw.DNS.TTL
	}
	if len(raw.DNS.CAAProviders) > 0 {
		cfg.CAProviders = raw.DNS.CAAProviders
	}
	return cfg, nil
}

func normaliseTypes(types []string) []string {
	out := make([]string, 0, len(types))
	seen := make(map[string]struct{}, len(types))
	for _, t := range types {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// UnmarshalYAML accepts either a mapping of domain to display name, keeping
// document order, or a sequence of {domain, name} objects.
func (p *CAProviders) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(CAProviders, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			domain := strings.TrimSpace(key.Value)
			if domain == "" {
				return fmt.Errorf("caa_providers: line %d: empty domain", key.Line)
			}
			name := strings.TrimSpace(value.Value)
			if name == "" {
				name = domain
			}
			out = append(out, CAProvider{Domain: domain, Name: name})
		}
		*p = out
		return nil
	case yaml.SequenceNode:
		var list []CAProvider
		if err := node.Decode(&list); err != nil {
			return err
		}
		out := make(CAProviders, 0, len(list))
		for _, entry := range list {
			entry.Domain = strings.TrimSpace(entry.Domain)
			if entry.Domain == "" {
				return fmt.Errorf("caa_providers: entry without domain")
			}
			if strings.TrimSpace(entry.Name) == "" {
				entry.Name = entry.Domain
			}
			out = append(out, entry)
		}
		*p = out
		return nil
	default:
		return fmt.Errorf("caa_providers: line %d: expected mapping or list", node.Line)
	}
}
