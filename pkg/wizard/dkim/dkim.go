// Package dkim implements the DKIM public key wizard.
package dkim

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/schema"
	"github.com/poweradmin/go-recordwizard/pkg/wizard"
)

// Type is the registry identifier of this wizard.
const Type = "dkim"

const (
	domainKeyLabel  = "._domainkey"
	defaultSelector = "default"
	minKeyLength    = 200
)

var (
	selectorPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	pemMarker       = regexp.MustCompile(`-----(BEGIN|END)[^-]*-----`)
)

// Engine generates and parses DKIM key records.
type Engine struct {
	wizard.Info
	cfg config.Config
}

var _ wizard.Engine = (*Engine)(nil)

// New builds a DKIM engine bound to cfg.
func New(cfg config.Config) *Engine {
	return &Engine{
		Info: wizard.NewInfo(Type, "DKIM Key",
			"Publish the public key receivers use to verify DKIM signatures.", "TXT"),
		cfg: cfg,
	}
}

// Factory adapts New to the registry factory signature.
func Factory(cfg config.Config) (wizard.Engine, error) {
	return New(cfg), nil
}

func (e *Engine) FormSchema() schema.FormSchema {
	return schema.FormSchema{Sections: []schema.Section{
		schema.InfoSection("About DKIM",
			"<p>Paste the <strong>public</strong> key produced by your mail server. Never publish the private key.</p>"),
		schema.NewSection("Key",
			schema.Field{
				Name: "selector", Label: "Selector", Type: schema.FieldTypeText, Required: true, Default: defaultSelector,
				Pattern: selectorPattern.String(), Placeholder: "mail",
				Help: "The record is published at <selector>._domainkey",
			},
			schema.Field{
				Name: "key_type", Label: "Key type", Type: schema.FieldTypeSelect, Default: "rsa",
				Options: []schema.Option{
					{Value: "rsa", Label: "RSA"},
					{Value: "ed25519", Label: "Ed25519"},
				},
			},
			schema.Field{
				Name: "public_key", Label: "Public key", Type: schema.FieldTypeTextarea, Required: true, Rows: 6,
				Help: "Base64 key data; PEM header and footer lines are removed automatically",
			},
		),
		schema.NewSection("Flags",
			schema.Field{Name: "testing", Label: "Testing mode (t=y)", Type: schema.FieldTypeCheckbox, Default: false},
			schema.Field{Name: "strict_subdomain", Label: "No subdomain signing (t=s)", Type: schema.FieldTypeCheckbox, Default: false},
		),
		schema.NewSection("Record Settings", wizard.TTLField(e.cfg)),
	}}
}

// CleanKey strips PEM header and footer lines and all whitespace.
func CleanKey(raw string) string {
	stripped := pemMarker.ReplaceAllString(raw, "")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, stripped)
}

// isValidBase64 accepts any value that decodes and re-encodes to itself with
// either padded or unpadded standard encoding.
func isValidBase64(value string) bool {
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding} {
		decoded, err := enc.DecodeString(value)
		if err == nil && enc.EncodeToString(decoded) == value {
			return true
		}
	}
	return false
}

func (e *Engine) GenerateRecord(data record.FormData) (record.Record, error) {
	selector := wizard.SanitizeInput(data.String("selector"))
	if selector == "" {
		return record.Record{}, fmt.Errorf("dkim: selector is required")
	}
	key := CleanKey(data.String("public_key"))
	if key == "" {
		return record.Record{}, fmt.Errorf("dkim: public key is required")
	}

	tags := []string{"v=DKIM1"}
	if keyType := strings.ToLower(wizard.SanitizeInput(data.String("key_type"))); keyType != "" && keyType != "rsa" {
		tags = append(tags, "k="+keyType)
	}
	var flags []string
	if data.Bool("testing") {
		flags = append(flags, "y")
	}
	if data.Bool("strict_subdomain") {
		flags = append(flags, "s")
	}
	if len(flags) > 0 {
		tags = append(tags, "t="+strings.Join(flags, ":"))
	}
	tags = append(tags, "p="+key)

	return record.Record{
		Name:    selector + domainKeyLabel,
		Type:    e.RecordType(),
		Content: record.FormatTXT(strings.Join(tags, "; ")),
		TTL:     wizard.ResolveTTL(data, e.cfg),
	}, nil
}

func (e *Engine) Validate(data record.FormData) record.ValidationResult {
	var errs, warnings []string

	selector := wizard.SanitizeInput(data.String("selector"))
	switch {
	case selector == "":
		errs = append(errs, "Selector is required")
	case !selectorPattern.MatchString(selector):
		errs = append(errs, "Selector may only contain letters, digits, hyphens and underscores")
	}

	keyType := strings.ToLower(wizard.SanitizeInput(data.String("key_type")))
	if keyType != "" && keyType != "rsa" && keyType != "ed25519" {
		errs = append(errs, "Key type must be rsa or ed25519")
	}

	raw := data.String("public_key")
	switch {
	case strings.TrimSpace(raw) == "":
		errs = append(errs, "Public key is required")
	case strings.Contains(raw, "PRIVATE KEY"):
		errs = append(errs, "This is a PRIVATE KEY; publish only the public key")
	default:
		if strings.Contains(raw, "-----BEGIN") || strings.Contains(raw, "-----END") {
			warnings = append(warnings, "PEM BEGIN/END markers were found and removed from the key")
		}
		key := CleanKey(raw)
		switch {
		case key == "":
			errs = append(errs, "Public key is empty once PEM markers are removed")
		case !isValidBase64(key):
			errs = append(errs, "Public key is not valid base64")
		case keyType != "ed25519" && len(key) < minKeyLength:
			warnings = append(warnings, fmt.Sprintf("Public key is only %d characters long; it may be truncated or too weak", len(key)))
		}
	}

	if data.Bool("testing") {
		warnings = append(warnings, "Testing mode is on; receivers will not act on DKIM failures")
	}

	errs = append(errs, wizard.ValidateTTL(data[wizard.TTLKey])...)
	return wizard.BuildValidationResult(errs, warnings)
}

func (e *Engine) ParseExistingRecord(content string, meta record.Meta) record.FormData {
	ttl := meta.TTL
	if ttl <= 0 {
		ttl = wizard.DefaultTTL(e.cfg)
	}
	data := record.FormData{
		"selector":         selectorFromName(meta.Name),
		"key_type":         "rsa",
		"public_key":       "",
		"testing":          false,
		"strict_subdomain": false,
		wizard.TTLKey:      ttl,
	}

	for _, part := range strings.Split(record.UnquoteTXT(content), ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "k":
			data["key_type"] = strings.ToLower(value)
		case "t":
			for _, flag := range strings.Split(value, ":") {
				switch strings.ToLower(strings.TrimSpace(flag)) {
				case "y":
					data["testing"] = true
				case "s":
					data["strict_subdomain"] = true
				}
			}
		case "p":
			data["public_key"] = CleanKey(value)
		}
	}
	return data
}

func (e *Engine) Preview(data record.FormData) string {
	return wizard.Preview(e, data)
}

func selectorFromName(name string) string {
	idx := strings.Index(strings.ToLower(name), domainKeyLabel)
	if idx <= 0 {
		return defaultSelector
	}
	return name[:idx]
}
