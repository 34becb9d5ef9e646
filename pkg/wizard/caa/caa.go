// Package caa implements the CAA wizard, which restricts the certificate
// authorities allowed to issue certificates for a domain.
package caa

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/schema"
	"github.com/poweradmin/go-recordwizard/pkg/wizard"
)

// Type is the registry identifier of this wizard.
const Type = "caa"

const (
	// ProviderCustom selects the free-form custom_ca field.
	ProviderCustom = "custom"
	// ProviderNone is the RFC 8659 empty issuer value.
	ProviderNone = ";"

	tagIssue     = "issue"
	tagIssueWild = "issuewild"
	tagIodef     = "iodef"
	flagCritical = 128
)

var contentPattern = regexp.MustCompile(`^(\d+)\s+(\w+)\s+"(.+)"$`)

// Engine generates and parses CAA records.
type Engine struct {
	wizard.Info
	cfg       config.Config
	providers config.CAProviders
}

var _ wizard.Engine = (*Engine)(nil)

// New builds a CAA engine. The configured providers populate the CA list;
// an empty list falls back to config.DefaultCAProviders.
func New(cfg config.Config) *Engine {
	providers := cfg.CAProviders
	if len(providers) == 0 {
		providers = config.DefaultCAProviders()
	}
	return &Engine{
		Info: wizard.NewInfo(Type, "CAA Record",
			"Restrict which certificate authorities may issue certificates for the domain.", "CAA"),
		cfg:       cfg,
		providers: providers,
	}
}

// Factory adapts New to the registry factory signature.
func Factory(cfg config.Config) (wizard.Engine, error) {
	return New(cfg), nil
}

func (e *Engine) FormSchema() schema.FormSchema {
	options := make([]schema.Option, 0, len(e.providers)+2)
	for _, p := range e.providers {
		options = append(options, schema.Option{Value: p.Domain, Label: p.Name, Description: p.Domain})
	}
	options = append(options,
		schema.Option{Value: ProviderNone, Label: "No certificate authority", Description: "Forbid issuance entirely"},
		schema.Option{Value: ProviderCustom, Label: "Other (enter domain)"},
	)

	return schema.FormSchema{Sections: []schema.Section{
		schema.InfoSection("About CAA",
			"<p>Publish one CAA record per authority you use. Authorities not listed must refuse to issue certificates.</p>"),
		schema.NewSection("Authorization",
			schema.Field{
				Name: "tag", Label: "Property", Type: schema.FieldTypeSelect, Required: true, Default: tagIssue,
				Options: []schema.Option{
					{Value: tagIssue, Label: "issue", Description: "Authorise certificate issuance"},
					{Value: tagIssueWild, Label: "issuewild", Description: "Authorise wildcard certificate issuance"},
					{Value: tagIodef, Label: "iodef", Description: "Where CAs report policy violations"},
				},
			},
			schema.Field{
				Name: "ca_provider", Label: "Certificate authority", Type: schema.FieldTypeSelect, Default: e.providers[0].Domain,
				Options:     options,
				VisibleWhen: schema.When("tag", schema.OpIn, []string{tagIssue, tagIssueWild}),
			},
			schema.Field{
				Name: "custom_ca", Label: "CA domain", Type: schema.FieldTypeText, Placeholder: "ca.example.net",
				VisibleWhen: schema.When("ca_provider", schema.OpEquals, ProviderCustom),
			},
			schema.Field{
				Name: "iodef_url", Label: "Report URL", Type: schema.FieldTypeURL, Placeholder: "mailto:security@example.com",
				Help:        "mailto:, http:// or https:// URL",
				VisibleWhen: schema.When("tag", schema.OpEquals, tagIodef),
			},
		),
		schema.NewSection("Advanced",
			schema.Field{
				Name: "flags", Label: "Flags", Type: schema.FieldTypeSelect, Default: "0",
				Options: []schema.Option{
					{Value: "0", Label: "0 (non-critical)"},
					{Value: "128", Label: "128 (critical)", Description: "CAs that do not understand the property must not issue"},
				},
			},
			wizard.TTLField(e.cfg),
		),
	}}
}

func (e *Engine) GenerateRecord(data record.FormData) (record.Record, error) {
	flags := data.Int("flags", 0)
	tag := e.tag(data)
	value := e.value(data, tag)
	if value == "" {
		return record.Record{}, fmt.Errorf("caa: no value for tag %q", tag)
	}
	return record.Record{
		Name:    "@",
		Type:    e.RecordType(),
		Content: fmt.Sprintf(`%d %s "%s"`, flags, tag, value),
		TTL:     wizard.ResolveTTL(data, e.cfg),
	}, nil
}

func (e *Engine) Validate(data record.FormData) record.ValidationResult {
	var errs, warnings []string

	if raw := wizard.SanitizeInput(data.String("flags")); raw != "" {
		flags, ok := record.ParseNumber(data["flags"])
		switch {
		case !ok || (flags != 0 && flags != flagCritical):
			errs = append(errs, "Flags must be 0 or 128")
		case flags == flagCritical:
			warnings = append(warnings, "The critical flag makes CAs that do not understand this property refuse to issue")
		}
	}

	tag := e.tag(data)
	switch tag {
	case tagIodef:
		target := wizard.SanitizeInput(data.String("iodef_url"))
		if target == "" {
			errs = append(errs, "A report URL is required for iodef")
		} else if msg := checkReportURL(target); msg != "" {
			errs = append(errs, msg)
		}
	case tagIssue, tagIssueWild:
		provider := wizard.SanitizeInput(data.String("ca_provider"))
		switch {
		case provider == "":
			errs = append(errs, "A certificate authority is required")
		case provider == ProviderNone:
			warnings = append(warnings, `The value ";" forbids ALL certificate authorities from issuing; no certificates can be obtained`)
		case provider == ProviderCustom:
			custom := wizard.SanitizeInput(data.String("custom_ca"))
			if custom == "" {
				errs = append(errs, "Enter the domain of the custom certificate authority")
			} else if custom == "@" || !wizard.IsValidDomain(custom) {
				errs = append(errs, "Invalid certificate authority domain: "+custom)
			}
		case !wizard.IsValidDomain(provider):
			errs = append(errs, "Invalid certificate authority domain: "+provider)
		}
	default:
		errs = append(errs, "Property must be one of: issue, issuewild, iodef")
	}

	errs = append(errs, wizard.ValidateTTL(data[wizard.TTLKey])...)
	return wizard.BuildValidationResult(errs, warnings)
}

func checkReportURL(target string) string {
	lower := strings.ToLower(target)
	switch {
	case strings.HasPrefix(lower, "mailto:"):
		if !wizard.IsValidEmail(target[len("mailto:"):]) {
			return "Invalid report email address: " + target
		}
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		u, err := url.Parse(target)
		if err != nil || u.Host == "" {
			return "Invalid report URL: " + target
		}
	default:
		return "Report URL must start with mailto:, http:// or https://"
	}
	return ""
}

func (e *Engine) ParseExistingRecord(content string, meta record.Meta) record.FormData {
	ttl := meta.TTL
	if ttl <= 0 {
		ttl = wizard.DefaultTTL(e.cfg)
	}
	data := record.FormData{
		"flags":       "0",
		"tag":         tagIssue,
		"ca_provider": e.providers[0].Domain,
		"custom_ca":   "",
		"iodef_url":   "",
		wizard.TTLKey: ttl,
	}

	m := contentPattern.FindStringSubmatch(strings.TrimSpace(content))
	if m == nil {
		return data
	}
	data["flags"] = m[1]
	tag := strings.ToLower(m[2])
	data["tag"] = tag
	value := m[3]

	switch {
	case tag == tagIodef:
		data["iodef_url"] = value
	case value == ProviderNone:
		data["ca_provider"] = ProviderNone
	default:
		if _, known := e.providers.Lookup(value); known {
			data["ca_provider"] = value
		} else {
			data["ca_provider"] = ProviderCustom
			data["custom_ca"] = value
		}
	}
	return data
}

func (e *Engine) Preview(data record.FormData) string {
	return wizard.Preview(e, data)
}

func (e *Engine) tag(data record.FormData) string {
	tag := strings.ToLower(wizard.SanitizeInput(data.String("tag")))
	if tag == "" {
		return tagIssue
	}
	return tag
}

func (e *Engine) value(data record.FormData, tag string) string {
	if tag == tagIodef {
		return wizard.SanitizeInput(data.String("iodef_url"))
	}
	provider := wizard.SanitizeInput(data.String("ca_provider"))
	if provider == ProviderCustom {
		return wizard.SanitizeInput(data.String("custom_ca"))
	}
	return provider
}
