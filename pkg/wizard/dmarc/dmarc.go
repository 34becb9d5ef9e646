// Package dmarc implements the DMARC policy wizard. It emits a TXT record at
// _dmarc with tags in the order v, p, sp, pct, rua, ruf, fo, adkim, aspf.
package dmarc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/schema"
	"github.com/poweradmin/go-recordwizard/pkg/wizard"
)

// Type is the registry identifier of this wizard.
const Type = "dmarc"

// RecordName is the owner name DMARC policies are published under.
const RecordName = "_dmarc"

var (
	policies         = []string{"none", "quarantine", "reject"}
	forensicCodes    = []string{"0", "1", "d", "s"}
	alignmentOptions = []string{"r", "s"}
)

// Engine generates and parses DMARC records.
type Engine struct {
	wizard.Info
	cfg config.Config
}

var _ wizard.Engine = (*Engine)(nil)

// New builds a DMARC engine bound to cfg.
func New(cfg config.Config) *Engine {
	return &Engine{
		Info: wizard.NewInfo(Type, "DMARC Policy",
			"Publish a DMARC policy telling receivers how to treat mail that fails SPF and DKIM checks.", "TXT"),
		cfg: cfg,
	}
}

// Factory adapts New to the registry factory signature.
func Factory(cfg config.Config) (wizard.Engine, error) {
	return New(cfg), nil
}

func (e *Engine) FormSchema() schema.FormSchema {
	return schema.FormSchema{Sections: []schema.Section{
		schema.InfoSection("About DMARC",
			"<p>DMARC builds on <strong>SPF</strong> and <strong>DKIM</strong>. Start with policy <code>none</code> and aggregate reports, then tighten once reports look clean.</p>"),
		schema.NewSection("Policy",
			schema.Field{
				Name: "policy", Label: "Policy", Type: schema.FieldTypeSelect, Required: true, Default: "none",
				Options: []schema.Option{
					{Value: "none", Label: "None", Description: "Monitor only, deliver failing mail normally"},
					{Value: "quarantine", Label: "Quarantine", Description: "Treat failing mail as suspicious"},
					{Value: "reject", Label: "Reject", Description: "Refuse failing mail"},
				},
			},
			schema.Field{
				Name: "subdomain_policy", Label: "Subdomain policy", Type: schema.FieldTypeSelect, Default: "",
				Options: []schema.Option{
					{Value: "", Label: "Same as domain policy"},
					{Value: "none", Label: "None"},
					{Value: "quarantine", Label: "Quarantine"},
					{Value: "reject", Label: "Reject"},
				},
			},
			schema.Field{
				Name: "percentage", Label: "Percentage of messages", Type: schema.FieldTypeNumber, Default: 100,
				Min: schema.Bound(0), Max: schema.Bound(100),
				Help: "Share of failing messages the policy applies to",
			},
		),
		schema.NewSection("Reporting",
			schema.Field{
				Name: "rua", Label: "Aggregate report address", Type: schema.FieldTypeEmail,
				Placeholder: "dmarc-reports@example.com", Help: "Daily summaries (rua). Separate several addresses with commas.",
			},
			schema.Field{
				Name: "ruf", Label: "Forensic report address", Type: schema.FieldTypeEmail,
				Placeholder: "dmarc-forensic@example.com", Help: "Per-message failure reports (ruf)",
			},
			schema.Field{
				Name: "forensic_options", Label: "Forensic report options", Type: schema.FieldTypeCheckboxGroup,
				Default: []string{},
				Options: []schema.Option{
					{Value: "0", Label: "All mechanisms fail", Description: "Report when SPF and DKIM both fail"},
					{Value: "1", Label: "Any mechanism fails", Description: "Report when SPF or DKIM fails"},
					{Value: "d", Label: "DKIM failure", Description: "Report on DKIM signature failures"},
					{Value: "s", Label: "SPF failure", Description: "Report on SPF evaluation failures"},
				},
				VisibleWhen: schema.When("ruf", schema.OpNotEquals, ""),
			},
		),
		schema.NewSection("Alignment",
			alignmentField("dkim_alignment", "DKIM alignment"),
			alignmentField("spf_alignment", "SPF alignment"),
		),
		schema.NewSection("Record Settings", wizard.TTLField(e.cfg)),
	}}
}

func alignmentField(name, label string) schema.Field {
	return schema.Field{
		Name: name, Label: label, Type: schema.FieldTypeRadio, Default: "r",
		Options: []schema.Option{
			{Value: "r", Label: "Relaxed", Description: "Organisational domains must match"},
			{Value: "s", Label: "Strict", Description: "Domains must match exactly"},
		},
	}
}

func (e *Engine) GenerateRecord(data record.FormData) (record.Record, error) {
	policy := strings.ToLower(wizard.SanitizeInput(data.String("policy")))
	if policy == "" {
		policy = "none"
	}
	if !slices.Contains(policies, policy) {
		return record.Record{}, fmt.Errorf("dmarc: unsupported policy %q", policy)
	}

	tags := []string{"v=DMARC1", "p=" + policy}
	if sp := strings.ToLower(wizard.SanitizeInput(data.String("subdomain_policy"))); sp != "" {
		tags = append(tags, "sp="+sp)
	}
	if pct := data.Int("percentage", 100); pct != 100 {
		tags = append(tags, fmt.Sprintf("pct=%d", pct))
	}
	if rua := addresses(data.String("rua")); len(rua) > 0 {
		tags = append(tags, "rua="+mailtoList(rua))
	}
	if ruf := addresses(data.String("ruf")); len(ruf) > 0 {
		tags = append(tags, "ruf="+mailtoList(ruf))
	}
	if fo := forensicOptions(data); len(fo) > 0 {
		tags = append(tags, "fo="+strings.Join(fo, ":"))
	}
	if strings.EqualFold(wizard.SanitizeInput(data.String("dkim_alignment")), "s") {
		tags = append(tags, "adkim=s")
	}
	if strings.EqualFold(wizard.SanitizeInput(data.String("spf_alignment")), "s") {
		tags = append(tags, "aspf=s")
	}

	return record.Record{
		Name:    RecordName,
		Type:    e.RecordType(),
		Content: record.FormatTXT(strings.Join(tags, "; ")),
		TTL:     wizard.ResolveTTL(data, e.cfg),
	}, nil
}

func (e *Engine) Validate(data record.FormData) record.ValidationResult {
	var errs, warnings []string

	policy := strings.ToLower(wizard.SanitizeInput(data.String("policy")))
	switch {
	case policy == "":
		errs = append(errs, "Policy is required")
	case !slices.Contains(policies, policy):
		errs = append(errs, "Policy must be one of: none, quarantine, reject")
	case policy == "none":
		warnings = append(warnings, `Policy "none" only monitors; failing messages are still delivered`)
	}

	if sp := strings.ToLower(wizard.SanitizeInput(data.String("subdomain_policy"))); sp != "" && !slices.Contains(policies, sp) {
		errs = append(errs, "Subdomain policy must be one of: none, quarantine, reject")
	}

	if raw := wizard.SanitizeInput(data.String("percentage")); raw != "" {
		pct, ok := wizard.IntInRange(data["percentage"], 0, 100)
		switch {
		case !ok:
			errs = append(errs, "Percentage must be a number between 0 and 100")
		case pct < 100:
			warnings = append(warnings, fmt.Sprintf("Policy applies to only %d%% of failing messages", pct))
		}
	}

	rua := addresses(data.String("rua"))
	for _, addr := range rua {
		if !wizard.IsValidEmail(addr) {
			errs = append(errs, "Invalid aggregate report email address: "+addr)
		}
	}
	ruf := addresses(data.String("ruf"))
	for _, addr := range ruf {
		if !wizard.IsValidEmail(addr) {
			errs = append(errs, "Invalid forensic report email address: "+addr)
		}
	}
	if len(rua) == 0 && len(ruf) == 0 {
		warnings = append(warnings, "No report addresses configured; you will not see DMARC failures")
	}

	for _, code := range rawForensicOptions(data) {
		if !slices.Contains(forensicCodes, code) {
			errs = append(errs, fmt.Sprintf("Invalid forensic option %q", code))
		}
	}

	for _, field := range [...]struct{ key, label string }{
		{"dkim_alignment", "DKIM alignment"},
		{"spf_alignment", "SPF alignment"},
	} {
		if v := strings.ToLower(wizard.SanitizeInput(data.String(field.key))); v != "" && !slices.Contains(alignmentOptions, v) {
			errs = append(errs, field.label+" must be r (relaxed) or s (strict)")
		}
	}

	errs = append(errs, wizard.ValidateTTL(data[wizard.TTLKey])...)
	return wizard.BuildValidationResult(errs, warnings)
}

func (e *Engine) ParseExistingRecord(content string, meta record.Meta) record.FormData {
	data := e.defaults(meta)
	for _, part := range strings.Split(record.UnquoteTXT(content), ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		switch key {
		case "p":
			data["policy"] = strings.ToLower(value)
		case "sp":
			data["subdomain_policy"] = strings.ToLower(value)
		case "pct":
			if n, ok := record.ParseNumber(value); ok {
				data["percentage"] = int(n)
			}
		case "rua":
			data["rua"] = strings.Join(storedAddresses(value), ", ")
		case "ruf":
			data["ruf"] = strings.Join(storedAddresses(value), ", ")
		case "fo":
			var fo []string
			for _, code := range strings.Split(value, ":") {
				if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
					fo = append(fo, code)
				}
			}
			data["forensic_options"] = fo
		case "adkim":
			data["dkim_alignment"] = strings.ToLower(value)
		case "aspf":
			data["spf_alignment"] = strings.ToLower(value)
		}
	}
	return data
}

func (e *Engine) Preview(data record.FormData) string {
	return wizard.Preview(e, data)
}

func (e *Engine) defaults(meta record.Meta) record.FormData {
	ttl := meta.TTL
	if ttl <= 0 {
		ttl = wizard.DefaultTTL(e.cfg)
	}
	return record.FormData{
		"policy":           "none",
		"subdomain_policy": "",
		"percentage":       100,
		"rua":              "",
		"ruf":              "",
		"forensic_options": []string{},
		"dkim_alignment":   "r",
		"spf_alignment":    "r",
		wizard.TTLKey:      ttl,
	}
}

// addresses splits a comma separated address list, dropping mailto: prefixes.
func addresses(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if len(part) >= len("mailto:") && strings.EqualFold(part[:len("mailto:")], "mailto:") {
			part = strings.TrimSpace(part[len("mailto:"):])
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// storedAddresses parses a published rua/ruf value, dropping any RFC 7489
// size limit such as "!10m".
func storedAddresses(raw string) []string {
	out := addresses(raw)
	for i, addr := range out {
		if at := strings.LastIndex(addr, "@"); at >= 0 {
			if bang := strings.Index(addr[at:], "!"); bang >= 0 {
				out[i] = addr[:at+bang]
			}
		}
	}
	return out
}

func mailtoList(addrs []string) string {
	out := make([]string, len(addrs))
	for i, addr := range addrs {
		out[i] = "mailto:" + addr
	}
	return strings.Join(out, ",")
}

func rawForensicOptions(data record.FormData) []string {
	var out []string
	for _, entry := range data.Strings("forensic_options") {
		for _, code := range strings.FieldsFunc(entry, func(r rune) bool { return r == ':' || r == ',' }) {
			if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
				out = append(out, code)
			}
		}
	}
	return out
}

// forensicOptions returns the known fo codes in canonical order.
func forensicOptions(data record.FormData) []string {
	selected := rawForensicOptions(data)
	var out []string
	for _, code := range forensicCodes {
		if slices.Contains(selected, code) {
			out = append(out, code)
		}
	}
	return out
}
