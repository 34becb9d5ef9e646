package caa

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/schema"
	"github.com/poweradmin/go-recordwizard/pkg/testsupport"
)

func newEngine() *Engine {
	return New(config.Default())
}

func TestGenerateRecord(t *testing.T) {
	cases := []struct {
		name string
		data record.FormData
		want string
	}{
		{"provider", record.FormData{"flags": "0", "tag": "issue", "ca_provider": "letsencrypt.org"}, `0 issue "letsencrypt.org"`},
		{"wildcard custom", record.FormData{"flags": 128, "tag": "issuewild", "ca_provider": "custom", "custom_ca": " ca.example.net "}, `128 issuewild "ca.example.net"`},
		{"deny all", record.FormData{"tag": "issue", "ca_provider": ";"}, `0 issue ";"`},
		{"iodef", record.FormData{"tag": "iodef", "iodef_url": "mailto:security@example.com", "ca_provider": "letsencrypt.org"}, `0 iodef "mailto:security@example.com"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := testsupport.MustGenerate(t, newEngine(), tc.data)
			if rec.Name != "@" || rec.Type != "CAA" || rec.Priority != 0 {
				t.Fatalf("unexpected record header: %+v", rec)
			}
			if diff := cmp.Diff(tc.want, rec.Content); diff != "" {
				t.Fatalf("content mismatch (-want +got):\n%s", diff)
			}
			testsupport.AssertParsesAsRR(t, rec)
		})
	}

	if _, err := newEngine().GenerateRecord(record.FormData{"tag": "issue", "ca_provider": "custom"}); err == nil {
		t.Fatalf("expected error for empty custom CA")
	}
}

func TestAllowAllWarning(t *testing.T) {
	result := newEngine().Validate(record.FormData{"tag": "issue", "ca_provider": ";"})
	if !result.Valid {
		t.Fatalf("';' must not be an error: %v", result.Errors)
	}
	if !testsupport.ContainsMessage(result.Warnings, "ALL certificate authorities") {
		t.Fatalf("warnings %v missing allow-all notice", result.Warnings)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name     string
		data     record.FormData
		errors   []string
		warnings []string
	}{
		{name: "known provider", data: record.FormData{"tag": "issue", "ca_provider": "digicert.com"}},
		{name: "critical flag", data: record.FormData{"flags": "128", "tag": "issue", "ca_provider": "digicert.com"}, warnings: []string{"critical flag"}},
		{name: "bad flag", data: record.FormData{"flags": 1, "tag": "issue", "ca_provider": "digicert.com"}, errors: []string{"Flags must be 0 or 128"}},
		{name: "bad tag", data: record.FormData{"tag": "issuemail", "ca_provider": "digicert.com"}, errors: []string{"Property must be one of"}},
		{name: "missing provider", data: record.FormData{"tag": "issue"}, errors: []string{"certificate authority is required"}},
		{name: "missing custom", data: record.FormData{"tag": "issue", "ca_provider": "custom"}, errors: []string{"custom certificate authority"}},
		{name: "bad custom", data: record.FormData{"tag": "issue", "ca_provider": "custom", "custom_ca": "not a domain"}, errors: []string{"Invalid certificate authority domain: not a domain"}},
		{name: "iodef https", data: record.FormData{"tag": "iodef", "iodef_url": "https://report.example.com/caa"}},
		{name: "iodef missing", data: record.FormData{"tag": "iodef"}, errors: []string{"report URL is required"}},
		{name: "iodef scheme", data: record.FormData{"tag": "iodef", "iodef_url": "ftp://example.com"}, errors: []string{"must start with mailto:, http:// or https://"}},
		{name: "iodef mailto", data: record.FormData{"tag": "iodef", "iodef_url": "mailto:nobody"}, errors: []string{"Invalid report email address"}},
		{name: "ttl", data: record.FormData{"tag": "issue", "ca_provider": "digicert.com", "ttl": "x"}, errors: []string{"TTL"}},
	}
	engine := newEngine()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := engine.Validate(tc.data)
			if len(result.Errors) != len(tc.errors) || len(result.Warnings) != len(tc.warnings) {
				t.Fatalf("got errors=%v warnings=%v, want errors=%v warnings=%v", result.Errors, result.Warnings, tc.errors, tc.warnings)
			}
			for _, want := range tc.errors {
				if !testsupport.ContainsMessage(result.Errors, want) {
					t.Fatalf("errors %v missing %q", result.Errors, want)
				}
			}
			for _, want := range tc.warnings {
				if !testsupport.ContainsMessage(result.Warnings, want) {
					t.Fatalf("warnings %v missing %q", result.Warnings, want)
				}
			}
		})
	}
}

func TestParseExistingRecord(t *testing.T) {
	engine := newEngine()
	cases := []struct {
		content string
		want    record.FormData
	}{
		{`0 issue "sectigo.com"`, record.FormData{"flags": "0", "tag": "issue", "ca_provider": "sectigo.com", "custom_ca": "", "iodef_url": "", "ttl": 300}},
		{`128 issuewild "ca.example.net"`, record.FormData{"flags": "128", "tag": "issuewild", "ca_provider": "custom", "custom_ca": "ca.example.net", "iodef_url": "", "ttl": 300}},
		{`0 iodef "https://r.example.com"`, record.FormData{"flags": "0", "tag": "iodef", "ca_provider": "letsencrypt.org", "custom_ca": "", "iodef_url": "https://r.example.com", "ttl": 300}},
		{`garbage`, record.FormData{"flags": "0", "tag": "issue", "ca_provider": "letsencrypt.org", "custom_ca": "", "iodef_url": "", "ttl": 300}},
	}
	for _, tc := range cases {
		got := engine.ParseExistingRecord(tc.content, record.Meta{Name: "@", TTL: 300})
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("parse %q mismatch (-want +got):\n%s", tc.content, diff)
		}
	}
}

func TestConfiguredProviders(t *testing.T) {
	cfg := config.Default()
	cfg.CAProviders = config.CAProviders{{Domain: "internal-ca.example", Name: "Internal CA"}}
	engine := New(cfg)

	field, ok := engine.FormSchema().Field("ca_provider")
	if !ok {
		t.Fatalf("ca_provider field missing")
	}
	want := []schema.Option{
		{Value: "internal-ca.example", Label: "Internal CA", Description: "internal-ca.example"},
		{Value: ";", Label: "No certificate authority", Description: "Forbid issuance entirely"},
		{Value: "custom", Label: "Other (enter domain)"},
	}
	if diff := cmp.Diff(want, field.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	parsed := engine.ParseExistingRecord(`0 issue "internal-ca.example"`, record.Meta{})
	if parsed.String("ca_provider") != "internal-ca.example" {
		t.Fatalf("configured provider not recognised: %#v", parsed)
	}
	if New(config.Config{}).FormSchema().Sections[1].Fields[1].Default != "letsencrypt.org" {
		t.Fatalf("empty config should fall back to default providers")
	}
}

func TestRoundTrip(t *testing.T) {
	engine := newEngine()
	inputs := []record.FormData{
		{"tag": "issue", "ca_provider": "pki.goog"},
		{"flags": "128", "tag": "issuewild", "ca_provider": "custom", "custom_ca": "ca.example.net", "ttl": 120},
		{"tag": "issue", "ca_provider": ";"},
		{"tag": "iodef", "iodef_url": "mailto:caa@example.com"},
	}
	for _, in := range inputs {
		testsupport.AssertRoundTrip(t, engine, in)
	}
}

func TestSchema(t *testing.T) {
	testsupport.AssertSchema(t, newEngine())
}
