package wizard

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/record"
)

func TestValidateTTLBounds(t *testing.T) {
	cases := []struct {
		name  string
		value any
		ok    bool
	}{
		{"zero", 0, true},
		{"max", 2147483647, true},
		{"max string", "2147483647", true},
		{"absent", nil, true},
		{"blank", "  ", true},
		{"negative", -1, false},
		{"overflow", int64(2147483648), false},
		{"overflow string", "2147483648", false},
		{"word", "one hour", false},
		{"bool", true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateTTL(tc.value)
			if got := len(errs) == 0; got != tc.ok {
				t.Fatalf("ValidateTTL(%v) errors=%v, want ok=%v", tc.value, errs, tc.ok)
			}
		})
	}
}

func TestResolveTTL(t *testing.T) {
	cfg := config.Config{DefaultTTL: 3600}
	if got := ResolveTTL(record.FormData{}, cfg); got != 3600 {
		t.Fatalf("default ttl = %d", got)
	}
	if got := ResolveTTL(record.FormData{"ttl": "300"}, cfg); got != 300 {
		t.Fatalf("form ttl = %d", got)
	}
	if got := ResolveTTL(record.FormData{"ttl": "abc"}, cfg); got != 3600 {
		t.Fatalf("garbage ttl = %d", got)
	}
	if got := DefaultTTL(config.Config{}); got != config.DefaultTTL {
		t.Fatalf("zero config ttl = %d", got)
	}
}

func TestIsValidDomain(t *testing.T) {
	valid := []string{"", "@", "example.com", "example.com.", "Mail.Example.COM", "a-b.c0", "xn--bcher-kva.example"}
	invalid := []string{".", "-bad.example", "bad-.example", "two..dots", "under_score.example", "space here.com", strings.Repeat("a", 64) + ".com", "example.com.."}
	for _, v := range valid {
		if !IsValidDomain(v) {
			t.Errorf("IsValidDomain(%q) = false, want true", v)
		}
	}
	for _, v := range invalid {
		if IsValidDomain(v) {
			t.Errorf("IsValidDomain(%q) = true, want false", v)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"dmarc@example.com", "first.last+tag@mail.example.org"}
	invalid := []string{"", "plain", "@example.com", "user@", "user@localhost", "Name <user@example.com>", "user@exa mple.com", "user@-bad.com"}
	for _, v := range valid {
		if !IsValidEmail(v) {
			t.Errorf("IsValidEmail(%q) = false, want true", v)
		}
	}
	for _, v := range invalid {
		if IsValidEmail(v) {
			t.Errorf("IsValidEmail(%q) = true, want false", v)
		}
	}
}

func TestFormatPreview(t *testing.T) {
	rec := record.Record{Name: "_sip._udp", Type: "SRV", Content: "5 5060 sip.example.com.", TTL: 300, Priority: 10}
	want := "Name: _sip._udp\nType: SRV\nContent: 5 5060 sip.example.com.\nTTL: 300\nPriority: 10"
	if diff := cmp.Diff(want, FormatPreview(rec)); diff != "" {
		t.Fatalf("preview mismatch (-want +got):\n%s", diff)
	}

	rec.Priority = 0
	if strings.Contains(FormatPreview(rec), "Priority") {
		t.Fatalf("priority line should be omitted when zero")
	}
}

type stubGenerator struct {
	result record.ValidationResult
	rec    record.Record
	err    error
	panics bool
}

func (s stubGenerator) Validate(record.FormData) record.ValidationResult { return s.result }

func (s stubGenerator) GenerateRecord(record.FormData) (record.Record, error) {
	if s.panics {
		panic("boom")
	}
	return s.rec, s.err
}

func TestPreview(t *testing.T) {
	valid := record.NewValidationResult(nil, nil)
	cases := []struct {
		name string
		gen  Generator
		want string
	}{
		{"invalid", stubGenerator{result: record.NewValidationResult([]string{"bad"}, nil)}, PreviewInvalidMessage},
		{"error", stubGenerator{result: valid, err: errors.New("no target")}, "Error generating preview: no target"},
		{"panic", stubGenerator{result: valid, panics: true}, "Error generating preview: boom"},
		{"nil", nil, "Error generating preview: no wizard engine"},
		{"ok", stubGenerator{result: valid, rec: record.Record{Name: "@", Type: "TXT", Content: `"x"`, TTL: 60}}, "Name: @\nType: TXT\nContent: \"x\"\nTTL: 60"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Preview(tc.gen, record.FormData{}); got != tc.want {
				t.Fatalf("Preview() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIntInRange(t *testing.T) {
	if n, ok := IntInRange("65535", 0, 65535); !ok || n != 65535 {
		t.Fatalf("IntInRange upper bound = %d, %v", n, ok)
	}
	if _, ok := IntInRange(70000, 0, 65535); ok {
		t.Fatalf("expected out of range")
	}
	if _, ok := IntInRange("x", 0, 1); ok {
		t.Fatalf("expected parse failure")
	}
}
