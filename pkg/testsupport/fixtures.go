package testsupport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/wizard"
)

// Origin is the zone apex used when converting generated records to RRs.
const Origin = "example.com."

// MustGenerate runs GenerateRecord and fails the test on error.
func MustGenerate(t *testing.T, engine wizard.Engine, data record.FormData) record.Record {
	t.Helper()

	rec, err := engine.GenerateRecord(data)
	if err != nil {
		t.Fatalf("generate %s: %v", engine.Type(), err)
	}
	return rec
}

// AssertRoundTrip checks that data survives generate, parse and regenerate
// without changing the record. It returns the parsed form data so callers can
// make further assertions.
func AssertRoundTrip(t *testing.T, engine wizard.Engine, data record.FormData) record.FormData {
	t.Helper()

	if result := engine.Validate(data); !result.Valid {
		t.Fatalf("round trip input is invalid: %v", result.Errors)
	}
	first := MustGenerate(t, engine, data)
	parsed := engine.ParseExistingRecord(first.Content, record.Meta{
		Name:     first.Name,
		TTL:      first.TTL,
		Priority: first.Priority,
	})
	second := MustGenerate(t, engine, parsed)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("round trip changed record (-first +second):\n%s", diff)
	}
	return parsed
}

// AssertParsesAsRR converts rec into a zone line and fails when miekg/dns
// rejects it.
func AssertParsesAsRR(t *testing.T, rec record.Record) {
	t.Helper()

	line, err := rec.ZoneLine(Origin)
	if err != nil {
		t.Fatalf("zone line for %+v: %v", rec, err)
	}
	if line == "" {
		t.Fatalf("empty zone line for %+v", rec)
	}
}

// ContainsMessage reports whether any message contains substr.
func ContainsMessage(messages []string, substr string) bool {
	for _, msg := range messages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// CountMessages counts messages containing substr.
func CountMessages(messages []string, substr string) int {
	count := 0
	for _, msg := range messages {
		if strings.Contains(msg, substr) {
			count++
		}
	}
	return count
}

// AssertSchema fails when the engine's form schema is structurally invalid or
// lacks a TTL field.
func AssertSchema(t *testing.T, engine wizard.Engine) {
	t.Helper()

	form := engine.FormSchema()
	if err := form.Validate(); err != nil {
		t.Fatalf("%s schema invalid: %v", engine.Type(), err)
	}
	if _, ok := form.Field(wizard.TTLKey); !ok {
		t.Fatalf("%s schema has no ttl field", engine.Type())
	}
}

// LoadFormData reads a JSON fixture into FormData.
func LoadFormData(path string) (record.FormData, error) {
	if path == "" {
		return nil, errors.New("testsupport: form data path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read form data: %w", err)
	}
	var out record.FormData
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal form data: %w", err)
	}
	return out, nil
}

// MustLoadFormData is LoadFormData for tests.
func MustLoadFormData(t *testing.T, path string) record.FormData {
	t.Helper()

	out, err := LoadFormData(path)
	if err != nil {
		t.Fatalf("load form data: %v", err)
	}
	return out
}
