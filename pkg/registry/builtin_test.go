package registry

import (
	"bytes"
	"encoding/base64"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/testsupport"
)

// validForms holds otherwise-valid input for every builtin wizard.
var validForms = map[string]record.FormData{
	"dmarc": {"policy": "reject", "rua": "dmarc@example.com"},
	"spf":   {"include_mx": true, "all_policy": "fail"},
	"dkim":  {"selector": "mail", "key_type": "rsa", "public_key": base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, 270))},
	"caa":   {"flags": "0", "tag": "issue", "ca_provider": "letsencrypt.org"},
	"tlsa": {
		"port": 443, "protocol": "_tcp", "hostname": "www",
		"usage": "3", "selector": "1", "matching_type": "1",
		"cert_data": strings.Repeat("ab", 32),
	},
	"srv": {"service": "_https", "protocol": "_tcp", "target": "www.example.com", "port": 443, "priority": 10, "weight": 5},
}

func TestBuiltinsHaveValidForms(t *testing.T) {
	var types []string
	for name := range Builtins() {
		types = append(types, name)
	}
	sort.Strings(types)
	var covered []string
	for name := range validForms {
		covered = append(covered, name)
	}
	sort.Strings(covered)
	if diff := cmp.Diff(types, covered); diff != "" {
		t.Fatalf("form fixtures out of sync with builtins (-builtins +fixtures):\n%s", diff)
	}
}

func TestTTLBoundsAcrossEngines(t *testing.T) {
	cases := []struct {
		name  string
		value any
		ok    bool
		want  int
	}{
		{name: "zero", value: 0, ok: true, want: 0},
		{name: "max", value: 2147483647, ok: true, want: 2147483647},
		{name: "negative", value: -1},
		{name: "overflow", value: "2147483648"},
		{name: "not a number", value: "one hour"},
	}

	for wizardType, factory := range Builtins() {
		engine, err := factory(config.Default())
		if err != nil {
			t.Fatalf("%s: build: %v", wizardType, err)
		}
		for _, tc := range cases {
			t.Run(wizardType+"/"+tc.name, func(t *testing.T) {
				data := validForms[wizardType].Clone()
				data["ttl"] = tc.value

				result := engine.Validate(data)
				if !tc.ok {
					if result.Valid || !testsupport.ContainsMessage(result.Errors, "TTL") {
						t.Fatalf("expected TTL error, got %+v", result)
					}
					return
				}
				if !result.Valid {
					t.Fatalf("expected valid, got errors %v", result.Errors)
				}
				rec := testsupport.MustGenerate(t, engine, data)
				if rec.TTL != tc.want {
					t.Fatalf("ttl = %d, want %d", rec.TTL, tc.want)
				}
			})
		}
	}
}
