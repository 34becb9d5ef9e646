package srv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/miekg/dns"

	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/testsupport"
)

func newEngine() *Engine {
	return New(config.Default())
}

func TestHTTPSScenario(t *testing.T) {
	rec := testsupport.MustGenerate(t, newEngine(), record.FormData{
		"service":  "_https",
		"protocol": "_tcp",
		"domain":   "",
		"target":   "srv.example.com",
		"port":     443,
		"priority": 10,
		"weight":   5,
	})
	want := record.Record{
		Name:     "_https._tcp",
		Type:     "SRV",
		Content:  "5 443 srv.example.com.",
		TTL:      config.DefaultTTL,
		Priority: 10,
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	rr, err := rec.RR(testsupport.Origin)
	if err != nil {
		t.Fatalf("rr: %v", err)
	}
	srv, ok := rr.(*dns.SRV)
	if !ok {
		t.Fatalf("rr type = %T", rr)
	}
	if srv.Priority != 10 || srv.Weight != 5 || srv.Port != 443 || srv.Target != "srv.example.com." {
		t.Fatalf("unexpected srv rr: %v", srv)
	}
	if srv.Hdr.Name != "_https._tcp.example.com." {
		t.Fatalf("owner = %s", srv.Hdr.Name)
	}
}

func TestGenerateCustomServiceAndSubdomain(t *testing.T) {
	rec := testsupport.MustGenerate(t, newEngine(), record.FormData{
		"service":        "custom",
		"custom_service": "MyApp",
		"protocol":       "udp",
		"domain":         "eu.",
		"target":         "app.example.net.",
		"port":           "9000",
		"priority":       "20",
		"weight":         "0",
		"ttl":            300,
	})
	want := record.Record{Name: "_myapp._udp.eu", Type: "SRV", Content: "0 9000 app.example.net.", TTL: 300, Priority: 20}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	testsupport.AssertParsesAsRR(t, rec)
}

func TestDefaultPortFromKnownService(t *testing.T) {
	rec := testsupport.MustGenerate(t, newEngine(), record.FormData{"service": "_sip", "target": "pbx.example.com"})
	if diff := cmp.Diff(record.Record{Name: "_sip._udp", Type: "SRV", Content: "5 5060 pbx.example.com.", TTL: config.DefaultTTL, Priority: 10}, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	base := func(overrides record.FormData) record.FormData {
		data := record.FormData{"service": "_xmpp-client", "protocol": "_tcp", "target": "chat.example.com", "port": 5222, "priority": 10, "weight": 5}
		for k, v := range overrides {
			data[k] = v
		}
		return data
	}
	cases := []struct {
		name     string
		data     record.FormData
		errors   []string
		warnings []string
	}{
		{name: "valid", data: base(nil)},
		{name: "ip target", data: base(record.FormData{"target": "192.0.2.10"}), errors: []string{"not an IP address"}},
		{name: "ip target with trailing dot", data: base(record.FormData{"target": "192.0.2.1."}), errors: []string{"not an IP address"}},
		{name: "ipv6 target", data: base(record.FormData{"target": "2001:db8::1"}), errors: []string{"not an IP address"}},
		{name: "missing target", data: base(record.FormData{"target": ""}), errors: []string{"Target host is required"}},
		{name: "bad target", data: base(record.FormData{"target": "bad host"}), errors: []string{"Invalid target host"}},
		{name: "port zero", data: base(record.FormData{"port": 0}), errors: []string{"Port must be between 1 and 65535"}},
		{name: "port high", data: base(record.FormData{"port": 65536}), errors: []string{"Port"}},
		{name: "weight high", data: base(record.FormData{"weight": 70000}), errors: []string{"Weight must be between 0 and 65535"}},
		{name: "priority negative", data: base(record.FormData{"priority": -1}), errors: []string{"Priority must be between 0 and 65535"}},
		{name: "priority zero", data: base(record.FormData{"priority": 0}), warnings: []string{"Priority 0"}},
		{name: "bad protocol", data: base(record.FormData{"protocol": "_icmp"}), errors: []string{"Protocol must be one of"}},
		{name: "missing custom", data: base(record.FormData{"service": "custom"}), errors: []string{"Custom service name is required"}},
		{name: "bad custom", data: base(record.FormData{"service": "custom", "custom_service": "my service"}), errors: []string{"Invalid service name"}},
		{name: "bad domain", data: base(record.FormData{"domain": "-eu"}), errors: []string{"Invalid subdomain"}},
		{name: "bad ttl", data: base(record.FormData{"ttl": -1}), errors: []string{"TTL"}},
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

	got := engine.ParseExistingRecord("5 443 srv.example.com.", record.Meta{Name: "_https._tcp", TTL: 600, Priority: 10})
	want := record.FormData{
		"service": "_https", "custom_service": "", "protocol": "_tcp", "domain": "",
		"target": "srv.example.com", "port": 443, "priority": 10, "weight": 5, "ttl": 600,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("3-field parse mismatch (-want +got):\n%s", diff)
	}

	got = engine.ParseExistingRecord("20 0 9000 app.example.net.", record.Meta{Name: "_myapp._udp.eu"})
	want = record.FormData{
		"service": "custom", "custom_service": "_myapp", "protocol": "_udp", "domain": "eu",
		"target": "app.example.net", "port": 9000, "priority": 20, "weight": 0, "ttl": config.DefaultTTL,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("4-field parse mismatch (-want +got):\n%s", diff)
	}

	got = engine.ParseExistingRecord("nonsense", record.Meta{Name: "www"})
	if got.String("service") != "_https" || got.Int("port", 0) != 443 || got.String("target") != "" {
		t.Fatalf("unexpected fallback: %#v", got)
	}
}

func TestRoundTrip(t *testing.T) {
	engine := newEngine()
	inputs := []record.FormData{
		{"service": "_https", "protocol": "_tcp", "target": "srv.example.com", "port": 443, "priority": 10, "weight": 5},
		{"service": "_sip", "protocol": "_udp", "domain": "voice", "target": "pbx.example.com", "port": 5060, "priority": 0, "weight": 100, "ttl": 60},
		{"service": "custom", "custom_service": "_game", "protocol": "_sctp", "target": "g.example.org.", "port": 27015, "priority": 1, "weight": 1},
	}
	for _, in := range inputs {
		testsupport.AssertRoundTrip(t, engine, in)
	}
}

func TestSchema(t *testing.T) {
	testsupport.AssertSchema(t, newEngine())
}
