// Package spf implements the SPF policy wizard. Mechanisms are emitted in a
// fixed order (mx, a, ip4, ip6, include, a:host, mx:host, all) and the number
// of DNS-querying mechanisms is checked against the RFC 7208 limit of ten.
package spf

import (
	"fmt"
	"net/netip"
	"regexp"
	"strings"

	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/schema"
	"github.com/poweradmin/go-recordwizard/pkg/wizard"
)

// Type is the registry identifier of this wizard.
const Type = "spf"

const (
	// MaxLookups is the RFC 7208 section 4.6.4 DNS lookup limit.
	MaxLookups = 10
	// WarnLookups is the count above which the record is close to the limit.
	WarnLookups = 7
)

// Policy qualifiers for the trailing all mechanism.
var qualifiers = map[string]string{
	"pass":     "+",
	"neutral":  "?",
	"softfail": "~",
	"fail":     "-",
}

const defaultPolicy = "softfail"

// Mechanism targets are RFC 7208 domain-specs; labels may contain underscores.
var targetLabel = regexp.MustCompile(`^[a-z0-9_]([a-z0-9_-]{0,61}[a-z0-9_])?$`)

// Engine generates and parses SPF records.
type Engine struct {
	wizard.Info
	cfg config.Config
}

var _ wizard.Engine = (*Engine)(nil)

// New builds an SPF engine bound to cfg.
func New(cfg config.Config) *Engine {
	return &Engine{
		Info: wizard.NewInfo(Type, "SPF Record",
			"Declare which servers may send mail for the domain.", "TXT"),
		cfg: cfg,
	}
}

// Factory adapts New to the registry factory signature.
func Factory(cfg config.Config) (wizard.Engine, error) {
	return New(cfg), nil
}

// Spec is the structured form of an SPF policy.
type Spec struct {
	IncludeMX bool
	IncludeA  bool
	IP4       []string
	IP6       []string
	Includes  []string
	AHosts    []string
	MXHosts   []string
	Policy    string
}

// Lookups counts the mechanisms that cost a DNS query.
func (s Spec) Lookups() int {
	n := len(s.Includes) + len(s.AHosts) + len(s.MXHosts)
	if s.IncludeMX {
		n++
	}
	if s.IncludeA {
		n++
	}
	return n
}

// String renders the policy text without TXT quoting.
func (s Spec) String() string {
	terms := []string{"v=spf1"}
	if s.IncludeMX {
		terms = append(terms, "mx")
	}
	if s.IncludeA {
		terms = append(terms, "a")
	}
	for _, v := range s.IP4 {
		terms = append(terms, "ip4:"+v)
	}
	for _, v := range s.IP6 {
		terms = append(terms, "ip6:"+v)
	}
	for _, v := range s.Includes {
		terms = append(terms, "include:"+v)
	}
	for _, v := range s.AHosts {
		terms = append(terms, "a:"+v)
	}
	for _, v := range s.MXHosts {
		terms = append(terms, "mx:"+v)
	}
	qualifier, ok := qualifiers[s.Policy]
	if !ok {
		qualifier = qualifiers[defaultPolicy]
	}
	return strings.Join(append(terms, qualifier+"all"), " ")
}

// SpecFromForm reads the form fields into a Spec.
func SpecFromForm(data record.FormData) Spec {
	policy := strings.ToLower(wizard.SanitizeInput(data.String("all_policy")))
	if policy == "" {
		policy = defaultPolicy
	}
	return Spec{
		IncludeMX: data.Bool("include_mx"),
		IncludeA:  data.Bool("include_a"),
		IP4:       data.Lines("ip4"),
		IP6:       data.Lines("ip6"),
		Includes:  data.Lines("includes"),
		AHosts:    data.Lines("a_hosts"),
		MXHosts:   data.Lines("mx_hosts"),
		Policy:    policy,
	}
}

func (e *Engine) FormSchema() schema.FormSchema {
	return schema.FormSchema{Sections: []schema.Section{
		schema.InfoSection("About SPF",
			"<p>SPF lists the hosts allowed to send mail for this domain. Receivers stop after <strong>10 DNS lookups</strong>; each <code>include</code>, <code>a</code> and <code>mx</code> counts.</p>"),
		schema.NewSection("Domain Servers",
			schema.Field{Name: "include_mx", Label: "Allow the domain's MX servers", Type: schema.FieldTypeCheckbox, Default: true},
			schema.Field{Name: "include_a", Label: "Allow the domain's A/AAAA addresses", Type: schema.FieldTypeCheckbox, Default: false},
		),
		schema.NewSection("IP Addresses",
			schema.Field{Name: "ip4", Label: "IPv4 addresses", Type: schema.FieldTypeTextarea, Rows: 3,
				Placeholder: "192.0.2.10\n198.51.100.0/24", Help: "One address or CIDR range per line"},
			schema.Field{Name: "ip6", Label: "IPv6 addresses", Type: schema.FieldTypeTextarea, Rows: 3,
				Placeholder: "2001:db8::/32", Help: "One address or CIDR range per line"},
		),
		schema.NewSection("Other Hosts",
			schema.Field{Name: "includes", Label: "Include domains", Type: schema.FieldTypeTextarea, Rows: 3,
				Placeholder: "_spf.google.com", Help: "Third-party senders, one domain per line"},
			schema.Field{Name: "a_hosts", Label: "Additional A hosts", Type: schema.FieldTypeTextarea, Rows: 2},
			schema.Field{Name: "mx_hosts", Label: "Additional MX hosts", Type: schema.FieldTypeTextarea, Rows: 2},
		),
		schema.NewSection("Policy",
			schema.Field{
				Name: "all_policy", Label: "Mail from other servers", Type: schema.FieldTypeSelect, Required: true, Default: defaultPolicy,
				Options: []schema.Option{
					{Value: "fail", Label: "Fail (-all)", Description: "Reject mail from unlisted servers"},
					{Value: "softfail", Label: "Soft fail (~all)", Description: "Accept but mark as suspicious"},
					{Value: "neutral", Label: "Neutral (?all)", Description: "No statement about other servers"},
					{Value: "pass", Label: "Pass (+all)", Description: "Allow every server, not recommended"},
				},
			},
		),
		schema.NewSection("Record Settings", wizard.TTLField(e.cfg)),
	}}
}

func (e *Engine) GenerateRecord(data record.FormData) (record.Record, error) {
	spec := SpecFromForm(data)
	if _, ok := qualifiers[spec.Policy]; !ok {
		return record.Record{}, fmt.Errorf("spf: unsupported all policy %q", spec.Policy)
	}
	return record.Record{
		Name:    "@",
		Type:    e.RecordType(),
		Content: record.FormatTXT(spec.String()),
		TTL:     wizard.ResolveTTL(data, e.cfg),
	}, nil
}

func (e *Engine) Validate(data record.FormData) record.ValidationResult {
	var errs, warnings []string
	spec := SpecFromForm(data)

	for _, v := range spec.IP4 {
		if !validIP(v, true) {
			errs = append(errs, "Invalid IPv4 address or range: "+v)
		}
	}
	for _, v := range spec.IP6 {
		if !validIP(v, false) {
			errs = append(errs, "Invalid IPv6 address or range: "+v)
		}
	}
	for _, group := range []struct {
		label string
		hosts []string
	}{
		{"include domain", spec.Includes},
		{"A host", spec.AHosts},
		{"MX host", spec.MXHosts},
	} {
		for _, host := range group.hosts {
			if !validTarget(host) {
				errs = append(errs, fmt.Sprintf("Invalid %s: %s", group.label, host))
			}
		}
	}

	switch lookups := spec.Lookups(); {
	case lookups > MaxLookups:
		errs = append(errs, fmt.Sprintf("Too many DNS lookups: %d (SPF allows at most %d)", lookups, MaxLookups))
	case lookups > WarnLookups:
		warnings = append(warnings, fmt.Sprintf("SPF record needs %d DNS lookups, close to the limit of %d", lookups, MaxLookups))
	}

	if _, ok := qualifiers[spec.Policy]; !ok {
		errs = append(errs, "All policy must be one of: pass, neutral, softfail, fail")
	} else if spec.Policy == "pass" {
		warnings = append(warnings, "+all lets any server send mail for this domain")
	}

	errs = append(errs, wizard.ValidateTTL(data[wizard.TTLKey])...)
	return wizard.BuildValidationResult(errs, warnings)
}

// validTarget checks the domain of an include, a: or mx: mechanism.
func validTarget(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" || len(host) > 253 {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if !targetLabel.MatchString(label) {
			return false
		}
	}
	return true
}

func (e *Engine) ParseExistingRecord(content string, meta record.Meta) record.FormData {
	ttl := meta.TTL
	if ttl <= 0 {
		ttl = wizard.DefaultTTL(e.cfg)
	}

	terms := strings.Fields(record.UnquoteTXT(content))
	if len(terms) == 0 || !strings.EqualFold(terms[0], "v=spf1") {
		return toForm(Spec{IncludeMX: true, Policy: defaultPolicy}, ttl)
	}

	spec := Spec{Policy: defaultPolicy}
	for _, term := range terms[1:] {
		qualifier := "+"
		if strings.ContainsRune("+-~?", rune(term[0])) {
			qualifier, term = term[:1], term[1:]
		}
		mechanism, arg, _ := strings.Cut(term, ":")
		switch strings.ToLower(mechanism) {
		case "mx":
			if arg == "" {
				spec.IncludeMX = true
			} else {
				spec.MXHosts = append(spec.MXHosts, arg)
			}
		case "a":
			if arg == "" {
				spec.IncludeA = true
			} else {
				spec.AHosts = append(spec.AHosts, arg)
			}
		case "ip4":
			spec.IP4 = append(spec.IP4, arg)
		case "ip6":
			spec.IP6 = append(spec.IP6, arg)
		case "include":
			spec.Includes = append(spec.Includes, arg)
		case "all":
			for name, q := range qualifiers {
				if q == qualifier {
					spec.Policy = name
				}
			}
		}
	}
	return toForm(spec, ttl)
}

func (e *Engine) Preview(data record.FormData) string {
	return wizard.Preview(e, data)
}

func toForm(spec Spec, ttl int) record.FormData {
	return record.FormData{
		"include_mx":  spec.IncludeMX,
		"include_a":   spec.IncludeA,
		"ip4":         strings.Join(spec.IP4, "\n"),
		"ip6":         strings.Join(spec.IP6, "\n"),
		"includes":    strings.Join(spec.Includes, "\n"),
		"a_hosts":     strings.Join(spec.AHosts, "\n"),
		"mx_hosts":    strings.Join(spec.MXHosts, "\n"),
		"all_policy":  spec.Policy,
		wizard.TTLKey: ttl,
	}
}

// validIP accepts an address or CIDR prefix of the requested family.
func validIP(value string, v4 bool) bool {
	var addr netip.Addr
	if strings.Contains(value, "/") {
		prefix, err := netip.ParsePrefix(value)
		if err != nil {
			return false
		}
		addr = prefix.Addr()
	} else {
		parsed, err := netip.ParseAddr(value)
		if err != nil {
			return false
		}
		addr = parsed
	}
	if addr.Zone() != "" {
		return false
	}
	if v4 {
		return addr.Is4()
	}
	return addr.Is6()
}
