// Package tlsa implements the DANE TLSA wizard.
package tlsa

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/schema"
	"github.com/poweradmin/go-recordwizard/pkg/wizard"
)

// Type is the registry identifier of this wizard.
const Type = "tlsa"

// DNSSECWarning is attached to every validation result.
const DNSSECWarning = "TLSA records are only trusted when the zone is signed with DNSSEC; make sure signing is enabled"

const (
	matchFull   = 0
	matchSHA256 = 1
	matchSHA512 = 2
)

// Protocols accepted in the owner name.
var Protocols = []string{"_tcp", "_udp", "_sctp"}

var (
	ownerPattern = regexp.MustCompile(`^_(\d+)\.(_[a-z]+)(?:\.(.+))?$`)
	hexPattern   = regexp.MustCompile(`^[0-9a-fA-F]*$`)
	separators   = regexp.MustCompile(`[\s:]+`)
)

// digestLength is the hex length expected per matching type, 0 when any
// length is acceptable.
var digestLength = map[int]int{matchSHA256: 64, matchSHA512: 128}

// Engine generates and parses TLSA records.
type Engine struct {
	wizard.Info
	cfg config.Config
}

var _ wizard.Engine = (*Engine)(nil)

// New builds a TLSA engine bound to cfg.
func New(cfg config.Config) *Engine {
	return &Engine{
		Info: wizard.NewInfo(Type, "TLSA Record (DANE)",
			"Pin the TLS certificate or public key of a service in DNS.", "TLSA"),
		cfg: cfg,
	}
}

// Factory adapts New to the registry factory signature.
func Factory(cfg config.Config) (wizard.Engine, error) {
	return New(cfg), nil
}

func (e *Engine) FormSchema() schema.FormSchema {
	protocols := make([]schema.Option, len(Protocols))
	for i, p := range Protocols {
		protocols[i] = schema.Option{Value: p, Label: strings.ToUpper(strings.TrimPrefix(p, "_"))}
	}
	return schema.FormSchema{Sections: []schema.Section{
		schema.WarningSection("DNSSEC required",
			"<p>TLSA records are ignored by validating clients unless the zone is <strong>DNSSEC signed</strong>.</p>"),
		schema.NewSection("Service",
			schema.Field{Name: "port", Label: "Port", Type: schema.FieldTypeNumber, Required: true, Default: 443,
				Min: schema.Bound(1), Max: schema.Bound(65535)},
			schema.Field{Name: "protocol", Label: "Protocol", Type: schema.FieldTypeSelect, Required: true, Default: "_tcp", Options: protocols},
			schema.Field{Name: "hostname", Label: "Host name", Type: schema.FieldTypeText, Placeholder: "www",
				Help: "Leave empty for the zone apex"},
		),
		schema.NewSection("Certificate Association",
			schema.Field{
				Name: "usage", Label: "Certificate usage", Type: schema.FieldTypeSelect, Default: "3",
				Options: []schema.Option{
					{Value: "0", Label: "0 - PKIX-TA", Description: "CA constraint, validated with public CAs"},
					{Value: "1", Label: "1 - PKIX-EE", Description: "Service certificate, validated with public CAs"},
					{Value: "2", Label: "2 - DANE-TA", Description: "Trust anchor you operate"},
					{Value: "3", Label: "3 - DANE-EE", Description: "Domain-issued certificate"},
				},
			},
			schema.Field{
				Name: "selector", Label: "Selector", Type: schema.FieldTypeSelect, Default: "1",
				Options: []schema.Option{
					{Value: "0", Label: "0 - Full certificate"},
					{Value: "1", Label: "1 - Public key only"},
				},
			},
			schema.Field{
				Name: "matching_type", Label: "Matching type", Type: schema.FieldTypeSelect, Default: "1",
				Options: []schema.Option{
					{Value: "0", Label: "0 - Exact match"},
					{Value: "1", Label: "1 - SHA-256"},
					{Value: "2", Label: "2 - SHA-512"},
				},
			},
			schema.Field{Name: "cert_data", Label: "Certificate data", Type: schema.FieldTypeTextarea, Required: true, Rows: 4,
				Help: "Hex digest or certificate data; spaces and colons are ignored"},
		),
		schema.NewSection("Record Settings", wizard.TTLField(e.cfg)),
	}}
}

// CleanCertData removes whitespace and colon separators.
func CleanCertData(raw string) string {
	return separators.ReplaceAllString(raw, "")
}

// hexOnly keeps hex digits, lower-cased.
func hexOnly(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f':
			return r
		case r >= 'A' && r <= 'F':
			return r + ('a' - 'A')
		}
		return -1
	}, value)
}

func ownerName(data record.FormData) string {
	protocol := strings.ToLower(wizard.SanitizeInput(data.String("protocol")))
	if protocol == "" {
		protocol = "_tcp"
	}
	if !strings.HasPrefix(protocol, "_") {
		protocol = "_" + protocol
	}
	name := fmt.Sprintf("_%d.%s", data.Int("port", 443), protocol)
	if host := strings.TrimSuffix(wizard.SanitizeInput(data.String("hostname")), "."); host != "" && host != "@" {
		name += "." + host
	}
	return name
}

func (e *Engine) GenerateRecord(data record.FormData) (record.Record, error) {
	cert := hexOnly(data.String("cert_data"))
	if cert == "" {
		return record.Record{}, fmt.Errorf("tlsa: certificate data is required")
	}
	return record.Record{
		Name: ownerName(data),
		Type: e.RecordType(),
		Content: fmt.Sprintf("%d %d %d %s",
			data.Int("usage", 3), data.Int("selector", 1), data.Int("matching_type", matchSHA256), cert),
		TTL: wizard.ResolveTTL(data, e.cfg),
	}, nil
}

func (e *Engine) Validate(data record.FormData) record.ValidationResult {
	var errs []string
	warnings := []string{DNSSECWarning}

	if _, ok := wizard.IntInRange(valueOr(data, "port", 443), 1, 65535); !ok {
		errs = append(errs, "Port must be between 1 and 65535")
	}
	protocol := strings.ToLower(wizard.SanitizeInput(data.String("protocol")))
	if protocol != "" && !slices.Contains(Protocols, protocol) {
		errs = append(errs, "Protocol must be one of: "+strings.Join(Protocols, ", "))
	}
	if host := wizard.SanitizeInput(data.String("hostname")); !wizard.IsValidDomain(host) {
		errs = append(errs, "Invalid host name: "+host)
	}

	for _, field := range [...]struct {
		key   string
		label string
		def   int
		max   int64
	}{
		{"usage", "Certificate usage", 3, 3},
		{"selector", "Selector", 1, 1},
		{"matching_type", "Matching type", matchSHA256, 2},
	} {
		if _, ok := wizard.IntInRange(valueOr(data, field.key, field.def), 0, field.max); !ok {
			errs = append(errs, fmt.Sprintf("%s must be between 0 and %d", field.label, field.max))
		}
	}

	cert := CleanCertData(data.String("cert_data"))
	switch {
	case cert == "":
		errs = append(errs, "Certificate data is required")
	case !hexPattern.MatchString(cert):
		errs = append(errs, "Certificate data must be hexadecimal")
	default:
		matching := data.Int("matching_type", matchSHA256)
		if want, ok := digestLength[matching]; ok && len(cert) != want {
			algo := "SHA-256"
			if matching == matchSHA512 {
				algo = "SHA-512"
			}
			warnings = append(warnings, fmt.Sprintf("%s digests are %d hex characters long, got %d", algo, want, len(cert)))
		}
	}

	errs = append(errs, wizard.ValidateTTL(data[wizard.TTLKey])...)
	return wizard.BuildValidationResult(errs, warnings)
}

// valueOr returns the raw form value, or fallback when the field is blank.
func valueOr(data record.FormData, key string, fallback int) any {
	if wizard.SanitizeInput(data.String(key)) == "" {
		return fallback
	}
	return data[key]
}

func (e *Engine) ParseExistingRecord(content string, meta record.Meta) record.FormData {
	ttl := meta.TTL
	if ttl <= 0 {
		ttl = wizard.DefaultTTL(e.cfg)
	}
	data := record.FormData{
		"port":          443,
		"protocol":      "_tcp",
		"hostname":      "",
		"usage":         3,
		"selector":      1,
		"matching_type": matchSHA256,
		"cert_data":     "",
		wizard.TTLKey:   ttl,
	}

	if m := ownerPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(meta.Name))); m != nil {
		if port, err := strconv.Atoi(m[1]); err == nil {
			data["port"] = port
		}
		data["protocol"] = m[2]
		data["hostname"] = m[3]
	}

	fields := strings.Fields(content)
	if len(fields) < 4 {
		return data
	}
	for i, key := range []string{"usage", "selector", "matching_type"} {
		if n, err := strconv.Atoi(fields[i]); err == nil {
			data[key] = n
		}
	}
	data["cert_data"] = strings.ToLower(strings.Join(fields[3:], ""))
	return data
}

func (e *Engine) Preview(data record.FormData) string {
	return wizard.Preview(e, data)
}
