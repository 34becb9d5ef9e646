// Package srv implements the SRV service location wizard.
package srv

import (
	"fmt"
	"net/netip"
	"regexp"
	"slices"
	"strings"

	"github.com/miekg/dns"

	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/schema"
	"github.com/poweradmin/go-recordwizard/pkg/wizard"
)

// Type is the registry identifier of this wizard.
const Type = "srv"

// ServiceCustom selects the custom_service field.
const ServiceCustom = "custom"

const (
	defaultPriority = 10
	defaultWeight   = 5
	maxUint16       = 65535
)

// Service is a well-known SRV service with its usual port and transport.
type Service struct {
	Name     string
	Label    string
	Port     int
	Protocol string
}

// KnownServices lists the services offered in the service selector.
var KnownServices = []Service{
	{"_http", "HTTP", 80, "_tcp"},
	{"_https", "HTTPS", 443, "_tcp"},
	{"_sip", "SIP", 5060, "_udp"},
	{"_sips", "SIP over TLS", 5061, "_tcp"},
	{"_xmpp-client", "XMPP client", 5222, "_tcp"},
	{"_xmpp-server", "XMPP server", 5269, "_tcp"},
	{"_ldap", "LDAP", 389, "_tcp"},
	{"_ldaps", "LDAPS", 636, "_tcp"},
	{"_kerberos", "Kerberos", 88, "_udp"},
	{"_imap", "IMAP", 143, "_tcp"},
	{"_imaps", "IMAPS", 993, "_tcp"},
	{"_pop3", "POP3", 110, "_tcp"},
	{"_pop3s", "POP3S", 995, "_tcp"},
	{"_submission", "Mail submission", 587, "_tcp"},
	{"_caldav", "CalDAV", 80, "_tcp"},
	{"_caldavs", "CalDAV over TLS", 443, "_tcp"},
	{"_carddav", "CardDAV", 80, "_tcp"},
	{"_carddavs", "CardDAV over TLS", 443, "_tcp"},
	{"_autodiscover", "Autodiscover", 443, "_tcp"},
	{"_minecraft", "Minecraft", 25565, "_tcp"},
	{"_matrix", "Matrix federation", 8448, "_tcp"},
}

// Protocols are the transports accepted in the owner name.
var Protocols = []string{"_tcp", "_udp", "_tls", "_sctp"}

var (
	ownerPattern   = regexp.MustCompile(`^(_[^.]+)\.(_[^.]+)(?:\.(.+))?$`)
	servicePattern = regexp.MustCompile(`^_[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?$`)
)

// LookupService finds a well-known service by name.
func LookupService(name string) (Service, bool) {
	for _, s := range KnownServices {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Service{}, false
}

// Engine generates and parses SRV records.
type Engine struct {
	wizard.Info
	cfg config.Config
}

var _ wizard.Engine = (*Engine)(nil)

// New builds an SRV engine bound to cfg.
func New(cfg config.Config) *Engine {
	return &Engine{
		Info: wizard.NewInfo(Type, "SRV Record",
			"Advertise the host and port that provide a service.", "SRV"),
		cfg: cfg,
	}
}

// Factory adapts New to the registry factory signature.
func Factory(cfg config.Config) (wizard.Engine, error) {
	return New(cfg), nil
}

func (e *Engine) FormSchema() schema.FormSchema {
	services := make([]schema.Option, 0, len(KnownServices)+1)
	for _, s := range KnownServices {
		services = append(services, schema.Option{
			Value:       s.Name,
			Label:       s.Label,
			Description: fmt.Sprintf("port %d/%s", s.Port, strings.TrimPrefix(s.Protocol, "_")),
		})
	}
	services = append(services, schema.Option{Value: ServiceCustom, Label: "Custom service"})

	protocols := make([]schema.Option, len(Protocols))
	for i, p := range Protocols {
		protocols[i] = schema.Option{Value: p, Label: strings.ToUpper(strings.TrimPrefix(p, "_"))}
	}

	return schema.FormSchema{Sections: []schema.Section{
		schema.NewSection("Service",
			schema.Field{Name: "service", Label: "Service", Type: schema.FieldTypeSelect, Required: true, Default: "_https", Options: services},
			schema.Field{
				Name: "custom_service", Label: "Custom service name", Type: schema.FieldTypeText, Placeholder: "_myservice",
				Pattern:     `^_?[A-Za-z0-9-]+$`,
				VisibleWhen: schema.When("service", schema.OpEquals, ServiceCustom),
			},
			schema.Field{Name: "protocol", Label: "Protocol", Type: schema.FieldTypeSelect, Required: true, Default: "_tcp", Options: protocols},
			schema.Field{Name: "domain", Label: "Subdomain", Type: schema.FieldTypeText, Placeholder: "leave empty for the zone apex"},
		),
		schema.NewSection("Target",
			schema.Field{Name: "target", Label: "Target host", Type: schema.FieldTypeText, Required: true, Placeholder: "server.example.com",
				Help: "Host name providing the service; must have A or AAAA records"},
			schema.Field{Name: "port", Label: "Port", Type: schema.FieldTypeNumber, Required: true, Default: 443,
				Min: schema.Bound(1), Max: schema.Bound(maxUint16)},
			schema.Field{Name: "priority", Label: "Priority", Type: schema.FieldTypeNumber, Default: defaultPriority,
				Min: schema.Bound(0), Max: schema.Bound(maxUint16), Help: "Lower values are tried first"},
			schema.Field{Name: "weight", Label: "Weight", Type: schema.FieldTypeNumber, Default: defaultWeight,
				Min: schema.Bound(0), Max: schema.Bound(maxUint16), Help: "Load share among targets with equal priority"},
		),
		schema.NewSection("Record Settings", wizard.TTLField(e.cfg)),
	}}
}

// serviceName resolves the service label, forcing a leading underscore on
// custom names.
func serviceName(data record.FormData) string {
	service := wizard.SanitizeInput(data.String("service"))
	if service == ServiceCustom {
		service = wizard.SanitizeInput(data.String("custom_service"))
	}
	if service != "" && !strings.HasPrefix(service, "_") {
		service = "_" + service
	}
	return strings.ToLower(service)
}

func protocolName(data record.FormData) string {
	protocol := strings.ToLower(wizard.SanitizeInput(data.String("protocol")))
	if protocol == "" {
		if s, ok := LookupService(serviceName(data)); ok {
			return s.Protocol
		}
		return "_tcp"
	}
	if !strings.HasPrefix(protocol, "_") {
		protocol = "_" + protocol
	}
	return protocol
}

func (e *Engine) port(data record.FormData) int {
	if data.Has("port") && wizard.SanitizeInput(data.String("port")) != "" {
		return data.Int("port", 0)
	}
	if s, ok := LookupService(serviceName(data)); ok {
		return s.Port
	}
	return 0
}

func (e *Engine) GenerateRecord(data record.FormData) (record.Record, error) {
	service := serviceName(data)
	if service == "" {
		return record.Record{}, fmt.Errorf("srv: service is required")
	}
	target := wizard.SanitizeInput(data.String("target"))
	if target == "" {
		return record.Record{}, fmt.Errorf("srv: target is required")
	}

	name := service + "." + protocolName(data)
	if domain := strings.TrimSuffix(wizard.SanitizeInput(data.String("domain")), "."); domain != "" && domain != "@" {
		name += "." + domain
	}

	return record.Record{
		Name:     name,
		Type:     e.RecordType(),
		Content:  fmt.Sprintf("%d %d %s", data.Int("weight", defaultWeight), e.port(data), dns.Fqdn(target)),
		TTL:      wizard.ResolveTTL(data, e.cfg),
		Priority: data.Int("priority", defaultPriority),
	}, nil
}

func (e *Engine) Validate(data record.FormData) record.ValidationResult {
	var errs, warnings []string

	service := serviceName(data)
	switch {
	case service == "" && wizard.SanitizeInput(data.String("service")) == ServiceCustom:
		errs = append(errs, "Custom service name is required")
	case service == "":
		errs = append(errs, "Service is required")
	case !servicePattern.MatchString(service):
		errs = append(errs, "Invalid service name: "+service)
	}

	if protocol := protocolName(data); !slices.Contains(Protocols, protocol) {
		errs = append(errs, "Protocol must be one of: "+strings.Join(Protocols, ", "))
	}

	if domain := wizard.SanitizeInput(data.String("domain")); !wizard.IsValidDomain(domain) {
		errs = append(errs, "Invalid subdomain: "+domain)
	}

	target := wizard.SanitizeInput(data.String("target"))
	switch {
	case target == "":
		errs = append(errs, "Target host is required")
	case isIPLiteral(target):
		errs = append(errs, "Target must be a host name, not an IP address")
	case target == "@" || !wizard.IsValidDomain(target):
		errs = append(errs, "Invalid target host: "+target)
	}

	if port := e.port(data); port < 1 || port > maxUint16 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and %d", maxUint16))
	}
	for _, field := range [...]struct{ key, label string }{
		{"priority", "Priority"},
		{"weight", "Weight"},
	} {
		if !data.Has(field.key) || wizard.SanitizeInput(data.String(field.key)) == "" {
			continue
		}
		if _, ok := wizard.IntInRange(data[field.key], 0, maxUint16); !ok {
			errs = append(errs, fmt.Sprintf("%s must be between 0 and %d", field.label, maxUint16))
		}
	}
	if data.Has("priority") && wizard.SanitizeInput(data.String("priority")) != "" && data.Int("priority", -1) == 0 {
		warnings = append(warnings, "Priority 0 is unusual; most services use 10 or higher so others can be preferred")
	}

	errs = append(errs, wizard.ValidateTTL(data[wizard.TTLKey])...)
	return wizard.BuildValidationResult(errs, warnings)
}

func isIPLiteral(value string) bool {
	_, err := netip.ParseAddr(strings.Trim(strings.TrimSuffix(value, "."), "[]"))
	return err == nil
}

func (e *Engine) ParseExistingRecord(content string, meta record.Meta) record.FormData {
	ttl := meta.TTL
	if ttl <= 0 {
		ttl = wizard.DefaultTTL(e.cfg)
	}
	priority := meta.Priority
	data := record.FormData{
		"service":        "_https",
		"custom_service": "",
		"protocol":       "_tcp",
		"domain":         "",
		"target":         "",
		"port":           443,
		"priority":       defaultPriority,
		"weight":         defaultWeight,
		wizard.TTLKey:    ttl,
	}

	if m := ownerPattern.FindStringSubmatch(strings.TrimSpace(meta.Name)); m != nil {
		service := strings.ToLower(m[1])
		if _, known := LookupService(service); known {
			data["service"] = service
		} else {
			data["service"] = ServiceCustom
			data["custom_service"] = service
		}
		data["protocol"] = strings.ToLower(m[2])
		data["domain"] = m[3]
	}

	fields := strings.Fields(content)
	switch len(fields) {
	case 4:
		if n, ok := record.ParseNumber(fields[0]); ok {
			priority = int(n)
		}
		fields = fields[1:]
		fallthrough
	case 3:
		if n, ok := record.ParseNumber(fields[0]); ok {
			data["weight"] = int(n)
		}
		if n, ok := record.ParseNumber(fields[1]); ok {
			data["port"] = int(n)
		}
		data["target"] = strings.TrimSuffix(fields[2], ".")
		data["priority"] = priority
	}
	return data
}

func (e *Engine) Preview(data record.FormData) string {
	return wizard.Preview(e, data)
}
