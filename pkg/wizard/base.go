package wizard

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/schema"
)

// TTLKey is the form data key shared by every wizard.
const TTLKey = "ttl"

var domainLabel = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// DefaultTTL returns the configured default TTL, falling back to
// config.DefaultTTL when the snapshot carries none.
func DefaultTTL(cfg config.Config) int {
	if cfg.DefaultTTL > 0 {
		return cfg.DefaultTTL
	}
	return config.DefaultTTL
}

// ResolveTTL returns the form TTL when it is a usable number and the default
// otherwise.
func ResolveTTL(data record.FormData, cfg config.Config) int {
	if n, ok := data.Number(TTLKey); ok && n >= 0 && n <= config.MaxTTL {
		return int(n)
	}
	return DefaultTTL(cfg)
}

// ValidateTTL checks a raw TTL value. Absent or blank values are accepted
// because the default applies.
func ValidateTTL(value any) []string {
	if value == nil {
		return nil
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	n, ok := record.ParseNumber(value)
	if !ok {
		return []string{"TTL must be a number"}
	}
	if n < 0 {
		return []string{"TTL must not be negative"}
	}
	if n > config.MaxTTL {
		return []string{fmt.Sprintf("TTL must not exceed %d seconds", config.MaxTTL)}
	}
	return nil
}

// IsValidDomain accepts "@" and "" as apex shorthand, otherwise a dotted
// sequence of LDH labels with an optional single trailing dot.
func IsValidDomain(value string) bool {
	if value == "" || value == "@" {
		return true
	}
	value = strings.TrimSuffix(strings.ToLower(value), ".")
	if value == "" || len(value) > 253 {
		return false
	}
	for _, label := range strings.Split(value, ".") {
		if !domainLabel.MatchString(label) {
			return false
		}
	}
	return true
}

// IsValidEmail accepts a bare addr-spec with a fully qualified domain.
func IsValidEmail(value string) bool {
	if value == "" || strings.ContainsAny(value, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Name != "" || addr.Address != value {
		return false
	}
	at := strings.LastIndex(value, "@")
	domain := value[at+1:]
	return at > 0 && strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".") && IsValidDomain(domain)
}

// SanitizeInput trims surrounding whitespace and nothing else.
func SanitizeInput(value string) string {
	return strings.TrimSpace(value)
}

// BuildValidationResult packages errors and warnings.
func BuildValidationResult(errors, warnings []string) record.ValidationResult {
	return record.NewValidationResult(errors, warnings)
}

// FormatPreview renders a record as fixed-order lines. Priority is listed
// only when set.
func FormatPreview(rec record.Record) string {
	lines := []string{
		"Name: " + rec.Name,
		"Type: " + rec.Type,
		"Content: " + rec.Content,
		fmt.Sprintf("TTL: %d", rec.TTL),
	}
	if rec.Priority > 0 {
		lines = append(lines, fmt.Sprintf("Priority: %d", rec.Priority))
	}
	return strings.Join(lines, "\n")
}

// TTLField is the TTL input every wizard appends to its schema.
func TTLField(cfg config.Config) schema.Field {
	return schema.Field{
		Name:    TTLKey,
		Label:   "TTL",
		Type:    schema.FieldTypeNumber,
		Default: DefaultTTL(cfg),
		Min:     schema.Bound(0),
		Max:     schema.Bound(config.MaxTTL),
		Help:    "Time to live in seconds",
	}
}

// IntInRange parses value and reports whether it lies within [min, max].
// The parsed number is returned even when out of range.
func IntInRange(value any, min, max int64) (int64, bool) {
	n, ok := record.ParseNumber(value)
	if !ok {
		return 0, false
	}
	return n, n >= min && n <= max
}
