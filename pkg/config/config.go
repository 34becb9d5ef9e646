// Package config supplies the read-only settings the record wizards consume:
// the feature flag, the enabled wizard types, the default TTL and the list of
// certificate authorities offered by the CAA wizard.
package config

import (
	"errors"
	"slices"
	"strings"
)

// DefaultTTL matches the zone default used when a wizard form omits a TTL.
const DefaultTTL = 86400

// MaxTTL is the largest TTL a DNS record can carry (signed 32-bit).
const MaxTTL = 2147483647

// DefaultTypes lists the wizard identifiers enabled when configuration does
// not name any.
var DefaultTypes = []string{"dmarc", "spf", "dkim", "caa", "tlsa", "srv"}

// CAProvider pairs a CA issuer domain with its display name.
type CAProvider struct {
	Domain string `yaml:"domain" json:"domain"`
	Name   string `yaml:"name" json:"name"`
}

// CAProviders is an ordered list of certificate authorities.
type CAProviders []CAProvider

// Lookup returns the display name for domain.
func (p CAProviders) Lookup(domain string) (string, bool) {
	for _, provider := range p {
		if provider.Domain == domain {
			return provider.Name, true
		}
	}
	return "", false
}

// DefaultCAProviders is offered when configuration supplies none.
func DefaultCAProviders() CAProviders {
	return CAProviders{
		{Domain: "letsencrypt.org", Name: "Let's Encrypt"},
		{Domain: "digicert.com", Name: "DigiCert"},
		{Domain: "sectigo.com", Name: "Sectigo"},
		{Domain: "globalsign.com", Name: "GlobalSign"},
		{Domain: "pki.goog", Name: "Google Trust Services"},
		{Domain: "amazon.com", Name: "Amazon"},
		{Domain: "buypass.com", Name: "Buypass"},
		{Domain: "ssl.com", Name: "SSL.com"},
		{Domain: "zerossl.com", Name: "ZeroSSL"},
	}
}

// Config is an immutable snapshot handed to the wizard engines at
// construction time.
type Config struct {
	Enabled      bool
	EnabledTypes []string
	DefaultTTL   int
	CAProviders  CAProviders
}

// Default returns a snapshot with every wizard enabled.
func Default() Config {
	return Config{
		Enabled:      true,
		EnabledTypes: append([]string(nil), DefaultTypes...),
		DefaultTTL:   DefaultTTL,
		CAProviders:  DefaultCAProviders(),
	}
}

// TypeEnabled reports whether the allow-list names wizardType, ignoring case.
func (c Config) TypeEnabled(wizardType string) bool {
	wizardType = strings.TrimSpace(wizardType)
	return slices.ContainsFunc(c.EnabledTypes, func(t string) bool {
		return strings.EqualFold(strings.TrimSpace(t), wizardType)
	})
}

// Clone returns a deep copy so callers cannot mutate a shared snapshot.
func (c Config) Clone() Config {
	c.EnabledTypes = append([]string(nil), c.EnabledTypes...)
	c.CAProviders = append(CAProviders(nil), c.CAProviders...)
	return c
}

// Provider hands out the current configuration snapshot. Implementations may
// fail, for example when no configuration has been loaded yet.
type Provider interface {
	Current() (Config, error)
}

// Static is a Provider that always returns the same snapshot.
type Static Config

// Current implements Provider.
func (s Static) Current() (Config, error) {
	return Config(s).Clone(), nil
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func() (Config, error)

// Current calls the underlying function.
func (fn ProviderFunc) Current() (Config, error) {
	if fn == nil {
		return Config{}, errors.New("config: provider func is nil")
	}
	return fn()
}
