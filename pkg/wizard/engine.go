// Package wizard defines the contract every DNS record wizard implements and
// the helpers the engines share: TTL handling, domain and email checks,
// validation result assembly and preview formatting.
//
// Engines live in sub-packages (dmarc, spf, dkim, caa, srv, tlsa). Each one
// is constructed from a config.Config snapshot and holds no per-call state,
// so a single instance may be used from many goroutines.
package wizard

import (
	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/schema"
)

// Engine turns simplified form input into DNS record content and back.
type Engine interface {
	// Type is the registry identifier, e.g. "dmarc".
	Type() string
	// Name is the human readable wizard title.
	Name() string
	Description() string
	// RecordType is the DNS RR type the wizard emits.
	RecordType() string

	FormSchema() schema.FormSchema
	GenerateRecord(data record.FormData) (record.Record, error)
	Validate(data record.FormData) record.ValidationResult
	// ParseExistingRecord rebuilds form data from stored content. It never
	// fails; unrecognised content yields the wizard defaults.
	ParseExistingRecord(content string, meta record.Meta) record.FormData
	Preview(data record.FormData) string
}

// Metadata summarises an engine for selection lists.
type Metadata struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	RecordType  string `json:"recordType"`
}

// Describe extracts the metadata of an engine.
func Describe(engine Engine) Metadata {
	return Metadata{
		Type:        engine.Type(),
		Name:        engine.Name(),
		Description: engine.Description(),
		RecordType:  engine.RecordType(),
	}
}

// Info carries the static identity of an engine. Engines embed it to satisfy
// the descriptive half of Engine.
type Info struct {
	id          string
	name        string
	description string
	recordType  string
}

// NewInfo builds an Info value.
func NewInfo(id, name, description, recordType string) Info {
	return Info{id: id, name: name, description: description, recordType: recordType}
}

func (i Info) Type() string        { return i.id }
func (i Info) Name() string        { return i.name }
func (i Info) Description() string { return i.description }
func (i Info) RecordType() string  { return i.recordType }
