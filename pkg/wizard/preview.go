package wizard

import (
	"fmt"

	"github.com/poweradmin/go-recordwizard/pkg/record"
)

// Preview messages returned instead of a formatted record.
const (
	PreviewInvalidMessage = "Invalid data - please correct the errors before previewing"
	previewErrorPrefix    = "Error generating preview: "
)

// Generator is the subset of Engine that Preview needs.
type Generator interface {
	Validate(data record.FormData) record.ValidationResult
	GenerateRecord(data record.FormData) (record.Record, error)
}

// Preview validates data, generates the record and formats it. Failures are
// reported as text; Preview never panics.
func Preview(gen Generator, data record.FormData) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = previewErrorPrefix + fmt.Sprint(r)
		}
	}()

	if gen == nil {
		return previewErrorPrefix + "no wizard engine"
	}
	if result := gen.Validate(data); !result.Valid {
		return PreviewInvalidMessage
	}
	rec, err := gen.GenerateRecord(data)
	if err != nil {
		return previewErrorPrefix + err.Error()
	}
	return FormatPreview(rec)
}
