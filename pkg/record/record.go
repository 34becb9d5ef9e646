package record

// Record is the output of a wizard: the fields a caller maps one-to-one onto
// its zone record storage. Name is relative to the zone apex, "@" meaning the
// apex itself. Content is the exact RDATA string, already quoted for TXT.
type Record struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Content  string `json:"content"`
	TTL      int    `json:"ttl"`
	Priority int    `json:"priority"`
}

// Meta carries the stored-record fields that accompany content when a wizard
// re-parses an existing record.
type Meta struct {
	Name     string `json:"name"`
	TTL      int    `json:"ttl"`
	Priority int    `json:"priority"`
}

// ValidationResult reports blocking errors and advisory warnings. Valid is
// always equal to len(Errors) == 0; construct it with NewValidationResult.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// NewValidationResult packages errors and warnings, deriving Valid from the
// error list. Nil slices are replaced by empty ones so JSON encodes [].
func NewValidationResult(errors, warnings []string) ValidationResult {
	if errors == nil {
		errors = []string{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	return ValidationResult{
		Valid:    len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
	}
}
