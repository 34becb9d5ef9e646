package schema

// FieldType enumerates the input kinds a renderer must support.
type FieldType string

const (
	FieldTypeText          FieldType = "text"
	FieldTypeEmail         FieldType = "email"
	FieldTypeURL           FieldType = "url"
	FieldTypeNumber        FieldType = "number"
	FieldTypeTextarea      FieldType = "textarea"
	FieldTypeSelect        FieldType = "select"
	FieldTypeRadio         FieldType = "radio"
	FieldTypeCheckbox      FieldType = "checkbox"
	FieldTypeCheckboxGroup FieldType = "checkbox_group"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypeURL, FieldTypeNumber, FieldTypeTextarea,
		FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox, FieldTypeCheckboxGroup:
		return true
	}
	return false
}

// HasOptions reports whether the field type is driven by an options list.
func (t FieldType) HasOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeRadio || t == FieldTypeCheckboxGroup
}

// SectionKind distinguishes input sections from static notices.
type SectionKind string

const (
	SectionNormal  SectionKind = "normal"
	SectionInfo    SectionKind = "info"
	SectionWarning SectionKind = "warning"
)

// Informational reports whether the section carries static content instead of
// fields.
func (k SectionKind) Informational() bool {
	return k == SectionInfo || k == SectionWarning
}

// Visibility operators understood by VisibleWhen.
const (
	OpEquals    = "=="
	OpNotEquals = "!="
	OpIn        = "in"
	OpNotIn     = "not_in"
)

// VisibleWhen declares that a field is only relevant when another field holds
// a given value. Value is a scalar for ==/!= and a list for in/not_in.
type VisibleWhen struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Option is a single choice for select, radio and checkbox_group fields.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Field models one input inside a wizard form. Name doubles as the form data
// key and must be unique within a schema. Default is always encoded so that
// false and "" survive; null means the field has no default.
type Field struct {
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Type        FieldType    `json:"type"`
	Required    bool         `json:"required"`
	Default     any          `json:"default"`
	Placeholder string       `json:"placeholder,omitempty"`
	Help        string       `json:"help,omitempty"`
	Min         *int         `json:"min,omitempty"`
	Max         *int         `json:"max,omitempty"`
	Pattern     string       `json:"pattern,omitempty"`
	Rows        int          `json:"rows,omitempty"`
	Options     []Option     `json:"options,omitempty"`
	VisibleWhen *VisibleWhen `json:"visible_when,omitempty"`
}

// Section groups related fields, or carries a static notice.
type Section struct {
	Title   string      `json:"title"`
	Kind    SectionKind `json:"type,omitempty"`
	Content string      `json:"content,omitempty"`
	Fields  []Field     `json:"fields,omitempty"`
}

// FormSchema is the top-level description a wizard returns for rendering.
type FormSchema struct {
	Sections []Section `json:"sections"`
}

// Fields returns every field in declaration order.
func (s FormSchema) Fields() []Field {
	var out []Field
	for _, section := range s.Sections {
		out = append(out, section.Fields...)
	}
	return out
}

// Field looks up a field by name.
func (s FormSchema) Field(name string) (Field, bool) {
	for _, section := range s.Sections {
		for _, field := range section.Fields {
			if field.Name == name {
				return field, true
			}
		}
	}
	return Field{}, false
}

// Bound returns a pointer suitable for Field.Min and Field.Max.
func Bound(v int) *int {
	return &v
}
