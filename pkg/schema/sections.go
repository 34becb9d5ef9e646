package schema

// NewSection builds an input-bearing section.
func NewSection(title string, fields ...Field) Section {
	return Section{
		Title:  title,
		Kind:   SectionNormal,
		Fields: fields,
	}
}

// InfoSection builds an informational notice. The content is sanitised so
// renderers may embed it as HTML.
func InfoSection(title, content string) Section {
	return Section{
		Title:   title,
		Kind:    SectionInfo,
		Content: SanitizeContent(content),
	}
}

// WarningSection builds a warning notice. The content is sanitised like
// InfoSection.
func WarningSection(title, content string) Section {
	return Section{
		Title:   title,
		Kind:    SectionWarning,
		Content: SanitizeContent(content),
	}
}

// When builds a VisibleWhen rule.
func When(field, operator string, value any) *VisibleWhen {
	return &VisibleWhen{Field: field, Operator: operator, Value: value}
}
