package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the structural invariants of a schema: informational
// sections carry content and no fields, input sections carry fields and no
// content, field names are unique, types are known, and option-driven fields
// declare options. It reports every problem found, joined.
func (s FormSchema) Validate() error {
	var errs []error
	seen := make(map[string]struct{})

	for idx, section := range s.Sections {
		where := fmt.Sprintf("section %d (%q)", idx, section.Title)
		kind := section.Kind
		if kind == "" {
			kind = SectionNormal
		}

		switch {
		case kind.Informational():
			if strings.TrimSpace(section.Content) == "" {
				errs = append(errs, fmt.Errorf("schema: %s: %s section requires content", where, kind))
			}
			if len(section.Fields) > 0 {
				errs = append(errs, fmt.Errorf("schema: %s: %s section must not declare fields", where, kind))
			}
			continue
		case kind == SectionNormal:
			if section.Content != "" {
				errs = append(errs, fmt.Errorf("schema: %s: input section must not carry content", where))
			}
			if len(section.Fields) == 0 {
				errs = append(errs, fmt.Errorf("schema: %s: input section declares no fields", where))
			}
		default:
			errs = append(errs, fmt.Errorf("schema: %s: unknown section kind %q", where, kind))
			continue
		}

		for _, field := range section.Fields {
			if field.Name == "" {
				errs = append(errs, fmt.Errorf("schema: %s: field without name", where))
				continue
			}
			if _, dup := seen[field.Name]; dup {
				errs = append(errs, fmt.Errorf("schema: duplicate field %q", field.Name))
			}
			seen[field.Name] = struct{}{}

			if !field.Type.Valid() {
				errs = append(errs, fmt.Errorf("schema: field %q: unknown type %q", field.Name, field.Type))
			}
			if field.Type.HasOptions() && len(field.Options) == 0 {
				errs = append(errs, fmt.Errorf("schema: field %q: %s requires options", field.Name, field.Type))
			}
			if field.Min != nil && field.Max != nil && *field.Min > *field.Max {
				errs = append(errs, fmt.Errorf("schema: field %q: min exceeds max", field.Name))
			}
		}
	}

	for _, field := range s.Fields() {
		if field.VisibleWhen == nil {
			continue
		}
		if _, ok := seen[field.VisibleWhen.Field]; !ok {
			errs = append(errs, fmt.Errorf("schema: field %q: visible_when references unknown field %q", field.Name, field.VisibleWhen.Field))
		}
		switch field.VisibleWhen.Operator {
		case OpEquals, OpNotEquals, OpIn, OpNotIn:
		default:
			errs = append(errs, fmt.Errorf("schema: field %q: unknown visibility operator %q", field.Name, field.VisibleWhen.Operator))
		}
	}

	return errors.Join(errs...)
}
