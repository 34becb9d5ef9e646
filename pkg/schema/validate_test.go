package schema

import (
	"strings"
	"testing"
)

func TestValidate_AcceptsWellFormedSchema(t *testing.T) {
	form := FormSchema{
		Sections: []Section{
			InfoSection("About", "Explains the <strong>record</strong>."),
			NewSection("Settings",
				Field{Name: "policy", Type: FieldTypeSelect, Options: []Option{{Value: "none", Label: "None"}}},
				Field{Name: "custom", Type: FieldTypeText, VisibleWhen: When("policy", OpEquals, "none")},
			),
		},
	}
	if err := form.Validate(); err != nil {
		t.Fatalf("expected schema to be valid: %v", err)
	}
}

func TestValidate_ReportsStructuralProblems(t *testing.T) {
	cases := []struct {
		name   string
		form   FormSchema
		expect string
	}{
		{
			name: "info section with fields",
			form: FormSchema{Sections: []Section{{
				Title: "Notice", Kind: SectionInfo, Content: "text",
				Fields: []Field{{Name: "a", Type: FieldTypeText}},
			}}},
			expect: "must not declare fields",
		},
		{
			name:   "warning without content",
			form:   FormSchema{Sections: []Section{{Title: "Careful", Kind: SectionWarning}}},
			expect: "requires content",
		},
		{
			name: "duplicate names",
			form: FormSchema{Sections: []Section{
				NewSection("A", Field{Name: "ttl", Type: FieldTypeNumber}),
				NewSection("B", Field{Name: "ttl", Type: FieldTypeNumber}),
			}},
			expect: `duplicate field "ttl"`,
		},
		{
			name:   "select without options",
			form:   FormSchema{Sections: []Section{NewSection("A", Field{Name: "tag", Type: FieldTypeSelect})}},
			expect: "requires options",
		},
		{
			name: "dangling visibility reference",
			form: FormSchema{Sections: []Section{NewSection("A",
				Field{Name: "url", Type: FieldTypeURL, VisibleWhen: When("tag", OpEquals, "iodef")},
			)}},
			expect: `unknown field "tag"`,
		},
		{
			name: "inverted bounds",
			form: FormSchema{Sections: []Section{NewSection("A",
				Field{Name: "port", Type: FieldTypeNumber, Min: Bound(10), Max: Bound(1)},
			)}},
			expect: "min exceeds max",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.form.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.expect) {
				t.Fatalf("expected error containing %q, got %v", tc.expect, err)
			}
		})
	}
}

func TestFieldLookup(t *testing.T) {
	form := FormSchema{Sections: []Section{
		NewSection("A", Field{Name: "one", Type: FieldTypeText}),
		NewSection("B", Field{Name: "two", Type: FieldTypeText}),
	}}
	if _, ok := form.Field("two"); !ok {
		t.Fatalf("expected field two to be found")
	}
	if _, ok := form.Field("three"); ok {
		t.Fatalf("did not expect field three")
	}
	if got := len(form.Fields()); got != 2 {
		t.Fatalf("expected 2 fields, got %d", got)
	}
}
