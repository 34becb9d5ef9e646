package visibility

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/schema"
)

func TestEval(t *testing.T) {
	data := record.FormData{"tag": "iodef", "flags": 128, "testing": "on", "ruf": ""}
	cases := []struct {
		name string
		rule *schema.VisibleWhen
		want bool
	}{
		{"nil rule", nil, true},
		{"equals", schema.When("tag", schema.OpEquals, "iodef"), true},
		{"equals number", schema.When("flags", schema.OpEquals, 128), true},
		{"equals json number", schema.When("flags", schema.OpEquals, float64(128)), true},
		{"equals bool", schema.When("testing", schema.OpEquals, true), true},
		{"not equals empty", schema.When("ruf", schema.OpNotEquals, ""), false},
		{"missing field equals empty", schema.When("absent", schema.OpEquals, ""), true},
		{"in strings", schema.When("tag", schema.OpIn, []string{"issue", "iodef"}), true},
		{"in any", schema.When("tag", schema.OpIn, []any{"issue", "issuewild"}), false},
		{"not in", schema.When("tag", schema.OpNotIn, []string{"issue", "issuewild"}), true},
		{"in csv", schema.When("tag", schema.OpIn, "issue, iodef"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Eval(tc.rule, data)
			if err != nil {
				t.Fatalf("Eval returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Eval = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	if _, err := Eval(schema.When("tag", "~=", "x"), record.FormData{}); err == nil {
		t.Fatalf("expected unsupported operator error")
	}
	if _, err := Eval(schema.When("tag", schema.OpIn, 42), record.FormData{}); err == nil {
		t.Fatalf("expected list value error")
	}
}

func TestFieldsAndPrune(t *testing.T) {
	form := schema.FormSchema{Sections: []schema.Section{
		schema.NewSection("Main",
			schema.Field{Name: "ca_provider", Type: schema.FieldTypeText},
			schema.Field{Name: "custom_ca", Type: schema.FieldTypeText, VisibleWhen: schema.When("ca_provider", schema.OpEquals, "custom")},
			schema.Field{Name: "broken", Type: schema.FieldTypeText, VisibleWhen: schema.When("ca_provider", "??", "x")},
		),
	}}
	data := record.FormData{"ca_provider": "letsencrypt.org", "custom_ca": "stale.example", "broken": "x", "extra": 1}

	var names []string
	for _, f := range Fields(form, data, nil) {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"ca_provider"}, names); diff != "" {
		t.Fatalf("visible fields mismatch (-want +got):\n%s", diff)
	}

	want := record.FormData{"ca_provider": "letsencrypt.org", "extra": 1}
	if diff := cmp.Diff(want, Prune(form, data, Default)); diff != "" {
		t.Fatalf("prune mismatch (-want +got):\n%s", diff)
	}
	if data["custom_ca"] != "stale.example" {
		t.Fatalf("prune must not mutate its input")
	}
}
