// Package visibility evaluates the visible_when rules a wizard schema declares.
// Engines never enforce visibility themselves; renderers such as the terminal
// prompt use this package to decide which fields to ask for.
package visibility

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/schema"
)

// Evaluator decides whether a rule holds for the collected form data.
type Evaluator interface {
	Eval(rule *schema.VisibleWhen, data record.FormData) (bool, error)
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(rule *schema.VisibleWhen, data record.FormData) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(rule *schema.VisibleWhen, data record.FormData) (bool, error) {
	return fn(rule, data)
}

// Default evaluates the four schema operators.
var Default Evaluator = EvaluatorFunc(Eval)

// Eval reports whether rule holds for data. A nil rule is always visible.
// Values compare as strings, except boolean rule values which compare against
// the checkbox interpretation of the field.
func Eval(rule *schema.VisibleWhen, data record.FormData) (bool, error) {
	if rule == nil {
		return true, nil
	}
	switch rule.Operator {
	case schema.OpEquals:
		return matches(rule.Value, data, rule.Field), nil
	case schema.OpNotEquals:
		return !matches(rule.Value, data, rule.Field), nil
	case schema.OpIn, schema.OpNotIn:
		candidates, err := list(rule.Value)
		if err != nil {
			return false, fmt.Errorf("visibility: field %q: %w", rule.Field, err)
		}
		found := false
		for _, candidate := range candidates {
			if matches(candidate, data, rule.Field) {
				found = true
				break
			}
		}
		return found == (rule.Operator == schema.OpIn), nil
	default:
		return false, fmt.Errorf("visibility: field %q: unsupported operator %q", rule.Field, rule.Operator)
	}
}

func matches(expected any, data record.FormData, field string) bool {
	if b, ok := expected.(bool); ok {
		return data.Bool(field) == b
	}
	return data.String(field) == scalar(expected)
}

func scalar(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func list(value any) ([]any, error) {
	switch v := value.(type) {
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	case string:
		var out []any
		for _, part := range strings.Split(v, ",") {
			out = append(out, strings.TrimSpace(part))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("in/not_in rules need a list value, got %T", value)
	}
}

// Fields returns the fields of form that are visible for data, in order.
// Rules that fail to evaluate hide their field.
func Fields(form schema.FormSchema, data record.FormData, eval Evaluator) []schema.Field {
	if eval == nil {
		eval = Default
	}
	var out []schema.Field
	for _, field := range form.Fields() {
		if ok, err := eval.Eval(field.VisibleWhen, data); err == nil && ok {
			out = append(out, field)
		}
	}
	return out
}

// Prune returns a copy of data without the values of hidden fields.
func Prune(form schema.FormSchema, data record.FormData, eval Evaluator) record.FormData {
	if eval == nil {
		eval = Default
	}
	out := data.Clone()
	if out == nil {
		out = record.FormData{}
	}
	for _, field := range form.Fields() {
		if ok, err := eval.Eval(field.VisibleWhen, data); err != nil || !ok {
			delete(out, field.Name)
		}
	}
	return out
}
