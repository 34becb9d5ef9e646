// Package tui collects wizard form data interactively in a terminal. It walks
// a FormSchema section by section, prints informational notices, skips fields
// whose visible_when rule does not hold and prompts for the rest.
package tui

import (
	"context"
	"fmt"
	"html"
	"slices"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/schema"
	"github.com/poweradmin/go-recordwizard/pkg/visibility"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(c *Collector) {
		if driver != nil {
			c.driver = driver
		}
	}
}

// WithEvaluator overrides the visibility evaluator.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(c *Collector) {
		if eval != nil {
			c.eval = eval
		}
	}
}

// Collector prompts for every visible field of a schema.
type Collector struct {
	driver PromptDriver
	eval   visibility.Evaluator
}

// NewCollector builds a Collector using survey and the default evaluator
// unless overridden.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		driver: NewSurveyDriver(nil),
		eval:   visibility.Default,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

var (
	plainTextOnce   sync.Once
	plainTextPolicy *bluemonday.Policy
)

// plainText strips the markup allowed in section content for terminal output.
func plainText(content string) string {
	plainTextOnce.Do(func() {
		plainTextPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(plainTextPolicy.Sanitize(content)))
}

// Collect prompts for the fields of form. Values in initial, typically from
// ParseExistingRecord, become the prompt defaults; otherwise field defaults
// apply. Values of fields hidden by visibility rules are dropped.
func (c *Collector) Collect(ctx context.Context, form schema.FormSchema, initial record.FormData) (record.FormData, error) {
	data := initial.Clone()
	if data == nil {
		data = record.FormData{}
	}

	for _, section := range form.Sections {
		if section.Kind.Informational() {
			msg := section.Title
			if text := plainText(section.Content); text != "" {
				msg += ": " + text
			}
			if err := c.driver.Notice(ctx, msg); err != nil {
				return nil, fmt.Errorf("tui: %s: %w", section.Title, err)
			}
			continue
		}
		for _, field := range section.Fields {
			visible, err := c.eval.Eval(field.VisibleWhen, data)
			if err != nil {
				return nil, fmt.Errorf("tui: field %q: %w", field.Name, err)
			}
			if !visible {
				continue
			}
			value, err := c.prompt(ctx, field, data)
			if err != nil {
				return nil, fmt.Errorf("tui: field %q: %w", field.Name, err)
			}
			data[field.Name] = value
		}
	}
	return visibility.Prune(form, data, c.eval), nil
}

func current(field schema.Field, data record.FormData) record.FormData {
	if data.Has(field.Name) {
		return data
	}
	return record.FormData{field.Name: field.Default}
}

func (c *Collector) prompt(ctx context.Context, field schema.Field, data record.FormData) (any, error) {
	values := current(field, data)
	q := Question{Message: field.Label, Help: field.Help}
	if q.Message == "" {
		q.Message = field.Name
	}

	switch field.Type {
	case schema.FieldTypeCheckbox:
		q.Kind = KindYesNo
		q.Yes = values.Bool(field.Name)
		return answer[bool](ctx, c.driver, q)

	case schema.FieldTypeSelect, schema.FieldTypeRadio:
		q.Kind = KindChoice
		q.Choices = optionLabels(field.Options)
		if i := slices.IndexFunc(field.Options, func(o schema.Option) bool { return o.Value == values.String(field.Name) }); i >= 0 {
			q.Selected = []int{i}
		}
		idx, err := answer[int](ctx, c.driver, q)
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(field.Options) {
			return nil, fmt.Errorf("selection %d out of range", idx)
		}
		return field.Options[idx].Value, nil

	case schema.FieldTypeCheckboxGroup:
		q.Kind = KindChoices
		q.Choices = optionLabels(field.Options)
		selected := values.Strings(field.Name)
		for i, o := range field.Options {
			if slices.Contains(selected, o.Value) {
				q.Selected = append(q.Selected, i)
			}
		}
		picked, err := answer[[]int](ctx, c.driver, q)
		if err != nil {
			return nil, err
		}
		out := []string{}
		for _, idx := range picked {
			if idx >= 0 && idx < len(field.Options) {
				out = append(out, field.Options[idx].Value)
			}
		}
		return out, nil

	case schema.FieldTypeTextarea:
		q.Kind = KindMultiline
		q.Text = values.String(field.Name)
		return answer[string](ctx, c.driver, q)

	case schema.FieldTypeNumber:
		q.Text = values.String(field.Name)
		q.Check = numberValidator(field)
		text, err := answer[string](ctx, c.driver, q)
		if err != nil {
			return nil, err
		}
		if n, ok := record.ParseNumber(text); ok {
			return int(n), nil
		}
		return strings.TrimSpace(text), nil

	default:
		q.Text = values.String(field.Name)
		q.Check = requiredValidator(field)
		return answer[string](ctx, c.driver, q)
	}
}

func answer[T any](ctx context.Context, driver PromptDriver, q Question) (T, error) {
	var zero T
	raw, err := driver.Ask(ctx, q)
	if err != nil {
		return zero, err
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected %T answer to %q", raw, q.Message)
	}
	return v, nil
}

func optionLabels(options []schema.Option) []string {
	labels := make([]string, len(options))
	for i, o := range options {
		label := o.Label
		if label == "" {
			label = o.Value
		}
		if o.Description != "" {
			label += " (" + o.Description + ")"
		}
		labels[i] = label
	}
	return labels
}

func requiredValidator(field schema.Field) func(string) error {
	if !field.Required {
		return nil
	}
	return func(answer string) error {
		if strings.TrimSpace(answer) == "" {
			return fmt.Errorf("%s is required", field.Label)
		}
		return nil
	}
}

func numberValidator(field schema.Field) func(string) error {
	return func(answer string) error {
		if strings.TrimSpace(answer) == "" {
			if field.Required {
				return fmt.Errorf("%s is required", field.Label)
			}
			return nil
		}
		n, ok := record.ParseNumber(answer)
		if !ok {
			return fmt.Errorf("%s must be a number", field.Label)
		}
		if field.Min != nil && n < int64(*field.Min) {
			return fmt.Errorf("%s must be at least %d", field.Label, *field.Min)
		}
		if field.Max != nil && n > int64(*field.Max) {
			return fmt.Errorf("%s must be at most %d", field.Label, *field.Max)
		}
		return nil
	}
}
