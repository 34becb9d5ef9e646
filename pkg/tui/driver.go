package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Kind picks the widget used for a Question.
type Kind int

const (
	KindLine Kind = iota
	KindMultiline
	KindYesNo
	KindChoice
	KindChoices
)

const choicePageSize = 12

// Question is one prompt put to the operator. The answer type depends on
// Kind: string for KindLine and KindMultiline, bool for KindYesNo, an index
// into Choices for KindChoice and a sorted index list for KindChoices.
type Question struct {
	Kind    Kind
	Message string
	Help    string
	// Text is the default for line and multiline questions.
	Text string
	// Yes is the default for yes/no questions.
	Yes      bool
	Choices  []string
	Selected []int
	// Check rejects a typed answer; the operator is asked again.
	Check func(string) error
}

// PromptDriver asks questions and shows notices. Collector tests script it.
type PromptDriver interface {
	Ask(ctx context.Context, q Question) (any, error)
	Notice(ctx context.Context, msg string) error
}

type surveyDriver struct {
	notices io.Writer
}

// NewSurveyDriver prompts on the terminal with survey and writes notices to
// out, or stdout when out is nil.
func NewSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{notices: out}
}

func (d *surveyDriver) Notice(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.notices, msg)
	return err
}

func (d *surveyDriver) Ask(ctx context.Context, q Question) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var checks []survey.AskOpt
	if q.Check != nil {
		checks = append(checks, survey.WithValidator(func(ans interface{}) error {
			text, _ := ans.(string)
			return q.Check(text)
		}))
	}

	var (
		answer any
		err    error
	)
	switch q.Kind {
	case KindYesNo:
		var yes bool
		err = survey.AskOne(&survey.Confirm{Message: q.Message, Help: q.Help, Default: q.Yes}, &yes)
		answer = yes

	case KindChoice:
		prompt := &survey.Select{Message: q.Message, Help: q.Help, Options: q.Choices, PageSize: choicePageSize}
		if picked := choiceLabels(q.Choices, q.Selected); len(picked) > 0 {
			prompt.Default = picked[0]
		}
		var label string
		err = survey.AskOne(prompt, &label)
		answer = slices.Index(q.Choices, label)

	case KindChoices:
		prompt := &survey.MultiSelect{Message: q.Message, Help: q.Help, Options: q.Choices, PageSize: choicePageSize}
		if picked := choiceLabels(q.Choices, q.Selected); len(picked) > 0 {
			prompt.Default = picked
		}
		var labels []string
		err = survey.AskOne(prompt, &labels)
		indices := []int{}
		for i, choice := range q.Choices {
			if slices.Contains(labels, choice) {
				indices = append(indices, i)
			}
		}
		answer = indices

	case KindMultiline:
		var text string
		err = survey.AskOne(&survey.Multiline{Message: q.Message, Help: q.Help, Default: q.Text}, &text, checks...)
		answer = text

	default:
		var text string
		err = survey.AskOne(&survey.Input{Message: q.Message, Help: q.Help, Default: q.Text}, &text, checks...)
		answer = text
	}

	if errors.Is(err, terminal.InterruptErr) {
		return nil, ErrAborted
	}
	if err != nil {
		return nil, err
	}
	return answer, nil
}

func choiceLabels(choices []string, indices []int) []string {
	var out []string
	for _, i := range indices {
		if i >= 0 && i < len(choices) {
			out = append(out, choices[i])
		}
	}
	return out
}
