package main

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("invoicedoc: prompt aborted")

// SelectConfig configures a single-choice prompt.
type SelectConfig struct {
	Message      string
	Options      []string
	Descriptions []string
	DefaultIndex int
}

// Prompter asks the user to pick values the flags left out.
type Prompter interface {
	Select(ctx context.Context, cfg SelectConfig) (int, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var out string
	prompt := &survey.Select{
		Message: cfg.Message,
		Options: cfg.Options,
	}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	if len(cfg.Descriptions) == len(cfg.Options) {
		prompt.Description = func(_ string, index int) string {
			return cfg.Descriptions[index]
		}
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return 0, translateSurveyErr(err)
	}
	return indexOf(cfg.Options, out), nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}
