// Package prompt asks the operator questions during plan resolution.
package prompt

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Prompter asks questions and returns the answer or the default
type Prompter interface {
	Confirm(question string, def bool) (bool, error)
	Select(question string, options []string, def string) (string, error)
	Text(question string, def string) (string, error)
	// Interactive reports whether answers come from a person
	Interactive() bool
}

// New returns an interactive prompter when in is a terminal and a
// defaults-only prompter otherwise
func New(in *os.File) Prompter {
	if in != nil && (isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd())) {
		return Terminal{}
	}
	return Defaults{}
}

// Terminal prompts with pterm's interactive printers
type Terminal struct{}

func (Terminal) Interactive() bool { return true }

func (Terminal) Confirm(question string, def bool) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(def).
		Show(question)
}

func (Terminal) Select(question string, options []string, def string) (string, error) {
	p := pterm.DefaultInteractiveSelect.WithOptions(options)
	if def != "" {
		p = p.WithDefaultOption(def)
	}
	return p.Show(question)
}

func (Terminal) Text(question string, def string) (string, error) {
	return pterm.DefaultInteractiveTextInput.
		WithDefaultValue(def).
		Show(question)
}

// Defaults answers every question with its default
type Defaults struct{}

func (Defaults) Interactive() bool { return false }

func (Defaults) Confirm(_ string, def bool) (bool, error) { return def, nil }

func (Defaults) Select(_ string, _ []string, def string) (string, error) { return def, nil }

func (Defaults) Text(_ string, def string) (string, error) { return def, nil }

// Scripted replays canned answers keyed by question, falling back to the
// default. Asked records every question in order.
type Scripted struct {
	Answers map[string]interface{}
	Asked   []string
}

func (s *Scripted) Interactive() bool { return true }

func (s *Scripted) Confirm(question string, def bool) (bool, error) {
	s.Asked = append(s.Asked, question)
	if v, ok := s.Answers[question].(bool); ok {
		return v, nil
	}
	return def, nil
}

func (s *Scripted) Select(question string, _ []string, def string) (string, error) {
	s.Asked = append(s.Asked, question)
	if v, ok := s.Answers[question].(string); ok {
		return v, nil
	}
	return def, nil
}

func (s *Scripted) Text(question string, def string) (string, error) {
	s.Asked = append(s.Asked, question)
	if v, ok := s.Answers[question].(string); ok {
		return v, nil
	}
	return def, nil
}
