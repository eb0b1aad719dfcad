package ui_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/ledger"
	"github.com/arthur-debert/autosys/pkg/rollback"
	"github.com/arthur-debert/autosys/pkg/steps"
	"github.com/arthur-debert/autosys/pkg/ui"
	"github.com/arthur-debert/autosys/pkg/verify"
)

type fakeStep struct {
	name     string
	optional bool
}

func (s fakeStep) Name() string   { return s.name }
func (s fakeStep) Optional() bool { return s.optional }
func (s fakeStep) Run(context.Context, *steps.Env) (*steps.Result, error) {
	return &steps.Result{Step: s.name}, nil
}

func textConsole() (*ui.Console, *bytes.Buffer) {
	var buf bytes.Buffer
	return ui.NewConsole(&buf, ui.FormatText), &buf
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected ui.Format
		wantErr  bool
	}{
		{"", ui.FormatAuto, false},
		{"auto", ui.FormatAuto, false},
		{"terminal", ui.FormatTerminal, false},
		{"TERM", ui.FormatTerminal, false},
		{"plain", ui.FormatText, false},
		{"json", ui.FormatJSON, false},
		{"yml", ui.FormatYAML, false},
		{"html", ui.FormatAuto, true},
	}

	for _, tt := range tests {
		t.Run("parse_"+tt.input, func(t *testing.T) {
			got, err := ui.ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.NotEqual(t, "unknown", got.String())
		})
	}
}

func TestFormatStructured(t *testing.T) {
	assert.True(t, ui.FormatJSON.Structured())
	assert.True(t, ui.FormatYAML.Structured())
	assert.False(t, ui.FormatText.Structured())
	assert.False(t, ui.FormatAuto.Structured())
}

func TestDetectFormat(t *testing.T) {
	t.Run("regular_file_is_text", func(t *testing.T) {
		f, err := os.Create(filepath.Join(t.TempDir(), "out"))
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		assert.Equal(t, ui.FormatText, ui.DetectFormat(f))
	})

	t.Run("no_color_is_text", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		assert.Equal(t, ui.FormatText, ui.DetectFormat(os.Stdout))
	})
}

func TestStepFinished(t *testing.T) {
	t.Run("success_hides_skipped", func(t *testing.T) {
		c, buf := textConsole()
		res := &steps.Result{Step: "assets", Actions: []steps.Action{
			{Target: "agents/architect.md", Status: steps.StatusApplied, Detail: "copied"},
			{Target: "agents/reviewer.md", Status: steps.StatusSkipped},
		}}

		c.StepFinished(fakeStep{name: "assets"}, res, nil)

		out := buf.String()
		assert.Contains(t, out, "[OK] assets: 1 applied, 1 skipped")
		assert.Contains(t, out, "agents/architect.md  copied")
		assert.NotContains(t, out, "reviewer.md")
	})

	t.Run("verbose_shows_skipped", func(t *testing.T) {
		c, buf := textConsole()
		c.Verbose = true
		res := &steps.Result{Actions: []steps.Action{{Target: "agents/reviewer.md", Status: steps.StatusSkipped}}}

		c.StepFinished(fakeStep{name: "assets"}, res, nil)
		assert.Contains(t, buf.String(), "reviewer.md")
	})

	t.Run("warnings_mark_step", func(t *testing.T) {
		c, buf := textConsole()
		res := &steps.Result{
			Actions:  []steps.Action{{Target: ".claude/hooks/x.sh", Status: steps.StatusConflict}},
			Warnings: []string{"regular file in the way"},
		}

		c.StepFinished(fakeStep{name: "scaffold"}, res, nil)

		out := buf.String()
		assert.Contains(t, out, "[WARN] scaffold")
		assert.Contains(t, out, "warning: regular file in the way")
	})

	t.Run("failure", func(t *testing.T) {
		c, buf := textConsole()
		c.StepFinished(fakeStep{name: "dependencies", optional: true}, &steps.Result{}, stderrors.New("pip exploded"))
		assert.Contains(t, buf.String(), "[FAIL] dependencies (optional): pip exploded")
	})

	t.Run("empty_result", func(t *testing.T) {
		c, buf := textConsole()
		c.StepFinished(fakeStep{name: "indexing"}, &steps.Result{}, nil)
		assert.Contains(t, buf.String(), "nothing to do")
	})
}

func TestRollbackOutput(t *testing.T) {
	c, buf := textConsole()

	c.RollbackStarted(2)
	c.Compensated(rollback.Compensation{Entry: ledger.NewFileCreated("/p/CLAUDE.md"), Outcome: rollback.Reverted})
	c.Compensated(rollback.Compensation{
		Entry:   ledger.NewDependenciesInstalled("requirements.txt"),
		Outcome: rollback.Manual,
		Detail:  "pip3 uninstall -r requirements.txt",
	})
	summary := rollback.Summary{Compensations: []rollback.Compensation{
		{Outcome: rollback.Reverted},
		{Outcome: rollback.Manual, Detail: "pip3 uninstall -r requirements.txt"},
	}}
	c.RollbackFinished(summary)
	c.ManualSteps(summary)

	out := buf.String()
	assert.Contains(t, out, "Rolling back 2 change(s)")
	assert.Contains(t, out, "file /p/CLAUDE.md created")
	assert.Contains(t, out, "Rollback complete: 2 compensated, 0 failed")
	assert.Contains(t, out, "Undo by hand:")
	assert.Contains(t, out, "  pip3 uninstall -r requirements.txt")
}

func TestError(t *testing.T) {
	c, buf := textConsole()
	err := errors.New(errors.ErrPrerequisiteMissing, "git is too old").
		WithRemediation("upgrade git to 2.20.0 or newer").
		WithDetail("problems", []string{"found 2.1.0"})

	c.Error(err)

	out := buf.String()
	assert.Contains(t, out, "Error: [PREREQUISITE_MISSING] git is too old")
	assert.Contains(t, out, "- found 2.1.0")
	assert.Contains(t, out, "To fix: upgrade git to 2.20.0 or newer")
}

func TestReport(t *testing.T) {
	report := verify.Report{Target: "/p", Checks: []verify.Check{
		{Name: "hook count", Passed: true, Note: "3 linked"},
		{Name: "settings", Passed: false, Note: "missing"},
	}}

	t.Run("text", func(t *testing.T) {
		c, buf := textConsole()
		require.NoError(t, c.Report(report))

		out := buf.String()
		assert.Contains(t, out, "pass hook count (3 linked)")
		assert.Contains(t, out, "FAIL settings (missing)")
		assert.Contains(t, out, "1 of 2 checks failed")
	})

	t.Run("terminal", func(t *testing.T) {
		var buf bytes.Buffer
		c := ui.NewConsole(&buf, ui.FormatTerminal)
		require.NoError(t, c.Report(report))
		assert.Contains(t, buf.String(), "hook count")
		assert.Contains(t, buf.String(), "settings")
	})
}

func TestGuide(t *testing.T) {
	c, buf := textConsole()
	c.Guide("# Done\n\nRun `git add .claude`\n\n")
	assert.Equal(t, "\n# Done\n\nRun `git add .claude`\n", buf.String())
}

func TestRenderMarkdown(t *testing.T) {
	out := ui.RenderMarkdown("# Heading\n\nsome text", 60)
	assert.Contains(t, out, "Heading")
	assert.Contains(t, out, "text")
}

func TestNewConsoleAuto(t *testing.T) {
	var buf bytes.Buffer
	c := ui.NewConsole(&buf, ui.FormatAuto)
	c.Info("hello")
	assert.Equal(t, "hello\n", buf.String())
}
