package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/rollback"
	"github.com/arthur-debert/autosys/pkg/steps"
	"github.com/arthur-debert/autosys/pkg/verify"
)

// Console writes human-facing output. It also receives pipeline progress.
type Console struct {
	out    io.Writer
	format Format
	// Verbose lists skipped actions too
	Verbose bool
}

// NewConsole resolves FormatAuto against out
func NewConsole(out io.Writer, format Format) *Console {
	if format == FormatAuto {
		format = FormatText
		if f, ok := out.(*os.File); ok {
			format = DetectFormat(f)
		}
	}
	return &Console{out: out, format: format}
}

func (c *Console) rich() bool { return c.format == FormatTerminal }

func (c *Console) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// Title prints a heading
func (c *Console) Title(text string) {
	if c.rich() {
		text = TitleStyle.Render(text)
	}
	c.printf("%s\n\n", text)
}

// Info prints a one-line message
func (c *Console) Info(msg string) {
	if c.rich() {
		c.printf("%s\n", pterm.Info.Sprint(msg))
		return
	}
	c.printf("%s\n", msg)
}

// Success prints a completion message
func (c *Console) Success(msg string) {
	if c.rich() {
		c.printf("%s\n", SuccessStyle.Render("✓ "+msg))
		return
	}
	c.printf("OK: %s\n", msg)
}

func (c *Console) StepStarted(step steps.Step) {}

// StepFinished prints one summary line per step and the notable actions under it
func (c *Console) StepFinished(step steps.Step, res *steps.Result, err error) {
	name := step.Name()
	if step.Optional() {
		name += " (optional)"
	}

	summary := summarize(res)
	switch {
	case err != nil:
		c.line(ErrorStyle, "✗", "FAIL", name, err.Error())
	case res.Count(steps.StatusConflict) > 0 || len(res.Warnings) > 0:
		c.line(WarningStyle, "!", "WARN", name, summary)
	default:
		c.line(SuccessStyle, "✓", "OK", name, summary)
	}

	for _, a := range res.Actions {
		if a.Status == steps.StatusSkipped && !c.Verbose {
			continue
		}
		status := fmt.Sprintf("%-8s", a.Status)
		if c.rich() {
			status = StatusStyle(a.Status).Sprint(status)
		}
		detail := ""
		if a.Detail != "" {
			detail = "  " + a.Detail
		}
		c.printf("    %s %s%s\n", status, a.Target, detail)
	}
	for _, w := range res.Warnings {
		c.printf("    %s\n", c.warning(w))
	}
}

func (c *Console) line(style interface{ Render(...string) string }, mark, word, name, note string) {
	if c.rich() {
		c.printf("%s %s %s\n", style.Render(mark), name, MutedStyle.Render(note))
		return
	}
	c.printf("[%s] %s: %s\n", word, name, note)
}

func (c *Console) warning(w string) string {
	if c.rich() {
		return WarningStyle.Render("warning: " + w)
	}
	return "warning: " + w
}

func summarize(res *steps.Result) string {
	if res == nil || len(res.Actions) == 0 {
		return "nothing to do"
	}
	order := []steps.Status{steps.StatusApplied, steps.StatusPlanned, steps.StatusSkipped, steps.StatusConflict, steps.StatusWarning}
	var parts []string
	for _, s := range order {
		if n := res.Count(s); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	return strings.Join(parts, ", ")
}

// RollbackStarted announces the compensation walk
func (c *Console) RollbackStarted(entries int) {
	msg := fmt.Sprintf("Rolling back %d change(s)", entries)
	if c.rich() {
		c.printf("\n%s\n", ErrorStyle.Render(msg))
		return
	}
	c.printf("\n%s\n", msg)
}

// Compensated prints the outcome of one rollback entry
func (c *Console) Compensated(comp rollback.Compensation) {
	outcome := fmt.Sprintf("%-8s", comp.Outcome)
	if c.rich() {
		outcome = OutcomeStyle(comp.Outcome).Sprint(outcome)
	}
	note := comp.Detail
	if comp.Err != nil {
		note = comp.Err.Error()
	}
	if note != "" {
		note = "  " + note
	}
	c.printf("    %s %s%s\n", outcome, comp.Entry, note)
}

// RollbackFinished confirms the walk is over and tallies its outcomes
func (c *Console) RollbackFinished(summary rollback.Summary) {
	failed := len(summary.Failures())
	msg := fmt.Sprintf("Rollback complete: %d compensated, %d failed", len(summary.Compensations)-failed, failed)
	if c.rich() {
		style := SuccessStyle
		if failed > 0 {
			style = ErrorStyle
		}
		c.printf("%s\n", style.Render(msg))
		return
	}
	c.printf("%s\n", msg)
}

// ManualSteps lists what rollback could not undo by itself
func (c *Console) ManualSteps(summary rollback.Summary) {
	manual := summary.ManualSteps()
	if len(manual) == 0 {
		return
	}
	c.printf("\nUndo by hand:\n")
	for _, m := range manual {
		if c.rich() {
			m = CodeStyle.Render(m)
		}
		c.printf("  %s\n", m)
	}
}

// Warnings prints collected non-fatal warnings
func (c *Console) Warnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	c.printf("\n")
	for _, w := range warnings {
		c.printf("%s\n", c.warning(w))
	}
}

// Error prints err with any remediation and structured details it carries
func (c *Console) Error(err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	if c.rich() {
		c.printf("\n%s\n", ErrorStyle.Render("Error: "+msg))
	} else {
		c.printf("\nError: %s\n", msg)
	}

	details := errors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		if k != errors.DetailRemediation {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := details[k].(type) {
		case []string:
			c.printf("  %s:\n", k)
			for _, item := range v {
				c.printf("    - %s\n", item)
			}
		default:
			c.printf("  %s: %v\n", k, v)
		}
	}

	if fix := errors.Remediation(err); fix != "" {
		if c.rich() {
			fix = CodeStyle.Render(fix)
		}
		c.printf("  To fix: %s\n", fix)
	}
}

// Report prints a verification report as a table
func (c *Console) Report(r verify.Report) error {
	if c.rich() {
		data := pterm.TableData{{"Check", "Result", "Note"}}
		for _, chk := range r.Checks {
			result := pterm.Green("pass")
			if !chk.Passed {
				result = pterm.Red("FAIL")
			}
			data = append(data, []string{chk.Name, result, chk.Note})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		c.printf("%s\n", table)
	} else {
		for _, chk := range r.Checks {
			result := "pass"
			if !chk.Passed {
				result = "FAIL"
			}
			note := ""
			if chk.Note != "" {
				note = " (" + chk.Note + ")"
			}
			c.printf("%-4s %s%s\n", result, chk.Name, note)
		}
	}

	if r.OK() {
		c.Success(fmt.Sprintf("%d checks passed", len(r.Checks)))
	} else {
		c.printf("%d of %d checks failed\n", r.Failures(), len(r.Checks))
	}
	return nil
}

// Guide prints the next-steps markdown, rendered for terminals
func (c *Console) Guide(markdown string) {
	if c.rich() {
		markdown = RenderMarkdown(markdown, 0)
	}
	c.printf("\n%s\n", strings.TrimRight(markdown, "\n"))
}
