// Package rollback compensates the mutations recorded in a ledger, newest
// first. Every compensation is best effort: a failure is reported and logged
// and the walk continues with the next entry.
package rollback

import (
	"context"
	"fmt"
	"os"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/git"
	"github.com/arthur-debert/autosys/pkg/ledger"
	"github.com/arthur-debert/autosys/pkg/logging"
	"github.com/arthur-debert/autosys/pkg/service"
	"github.com/arthur-debert/autosys/pkg/types"
	"github.com/rs/zerolog"
)

// Outcome of compensating one entry
type Outcome string

const (
	Reverted Outcome = "reverted"
	// Kept means the entry was deliberately left in place (e.g. a non-empty directory)
	Kept   Outcome = "kept"
	Manual Outcome = "manual"
	Failed Outcome = "failed"
)

// Compensation reports what was done for one ledger entry
type Compensation struct {
	Index   int
	Entry   ledger.Entry
	Outcome Outcome
	Detail  string
	Err     error
}

// Reporter is called once per entry, in rollback order
type Reporter func(Compensation)

// Summary is the outcome of a whole rollback
type Summary struct {
	Compensations []Compensation
}

// Failures returns the compensations that did not succeed
func (s Summary) Failures() []Compensation {
	var out []Compensation
	for _, c := range s.Compensations {
		if c.Outcome == Failed {
			out = append(out, c)
		}
	}
	return out
}

// ManualSteps lists the remediation commands an operator still has to run
func (s Summary) ManualSteps() []string {
	var out []string
	for _, c := range s.Compensations {
		if c.Outcome == Manual {
			out = append(out, c.Detail)
		}
	}
	return out
}

// Engine replays a ledger backwards
type Engine struct {
	fs      types.FS
	git     git.Client
	service service.Controller
	report  Reporter
	logger  zerolog.Logger
}

// New creates an engine. report may be nil.
func New(fs types.FS, gitClient git.Client, svc service.Controller, report Reporter) *Engine {
	if report == nil {
		report = func(Compensation) {}
	}
	return &Engine{
		fs:      fs,
		git:     gitClient,
		service: svc,
		report:  report,
		logger:  logging.GetLogger("rollback"),
	}
}

// Run compensates every entry of l, newest first. It never stops early; the
// returned error aggregates the entries that could not be compensated.
func (e *Engine) Run(ctx context.Context, l *ledger.Ledger) (Summary, error) {
	// Rollback often starts because ctx was cancelled; compensations still run.
	ctx = context.WithoutCancel(ctx)

	var summary Summary
	e.logger.Warn().Int("entries", l.Len()).Msg("Rolling back")

	for i, entry := range l.Reverse() {
		c := e.compensate(ctx, entry)
		c.Index = i

		event := e.logger.Info()
		if c.Outcome == Failed {
			event = e.logger.Error().Err(c.Err)
		}
		event.Str("entry", entry.String()).Str("outcome", string(c.Outcome)).Str("detail", c.Detail).Msg("Compensation")

		summary.Compensations = append(summary.Compensations, c)
		e.report(c)
	}

	if failures := summary.Failures(); len(failures) > 0 {
		return summary, errors.Newf(errors.ErrCompensation, "%d of %d changes could not be reverted", len(failures), l.Len()).
			WithDetail("failures", failures)
	}
	return summary, nil
}

func (e *Engine) compensate(ctx context.Context, entry ledger.Entry) Compensation {
	c := Compensation{Entry: entry, Outcome: Reverted}
	fail := func(err error) Compensation {
		c.Outcome = Failed
		c.Err = err
		return c
	}

	switch entry.Kind {
	case ledger.RemoteAdded:
		if err := e.git.RemoveRemote(ctx, entry.Name); err != nil {
			return fail(err)
		}
		c.Detail = "removed remote " + entry.Name

	case ledger.SubtreeAdded, ledger.TreeCopied, ledger.IndexCreated:
		if err := e.fs.RemoveAll(entry.Path); err != nil {
			return fail(err)
		}
		c.Detail = "removed " + entry.Path

	case ledger.DirectoryCreated:
		entries, err := e.fs.ReadDir(entry.Path)
		if os.IsNotExist(err) {
			c.Detail = entry.Path + " already gone"
			return c
		}
		if err != nil {
			return fail(err)
		}
		if len(entries) > 0 {
			c.Outcome = Kept
			c.Detail = entry.Path + " is not empty"
			return c
		}
		if err := e.fs.Remove(entry.Path); err != nil {
			return fail(err)
		}
		c.Detail = "removed " + entry.Path

	case ledger.SettingsWritten, ledger.FileCreated, ledger.FileCreatedWithBackup:
		if err := e.removeFile(entry.Path); err != nil {
			return fail(err)
		}
		c.Detail = "removed " + entry.Path
		if entry.Backup != "" {
			if err := e.fs.Rename(entry.Backup, entry.Path); err != nil {
				return fail(fmt.Errorf("restore %s from %s: %w", entry.Path, entry.Backup, err))
			}
			c.Detail = "restored " + entry.Path + " from " + entry.Backup
		}

	case ledger.SymlinkCreated:
		if err := e.removeFile(entry.Path); err != nil {
			return fail(err)
		}
		c.Detail = "removed " + entry.Path
		if entry.PreviousTarget != "" {
			if err := e.fs.Symlink(entry.PreviousTarget, entry.Path); err != nil {
				return fail(fmt.Errorf("restore link %s -> %s: %w", entry.Path, entry.PreviousTarget, err))
			}
			c.Detail = "relinked " + entry.Path + " -> " + entry.PreviousTarget
		}

	case ledger.DependenciesInstalled:
		// User-scope packages may be shared with other projects.
		c.Outcome = Manual
		c.Detail = "pip3 uninstall -r " + entry.Name

	case ledger.HooksInstalled:
		c.Outcome = Manual
		c.Detail = "review .git/hooks for hooks installed by " + entry.Name

	case ledger.AuxServiceStarted:
		if err := e.service.Stop(entry.PID); err != nil {
			return fail(err)
		}
		c.Detail = fmt.Sprintf("stopped pid %d", entry.PID)

	default:
		return fail(fmt.Errorf("no compensation for entry kind %q", entry.Kind))
	}
	return c
}

func (e *Engine) removeFile(path string) error {
	if err := e.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
