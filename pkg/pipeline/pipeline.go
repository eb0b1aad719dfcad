// Package pipeline drives an installation run: prerequisites, the steps in
// order, the change ledger, rollback on failure and the final verification.
package pipeline

import (
	"context"
	"time"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/execx"
	"github.com/arthur-debert/autosys/pkg/filesystem"
	"github.com/arthur-debert/autosys/pkg/git"
	"github.com/arthur-debert/autosys/pkg/guard"
	"github.com/arthur-debert/autosys/pkg/ledger"
	"github.com/arthur-debert/autosys/pkg/logging"
	"github.com/arthur-debert/autosys/pkg/prereq"
	"github.com/arthur-debert/autosys/pkg/rollback"
	"github.com/arthur-debert/autosys/pkg/service"
	"github.com/arthur-debert/autosys/pkg/steps"
	"github.com/arthur-debert/autosys/pkg/types"
	"github.com/arthur-debert/autosys/pkg/verify"
)

// State of a run. RollingBack is terminal.
type State int

const (
	Recording State = iota
	RollingBack
)

func (s State) String() string {
	if s == RollingBack {
		return "rolling-back"
	}
	return "recording"
}

// Prerequisites checks the environment before anything is mutated
type Prerequisites interface {
	Check(ctx context.Context, plan types.InstallationPlan) (prereq.Report, error)
}

// Observer receives progress as the run goes. All methods are called from
// the pipeline goroutine.
type Observer interface {
	StepStarted(step steps.Step)
	StepFinished(step steps.Step, res *steps.Result, err error)
	RollbackStarted(entries int)
	Compensated(c rollback.Compensation)
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) StepStarted(steps.Step) {}
func (NopObserver) StepFinished(steps.Step, *steps.Result, error) {}
func (NopObserver) RollbackStarted(int) {}
func (NopObserver) Compensated(rollback.Compensation) {}

// Options wires the collaborators of a run. Nil fields get the real implementations.
type Options struct {
	FS       types.FS
	Git      git.Client
	Runner   execx.Runner
	Service  service.Controller
	Prereq   Prerequisites
	Steps    []steps.Step
	Observer Observer
	LockDir  string
	Now      func() time.Time
}

func (o *Options) defaults(plan types.InstallationPlan) {
	if o.FS == nil {
		if plan.DryRun {
			o.FS = filesystem.NewReadOnly()
		} else {
			o.FS = filesystem.NewOS()
		}
	}
	if o.Git == nil {
		o.Git = git.NewShellClient(plan.Tools.Git, plan.TargetDir)
	}
	if o.Runner == nil {
		o.Runner = execx.NewShellRunner()
	}
	if o.Service == nil {
		o.Service = service.NewProcessController()
	}
	if o.Prereq == nil {
		o.Prereq = prereq.NewChecker(o.Git)
	}
	if o.Steps == nil {
		o.Steps = steps.Default()
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	if o.LockDir == "" {
		o.LockDir = DefaultLockDir()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Outcome describes a finished run, successful or not
type Outcome struct {
	State    State
	Prereq   prereq.Report
	Results  []*steps.Result
	Warnings []string
	// Applied lists the ledger entries in application order
	Applied  []ledger.Entry
	Layout   types.SourceLayout
	Rollback *rollback.Summary
	Report   *verify.Report
}

// Run executes plan. On a step failure after mutations it rolls back and
// returns a ROLLED_BACK error wrapping the cause.
func Run(ctx context.Context, plan types.InstallationPlan, opts Options) (*Outcome, error) {
	opts.defaults(plan)
	logger := logging.GetLogger("pipeline")
	defer logging.LogOperationStart(logger, "install")()

	lock, err := acquire(opts.LockDir, plan.TargetDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	out := &Outcome{State: Recording}

	report, err := opts.Prereq.Check(ctx, plan)
	out.Prereq = report
	out.Warnings = append(out.Warnings, report.Warnings...)
	if err != nil {
		return out, err
	}

	env := &steps.Env{
		Plan:    plan,
		FS:      opts.FS,
		Git:     opts.Git,
		Runner:  opts.Runner,
		Service: opts.Service,
		Guard:   guard.New(opts.FS),
		Logger:  logger,
		Now:     opts.Now,
	}
	l := ledger.New()

	for _, step := range opts.Steps {
		opts.Observer.StepStarted(step)

		var (
			res  *steps.Result
			sErr error
		)
		if cErr := ctx.Err(); cErr != nil {
			sErr = errors.Wrap(cErr, errors.ErrAborted, "installation interrupted")
		} else {
			res, sErr = step.Run(ctx, env)
		}
		if res == nil {
			res = &steps.Result{Step: step.Name()}
		}

		l.Append(res.Entries...)
		out.Results = append(out.Results, res)
		out.Warnings = append(out.Warnings, res.Warnings...)

		if sErr != nil && step.Optional() && ctx.Err() == nil {
			logger.Warn().Err(sErr).Str("step", step.Name()).Msg("Optional step failed")
			out.Warnings = append(out.Warnings, step.Name()+": "+sErr.Error())
			sErr = nil
		}
		opts.Observer.StepFinished(step, res, sErr)

		if sErr != nil {
			logger.Error().Err(sErr).Str("step", step.Name()).Int("entries", l.Len()).Msg("Step failed")
			out.Applied = l.Entries()
			out.Layout = env.Layout
			return out, rollBack(ctx, out, l, opts, step, sErr)
		}
		logger.Debug().Str("step", step.Name()).Int("entries", len(res.Entries)).Msg("Step finished")
	}

	out.Applied = l.Entries()
	out.Layout = env.Layout

	if !plan.DryRun && !env.Layout.Provisional && env.Layout.Base != "" {
		r := verify.Run(opts.FS, plan, env.Layout)
		out.Report = &r
	}
	logger.Info().Int("entries", l.Len()).Int("warnings", len(out.Warnings)).Msg("Installation complete")
	return out, nil
}

func rollBack(ctx context.Context, out *Outcome, l *ledger.Ledger, opts Options, step steps.Step, cause error) error {
	if l.Len() == 0 {
		// Nothing was mutated; the cause stands on its own.
		return cause
	}

	out.State = RollingBack
	opts.Observer.RollbackStarted(l.Len())

	engine := rollback.New(opts.FS, opts.Git, opts.Service, opts.Observer.Compensated)
	summary, rbErr := engine.Run(ctx, l)
	out.Rollback = &summary

	err := errors.Wrapf(cause, errors.ErrRolledBack, "step %q failed; %d changes rolled back", step.Name(), l.Len())
	if rbErr != nil {
		err = err.WithDetail("rollback", rbErr.Error())
	}
	return err
}
