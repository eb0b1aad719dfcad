// Package steps implements the provisioning actions of an installation run.
//
// Every step consults the guard before it mutates anything, returns a ledger
// entry for each mutation it actually performed (also when it fails halfway)
// and, in dry-run, only reports what it would do.
package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/arthur-debert/autosys/pkg/execx"
	"github.com/arthur-debert/autosys/pkg/git"
	"github.com/arthur-debert/autosys/pkg/guard"
	"github.com/arthur-debert/autosys/pkg/ledger"
	"github.com/arthur-debert/autosys/pkg/service"
	"github.com/arthur-debert/autosys/pkg/types"
	"github.com/rs/zerolog"
)

// Step is one provisioning action
type Step interface {
	Name() string
	// Optional steps never abort the run: their failures become warnings
	Optional() bool
	Run(ctx context.Context, env *Env) (*Result, error)
}

// Env is everything a step may read or drive
type Env struct {
	Plan   types.InstallationPlan
	Layout types.SourceLayout

	FS      types.FS
	Git     git.Client
	Runner  execx.Runner
	Service service.Controller
	Guard   *guard.Guard
	Logger  zerolog.Logger

	Now func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Status of one target after a step looked at it
type Status string

const (
	StatusApplied  Status = "applied"
	StatusSkipped  Status = "skipped"
	StatusConflict Status = "conflict"
	StatusPlanned  Status = "planned"
	StatusWarning  Status = "warning"
)

// Action reports what happened to one target
type Action struct {
	Target string
	Status Status
	Detail string
}

// Result collects a step's actions, applied entries and warnings
type Result struct {
	Step     string
	Actions  []Action
	Entries  []ledger.Entry
	Warnings []string
}

func newResult(step string) *Result {
	return &Result{Step: step}
}

func (r *Result) act(target string, status Status, format string, args ...interface{}) {
	r.Actions = append(r.Actions, Action{Target: target, Status: status, Detail: fmt.Sprintf(format, args...)})
}

func (r *Result) record(e ledger.Entry) {
	r.Entries = append(r.Entries, e)
}

func (r *Result) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Count returns the number of actions with status s
func (r *Result) Count(s Status) int {
	n := 0
	for _, a := range r.Actions {
		if a.Status == s {
			n++
		}
	}
	return n
}

// Default returns the installation steps in pipeline order
func Default() []Step {
	return []Step{
		RemoteStep{},
		SubtreeStep{},
		DetectLayoutStep{},
		ScaffoldStep{},
		SettingsStep{},
		AssetsStep{},
		DependenciesStep{},
		GitHooksStep{},
		IndexStep{},
		ServiceStep{},
	}
}
