// Package prereq checks, before anything is mutated, that the external tools
// the plan needs are present and recent enough.
package prereq

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/git"
	"github.com/arthur-debert/autosys/pkg/logging"
	"github.com/arthur-debert/autosys/pkg/types"
	"github.com/rs/zerolog"
)

// APIKeyEnv is checked for presence only
const APIKeyEnv = "ANTHROPIC_API_KEY"

// Tool is one resolved external binary
type Tool struct {
	Name    string
	Path    string
	Version string
}

// Report is the outcome of a successful check
type Report struct {
	Tools    []Tool
	Warnings []string
}

// Checker runs the prerequisite checks
type Checker struct {
	LookPath func(file string) (string, error)
	Getenv   func(key string) string

	git    git.Client
	logger zerolog.Logger
}

// NewChecker returns a checker that resolves tools on $PATH and queries
// gitClient for the version and repository checks.
func NewChecker(gitClient git.Client) *Checker {
	return &Checker{
		LookPath: exec.LookPath,
		Getenv:   os.Getenv,
		git:      gitClient,
		logger:   logging.GetLogger("prereq"),
	}
}

// Check returns a PREREQUISITE_MISSING error for anything the mandatory steps
// need. Tools only needed by optional steps are reported as warnings.
func (c *Checker) Check(ctx context.Context, plan types.InstallationPlan) (Report, error) {
	var report Report

	gitPath, err := c.LookPath(plan.Tools.Git)
	if err != nil {
		return report, errors.Newf(errors.ErrPrerequisiteMissing, "%s not found on PATH", plan.Tools.Git).
			WithRemediation("install git (https://git-scm.com/downloads)")
	}

	version, err := c.git.Version(ctx)
	if err != nil {
		return report, errors.Wrap(err, errors.ErrPrerequisiteMissing, "could not determine git version")
	}
	if err := checkMinimum(version, plan.Tools.GitMinVersion); err != nil {
		return report, errors.Wrapf(err, errors.ErrPrerequisiteMissing, "git %s is too old", version).
			WithRemediation(fmt.Sprintf("upgrade git to %s or newer", plan.Tools.GitMinVersion))
	}
	report.Tools = append(report.Tools, Tool{Name: "git", Path: gitPath, Version: version})

	if !c.git.IsRepository(ctx) {
		return report, errors.Newf(errors.ErrPrerequisiteMissing, "%s is not a git repository", plan.TargetDir).
			WithRemediation("git init " + plan.TargetDir)
	}
	top, err := c.git.TopLevel(ctx)
	if err != nil {
		return report, errors.Wrap(err, errors.ErrPrerequisiteMissing, "could not resolve repository root")
	}
	if !samePath(top, plan.TargetDir) {
		return report, errors.Newf(errors.ErrInvalidInput, "%s is not the repository root (%s)", plan.TargetDir, top).
			WithRemediation("autosys --target " + top)
	}

	if plan.InstallDependencies {
		report.Warnings = append(report.Warnings, c.optionalTool(&report, plan.Tools.Pip, "dependency installation")...)
	}
	if plan.RunIndexing {
		report.Warnings = append(report.Warnings, c.optionalTool(&report, plan.Tools.Python, "initial indexing")...)
	}
	if plan.Service.Enabled && len(plan.Service.InstallCommand) > 0 {
		report.Warnings = append(report.Warnings, c.optionalTool(&report, plan.Service.InstallCommand[0], "auxiliary service")...)
	}

	if c.Getenv(APIKeyEnv) == "" {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%s is not set; hooks that call the API will not work until it is exported", APIKeyEnv))
	}

	for _, w := range report.Warnings {
		c.logger.Warn().Msg(w)
	}
	c.logger.Debug().Int("tools", len(report.Tools)).Msg("Prerequisites satisfied")
	return report, nil
}

func (c *Checker) optionalTool(report *Report, name, feature string) []string {
	path, err := c.LookPath(name)
	if err != nil {
		return []string{fmt.Sprintf("%s not found on PATH; %s will be skipped with a warning", name, feature)}
	}
	report.Tools = append(report.Tools, Tool{Name: name, Path: path})
	return nil
}

func checkMinimum(version, minimum string) error {
	if minimum == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("parse version %q: %w", version, err)
	}
	constraint, err := semver.NewConstraint(">= " + minimum)
	if err != nil {
		return fmt.Errorf("parse minimum version %q: %w", minimum, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("version %s does not satisfy >= %s", version, minimum)
	}
	return nil
}

func samePath(a, b string) bool {
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return ra == rb
}
