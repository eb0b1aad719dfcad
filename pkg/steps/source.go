package steps

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/layout"
	"github.com/arthur-debert/autosys/pkg/ledger"
	"github.com/arthur-debert/autosys/pkg/types"
)

// RemoteStep registers the component repository as a named remote
type RemoteStep struct{}

func (RemoteStep) Name() string   { return "remote" }
func (RemoteStep) Optional() bool { return false }

func (s RemoteStep) Run(ctx context.Context, env *Env) (*Result, error) {
	res := newResult(s.Name())
	name := env.Plan.RemoteName

	has, err := env.Git.HasRemote(ctx, name)
	if err != nil {
		return res, stepError(err, "list remotes")
	}
	if has {
		res.act(name, StatusSkipped, "remote already registered")
		return res, nil
	}
	if env.Plan.DryRun {
		res.act(name, StatusPlanned, "git remote add %s %s", name, env.Plan.RepoURL)
		return res, nil
	}

	if err := env.Git.AddRemote(ctx, name, env.Plan.RepoURL); err != nil {
		return res, stepError(err, "add remote %s", name)
	}
	res.record(ledger.NewRemoteAdded(name))
	res.act(name, StatusApplied, "-> %s", env.Plan.RepoURL)
	env.Logger.Info().Str("remote", name).Str("url", env.Plan.RepoURL).Msg("Remote added")
	return res, nil
}

// InitialCommitMessage is used for the placeholder commit in empty repositories
const InitialCommitMessage = "Initial commit"

// SubtreeStep fetches the component tree into the prefix as a squashed subtree
type SubtreeStep struct{}

func (SubtreeStep) Name() string   { return "subtree" }
func (SubtreeStep) Optional() bool { return false }

func (s SubtreeStep) Run(ctx context.Context, env *Env) (*Result, error) {
	res := newResult(s.Name())
	plan := env.Plan
	prefixDir := plan.SubtreeDir()

	if env.exists(prefixDir) {
		res.act(plan.Prefix, StatusSkipped, "subtree already present")
		return res, nil
	}

	hasCommits, err := env.Git.HasCommits(ctx)
	if err != nil {
		return res, stepError(err, "inspect repository history")
	}
	if !hasCommits {
		if !plan.CreateInitialCommit {
			return res, errors.New(errors.ErrStepFailed, "repository has no commits; git subtree needs at least one").
				WithRemediation(`git commit --allow-empty -m "` + InitialCommitMessage + `"`)
		}
		if err := s.initialCommit(ctx, env, res); err != nil {
			return res, err
		}
	}

	if plan.DryRun {
		res.act(plan.Prefix, StatusPlanned, "git subtree add --prefix=%s %s %s --squash", plan.Prefix, plan.RemoteName, plan.Branch)
		return res, nil
	}

	clean, err := env.Git.IsClean(ctx)
	if err != nil {
		return res, stepError(err, "check working tree")
	}
	if !clean {
		return res, errors.New(errors.ErrStepFailed, "working tree has uncommitted changes; git subtree refuses to run").
			WithRemediation("git stash")
	}

	if err := env.Git.SubtreeAdd(ctx, plan.Prefix, plan.RemoteName, plan.Branch); err != nil {
		return res, stepError(err, "fetch %s (%s) into %s", plan.RemoteName, plan.Branch, plan.Prefix)
	}
	res.record(ledger.NewSubtreeAdded(prefixDir))
	res.act(plan.Prefix, StatusApplied, "fetched %s@%s", plan.RemoteName, plan.Branch)
	env.Logger.Info().Str("prefix", plan.Prefix).Str("branch", plan.Branch).Msg("Subtree added")
	return res, nil
}

// initialCommit gives an empty repository its first commit. Only the
// placeholder file is ever compensated; history is not rewritten.
func (s SubtreeStep) initialCommit(ctx context.Context, env *Env, res *Result) error {
	placeholder := filepath.Join(env.Plan.TargetDir, types.PlaceholderFileName)
	if env.Plan.DryRun {
		res.act(types.PlaceholderFileName, StatusPlanned, "create and commit %q", InitialCommitMessage)
		return nil
	}

	if !env.exists(placeholder) {
		if err := env.FS.WriteFile(placeholder, nil, 0644); err != nil {
			return stepError(err, "create %s", types.PlaceholderFileName)
		}
		res.record(ledger.NewFileCreated(placeholder))
	}
	if err := env.Git.CommitFile(ctx, types.PlaceholderFileName, InitialCommitMessage); err != nil {
		return stepError(err, "create initial commit")
	}
	res.act(types.PlaceholderFileName, StatusApplied, "committed %q", InitialCommitMessage)
	env.Logger.Info().Msg("Initial commit created")
	return nil
}

// DetectLayoutStep resolves the shape of the fetched tree into env.Layout
type DetectLayoutStep struct{}

func (DetectLayoutStep) Name() string   { return "layout" }
func (DetectLayoutStep) Optional() bool { return false }

func (s DetectLayoutStep) Run(ctx context.Context, env *Env) (*Result, error) {
	res := newResult(s.Name())
	root := env.Plan.SubtreeDir()

	if env.Plan.DryRun && !env.exists(root) {
		env.Layout = layout.Provisional(root)
		res.act(env.Plan.Prefix, StatusPlanned, "layout detected after fetch")
		return res, nil
	}

	l, err := layout.Detect(env.FS, root)
	if err != nil {
		return res, err
	}
	env.Layout = l
	res.act(env.rel(l.Base), StatusSkipped, "%s layout", l.Kind)
	return res, nil
}
