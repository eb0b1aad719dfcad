package steps

import (
	"context"

	"github.com/arthur-debert/autosys/pkg/execx"
	"github.com/arthur-debert/autosys/pkg/ledger"
)

// DependenciesStep installs the component tree's Python requirements in user scope
type DependenciesStep struct{}

func (DependenciesStep) Name() string   { return "dependencies" }
func (DependenciesStep) Optional() bool { return true }

func (s DependenciesStep) Run(ctx context.Context, env *Env) (*Result, error) {
	res := newResult(s.Name())
	manifest := env.Layout.RequirementsFile()
	if !env.Plan.InstallDependencies {
		res.act(env.rel(manifest), StatusSkipped, "disabled")
		return res, nil
	}

	cmd := execx.Command{
		Name: env.Plan.Tools.Pip,
		Args: []string{"install", "--user", "-r", manifest},
		Dir:  env.Plan.TargetDir,
	}
	if ok := optionalSource(env, res, manifest, cmd); !ok {
		return res, nil
	}

	if _, err := env.Runner.Run(ctx, cmd); err != nil {
		res.act(env.rel(manifest), StatusWarning, "install failed")
		res.warn("dependency installation failed (%v); run `%s` manually", err, cmd)
		return res, nil
	}
	res.record(ledger.NewDependenciesInstalled(manifest))
	res.act(env.rel(manifest), StatusApplied, "installed")
	return res, nil
}

// GitHooksStep runs the component tree's git hooks installer
type GitHooksStep struct{}

func (GitHooksStep) Name() string   { return "git-hooks" }
func (GitHooksStep) Optional() bool { return true }

func (s GitHooksStep) Run(ctx context.Context, env *Env) (*Result, error) {
	res := newResult(s.Name())
	script := env.Layout.GitHooksInstaller()
	if !env.Plan.InstallGitHooks {
		res.act(env.rel(script), StatusSkipped, "disabled")
		return res, nil
	}

	cmd := execx.Command{Name: "bash", Args: []string{script}, Dir: env.Plan.TargetDir}
	if ok := optionalSource(env, res, script, cmd); !ok {
		return res, nil
	}

	if _, err := env.Runner.Run(ctx, cmd); err != nil {
		res.act(env.rel(script), StatusWarning, "installer failed")
		res.warn("git hooks installation failed (%v); run `%s` manually", err, cmd)
		return res, nil
	}
	res.record(ledger.NewHooksInstalled(script))
	res.act(env.rel(script), StatusApplied, "installed")
	return res, nil
}

// IndexStep builds the initial project index under .claude/index
type IndexStep struct{}

func (IndexStep) Name() string   { return "indexing" }
func (IndexStep) Optional() bool { return true }

func (s IndexStep) Run(ctx context.Context, env *Env) (*Result, error) {
	res := newResult(s.Name())
	script := env.Layout.IndexEntryPoint()
	indexDir := env.Plan.IndexDir()
	if !env.Plan.RunIndexing {
		res.act(env.rel(indexDir), StatusSkipped, "disabled")
		return res, nil
	}

	cmd := execx.Command{Name: env.Plan.Tools.Python, Args: []string{script}, Dir: env.Plan.TargetDir}
	if ok := optionalSource(env, res, script, cmd); !ok {
		return res, nil
	}

	existed := env.exists(indexDir)
	if _, err := env.Runner.Run(ctx, cmd); err != nil {
		res.act(env.rel(indexDir), StatusWarning, "indexing failed")
		res.warn("initial indexing failed (%v); run `%s` manually", err, cmd)
		return res, nil
	}

	switch {
	case existed:
		res.act(env.rel(indexDir), StatusApplied, "refreshed")
	case env.exists(indexDir):
		res.record(ledger.NewIndexCreated(indexDir))
		res.act(env.rel(indexDir), StatusApplied, "created")
	default:
		res.act(env.rel(indexDir), StatusWarning, "indexer produced no index")
		res.warn("%s finished without creating %s", env.rel(script), env.rel(indexDir))
	}
	return res, nil
}

// optionalSource reports whether an optional step should go on to run cmd.
// Missing sources are skipped; dry-run only reports the command.
func optionalSource(env *Env, res *Result, source string, cmd execx.Command) bool {
	if env.Layout.Provisional {
		res.act(env.rel(source), StatusPlanned, "%s", cmd)
		return false
	}
	if !env.exists(source) {
		res.act(env.rel(source), StatusSkipped, "not shipped by the component tree")
		return false
	}
	if env.Plan.DryRun {
		res.act(env.rel(source), StatusPlanned, "%s", cmd)
		return false
	}
	return true
}
