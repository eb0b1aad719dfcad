package steps

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/autosys/pkg/assets"
	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/ledger"
	"github.com/arthur-debert/autosys/pkg/templates"
)

// AssetsStep links the variant's hooks and copies agents, commands, skills
// and the instruction file out of the component tree
type AssetsStep struct{}

func (AssetsStep) Name() string   { return "assets" }
func (AssetsStep) Optional() bool { return false }

func (s AssetsStep) Run(ctx context.Context, env *Env) (*Result, error) {
	res := newResult(s.Name())
	for _, category := range []func(context.Context, *Env, *Result) error{
		linkHooks,
		copyAgents,
		copyCommands,
		copySkills,
		copyInstructions,
	} {
		if err := ctx.Err(); err != nil {
			return res, stepError(err, "asset installation interrupted")
		}
		if err := category(ctx, env, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func linkHooks(ctx context.Context, env *Env, res *Result) error {
	hooksDir := env.Plan.HooksDir()
	for _, name := range templates.Hooks(env.Plan.Variant) {
		src := filepath.Join(env.Layout.HooksDir(), name)
		if !env.Layout.Provisional && !env.exists(src) {
			return errors.Newf(errors.ErrStepFailed, "hook %s missing from the component tree", name).
				WithDetail("source", src).
				WithRemediation("git subtree pull --prefix=" + env.Plan.Prefix + " " + env.Plan.RemoteName + " " + env.Plan.Branch + " --squash")
		}
		linkTo, err := filepath.Rel(hooksDir, src)
		if err != nil {
			return stepError(err, "resolve link for %s", name)
		}
		if err := link(env, res, filepath.Join(hooksDir, name), linkTo); err != nil {
			return err
		}
	}
	return nil
}

func copyAgents(ctx context.Context, env *Env, res *Result) error {
	return copyFlat(env, res, env.Layout.AgentsDir(), env.Plan.AgentsDir())
}

func copyCommands(ctx context.Context, env *Env, res *Result) error {
	return copyFlat(env, res, env.Layout.CommandsDir(), env.Plan.CommandsDir())
}

func copyFlat(env *Env, res *Result, srcDir, dstDir string) error {
	for name := range assets.Enumerate(env.FS, srcDir, assets.Markdown) {
		if err := copyAsset(env, res, filepath.Join(srcDir, name), filepath.Join(dstDir, name)); err != nil {
			return err
		}
	}
	return nil
}

// copySkills copies new bundles wholesale and refreshes existing ones file by file
func copySkills(ctx context.Context, env *Env, res *Result) error {
	srcRoot := env.Layout.SkillsDir()
	dstRoot := env.Plan.SkillsDir()

	for bundle := range assets.Bundles(env.FS, srcRoot) {
		src := filepath.Join(srcRoot, bundle)
		dst := filepath.Join(dstRoot, bundle)

		if !env.exists(dst) {
			if env.Plan.DryRun {
				res.act(env.rel(dst), StatusPlanned, "copy skill bundle")
				continue
			}
			if err := assets.CopyTree(env.FS, src, dst); err != nil {
				return stepError(err, "copy skill %s", bundle)
			}
			res.record(ledger.NewTreeCopied(dst))
			res.act(env.rel(dst), StatusApplied, "copied")
			continue
		}

		for rel := range assets.Walk(env.FS, src) {
			if err := ensureParents(env, res, dst, rel); err != nil {
				return err
			}
			if err := copyAsset(env, res, filepath.Join(src, rel), filepath.Join(dst, rel)); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyInstructions(ctx context.Context, env *Env, res *Result) error {
	src := env.Layout.InstructionsTemplate()
	dst := env.Plan.InstructionsPath()
	if !env.exists(src) {
		if env.Layout.Provisional {
			res.act(env.rel(dst), StatusPlanned, "copy from %s", env.rel(src))
			return nil
		}
		res.act(env.rel(dst), StatusWarning, "no template")
		res.warn("component tree ships no %s; skipped %s", env.rel(src), env.rel(dst))
		return nil
	}
	return copyAsset(env, res, src, dst)
}
