package steps

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/autosys/pkg/ledger"
	"github.com/arthur-debert/autosys/pkg/templates"
	"github.com/arthur-debert/autosys/pkg/types"
)

// ScaffoldStep creates the .claude directory tree, one directory at a time
type ScaffoldStep struct{}

func (ScaffoldStep) Name() string   { return "scaffold" }
func (ScaffoldStep) Optional() bool { return false }

func (s ScaffoldStep) Run(ctx context.Context, env *Env) (*Result, error) {
	res := newResult(s.Name())
	for _, dir := range types.ScaffoldDirs {
		if err := ctx.Err(); err != nil {
			return res, stepError(err, "scaffold interrupted")
		}
		if err := ensureDir(env, res, filepath.Join(env.Plan.TargetDir, dir)); err != nil {
			return res, err
		}
	}
	return res, nil
}

// SettingsStep writes the variant's settings template to .claude/settings.json
type SettingsStep struct{}

func (SettingsStep) Name() string   { return "settings" }
func (SettingsStep) Optional() bool { return false }

func (s SettingsStep) Run(ctx context.Context, env *Env) (*Result, error) {
	res := newResult(s.Name())
	content, err := templates.Settings(env.Plan.Variant)
	if err != nil {
		return res, stepError(err, "render settings")
	}
	err = writeGenerated(env, res, env.Plan.SettingsPath(), content, 0644, ledger.NewSettingsWritten)
	return res, err
}
