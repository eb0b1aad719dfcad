package steps

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/autosys/pkg/assets"
	"github.com/arthur-debert/autosys/pkg/execx"
	"github.com/arthur-debert/autosys/pkg/ledger"
	"github.com/arthur-debert/autosys/pkg/service"
)

// ServiceStep materializes the auxiliary service project, installs its
// dependencies and optionally starts it in the background
type ServiceStep struct{}

func (ServiceStep) Name() string   { return "service" }
func (ServiceStep) Optional() bool { return true }

func (s ServiceStep) Run(ctx context.Context, env *Env) (*Result, error) {
	res := newResult(s.Name())
	opts := env.Plan.Service
	dir := env.Plan.ServiceDir()
	if !opts.Enabled {
		res.act(env.rel(dir), StatusSkipped, "disabled")
		return res, nil
	}

	if len(opts.InstallCommand) == 0 || len(opts.StartCommand) == 0 {
		res.act(env.rel(dir), StatusWarning, "no commands configured")
		res.warn("auxiliary service needs install and start commands; skipped")
		return res, nil
	}

	tmpl := env.Layout.ServiceTemplateDir()
	url := service.HealthURL(opts.Port, opts.HealthPath)
	install := execx.Command{Name: opts.InstallCommand[0], Args: opts.InstallCommand[1:], Dir: dir}

	if env.Layout.Provisional || env.Plan.DryRun {
		if !env.exists(dir) {
			res.act(env.rel(dir), StatusPlanned, "copy %s", env.rel(tmpl))
		}
		res.act(env.rel(dir), StatusPlanned, "%s", install)
		if opts.Start {
			res.act(url, StatusPlanned, "%s (PORT=%d)", strings.Join(opts.StartCommand, " "), opts.Port)
		}
		return res, nil
	}

	if !env.exists(dir) {
		if !env.exists(tmpl) {
			res.act(env.rel(dir), StatusWarning, "no service template")
			res.warn("component tree ships no %s; auxiliary service skipped", env.rel(tmpl))
			return res, nil
		}
		if err := assets.CopyTree(env.FS, tmpl, dir); err != nil {
			res.act(env.rel(dir), StatusWarning, "copy failed")
			res.warn("could not create service project: %v", err)
			return res, nil
		}
		res.record(ledger.NewTreeCopied(dir))
		res.act(env.rel(dir), StatusApplied, "copied from %s", env.rel(tmpl))
	} else {
		res.act(env.rel(dir), StatusSkipped, "exists")
	}

	if _, err := env.Runner.Run(ctx, install); err != nil {
		res.act(env.rel(dir), StatusWarning, "dependency install failed")
		res.warn("service dependencies failed to install (%v); run `%s` in %s", err, install, env.rel(dir))
		return res, nil
	}
	res.act(env.rel(dir), StatusApplied, "%s", install)

	if !opts.Start {
		return res, nil
	}
	if err := env.Service.Probe(ctx, url, 1, 0); err == nil {
		res.act(url, StatusSkipped, "already answering")
		return res, nil
	}

	logPath := filepath.Join(dir, service.LogFileName)
	hadLog := env.exists(logPath)
	pid, err := env.Service.Start(ctx, dir, opts.StartCommand, opts.Port)
	if !hadLog && env.exists(logPath) {
		res.record(ledger.NewFileCreated(logPath))
	}
	if err != nil {
		res.act(url, StatusWarning, "start failed")
		res.warn("service failed to start: %v (see %s)", err, filepath.Join(env.rel(dir), service.LogFileName))
		return res, nil
	}
	res.record(ledger.NewAuxServiceStarted(pid, dir))

	if err := env.Service.Probe(ctx, url, opts.MaxAttempts, opts.Interval); err != nil {
		if ctx.Err() != nil {
			return res, stepError(ctx.Err(), "waiting for service")
		}
		res.act(url, StatusWarning, "started (pid %d), not ready yet", pid)
		res.warn("service started (pid %d) but %s did not answer; it may still be starting", pid, url)
		return res, nil
	}
	res.act(url, StatusApplied, "ready (pid %d)", pid)
	return res, nil
}
