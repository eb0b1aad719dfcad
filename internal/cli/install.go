package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/autosys/pkg/config"
	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/git"
	"github.com/arthur-debert/autosys/pkg/logging"
	"github.com/arthur-debert/autosys/pkg/pipeline"
	"github.com/arthur-debert/autosys/pkg/prereq"
	"github.com/arthur-debert/autosys/pkg/service"
	"github.com/arthur-debert/autosys/pkg/templates"
	"github.com/arthur-debert/autosys/pkg/types"
)

func runInstall(cmd *cobra.Command, app *App, opts *rootOptions) error {
	ctx := cmd.Context()
	logger := logging.GetLogger("cli")

	target, loaded, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}

	pOpts := app.Options
	if pOpts.Git == nil {
		pOpts.Git = git.NewShellClient(loaded.Settings.Tools.Git, target)
	}

	plan, err := config.Resolve(ctx, loaded, target, app.Prompter, pOpts.Git)
	if err != nil {
		return err
	}
	logging.WithRunID(plan.RunID)
	logger.Info().Str("target", plan.TargetDir).Str("variant", string(plan.Variant)).Bool("dry_run", plan.DryRun).Msg("Starting installation")

	console := app.console()
	console.Verbose = opts.verbosity > 0
	pOpts.Observer = console

	if plan.DryRun {
		console.Title(fmt.Sprintf(MsgDryRunTitle, plan.TargetDir))
	} else {
		console.Title(fmt.Sprintf(MsgInstallTitle, plan.TargetDir))
	}

	outcome, err := pipeline.Run(ctx, plan, pOpts)
	if outcome != nil {
		console.Warnings(outcome.Warnings)
		if outcome.Rollback != nil {
			console.RollbackFinished(*outcome.Rollback)
			console.ManualSteps(*outcome.Rollback)
		}
	}
	if err != nil {
		return err
	}

	if plan.DryRun {
		console.Info(MsgDryRunNotice)
		return nil
	}

	if outcome.Report != nil && !outcome.Report.OK() {
		if rErr := console.Report(*outcome.Report); rErr != nil {
			return rErr
		}
		return errors.Newf(errors.ErrVerificationFailed, MsgVerifyFailed, outcome.Report.Failures())
	}

	if len(outcome.Applied) == 0 {
		console.Success(MsgNothingChanged)
		return nil
	}
	console.Success(fmt.Sprintf(MsgInstallDone, len(outcome.Applied)))

	guide, err := templates.NextSteps(guideData(plan))
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to render next steps")
	}
	console.Guide(guide)
	return nil
}

func guideData(plan types.InstallationPlan) templates.GuideData {
	data := templates.GuideData{
		Variant:           plan.Variant,
		SettingsPath:      plan.SettingsPath(),
		IntegrationPoints: templates.ExpectedPoints(plan.Variant),
		Prefix:            plan.Prefix,
		RemoteName:        plan.RemoteName,
		Branch:            plan.Branch,
		APIKeySet:         os.Getenv(prereq.APIKeyEnv) != "",
	}
	if plan.Service.Enabled && plan.Service.Start {
		data.ServiceURL = service.HealthURL(plan.Service.Port, plan.Service.HealthPath)
	}
	return data
}
