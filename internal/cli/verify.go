package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/filesystem"
	"github.com/arthur-debert/autosys/pkg/layout"
	"github.com/arthur-debert/autosys/pkg/ui"
	"github.com/arthur-debert/autosys/pkg/verify"
)

func newVerifyCmd(app *App, opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: MsgVerifyShort,
		Long:  MsgVerifyLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, loaded, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			plan := loaded.Settings.Plan(target)
			fsys := filesystem.NewReadOnly()

			var report verify.Report
			if l, err := layout.Detect(fsys, plan.SubtreeDir()); err != nil {
				report = verify.Failed(plan, "layout", err)
			} else {
				report = verify.Run(fsys, plan, l)
			}

			if err := writeReport(app, format, report); err != nil {
				return err
			}
			if !report.OK() {
				return errors.Newf(errors.ErrVerificationFailed, MsgVerifyFailed, report.Failures())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "auto", MsgFlagFormat)
	return cmd
}

func writeReport(app *App, format string, report verify.Report) error {
	f, err := ui.ParseFormat(format)
	if err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid report format").
			WithRemediation("use --format auto, text, term, json or yaml")
	}

	var data []byte
	switch f {
	case ui.FormatAuto:
		return app.console().Report(report)
	case ui.FormatJSON:
		data, err = report.JSON()
	case ui.FormatYAML:
		data, err = report.YAML()
	default:
		return ui.NewConsole(app.Out, f).Report(report)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode report")
	}
	_, err = fmt.Fprintln(app.Out, string(data))
	return err
}
