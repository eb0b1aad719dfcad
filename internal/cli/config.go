package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/autosys/pkg/config"
)

func newConfigCmd(app *App, opts *rootOptions) *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				_, err := fmt.Fprint(app.Out, config.Defaults())
				return err
			}
			_, loaded, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			out, err := config.Dump(loaded.Settings)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(app.Out, out)
			return err
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	return cmd
}
