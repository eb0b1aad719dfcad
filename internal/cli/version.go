package cli

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/autosys/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf(MsgVersionFormat, version.Version)
			cmd.Printf(MsgCommitFormat, version.Commit)
			cmd.Printf(MsgBuiltFormat, version.Date)
		},
	}
}
