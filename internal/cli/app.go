// Package cli wires the autosys commands to the installer packages.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/logging"
	"github.com/arthur-debert/autosys/pkg/pipeline"
	"github.com/arthur-debert/autosys/pkg/prompt"
	"github.com/arthur-debert/autosys/pkg/ui"
)

// Exit codes
const (
	ExitOK       = 0
	ExitFatal    = 1
	ExitFindings = 2
)

// App holds the process-level collaborators of the commands. Zero fields
// fall back to the real terminal, logger and installer implementations.
type App struct {
	Out io.Writer
	Err io.Writer
	In  *os.File

	Format   ui.Format
	Prompter prompt.Prompter
	// Options seeds every pipeline run; Observer is always the console
	Options pipeline.Options
	// SetupLogging configures the global logger once flags are parsed
	SetupLogging func(verbosity int)
}

func (a *App) defaults() {
	if a.Out == nil {
		a.Out = os.Stdout
	}
	if a.Err == nil {
		a.Err = os.Stderr
	}
	if a.In == nil {
		a.In = os.Stdin
	}
	if a.Prompter == nil {
		a.Prompter = prompt.New(a.In)
	}
	if a.SetupLogging == nil {
		a.SetupLogging = logging.SetupLogger
	}
}

func (a *App) console() *ui.Console {
	return ui.NewConsole(a.Out, a.Format)
}

// ExitCode maps a command error to the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.IsErrorCode(err, errors.ErrVerificationFailed):
		return ExitFindings
	default:
		return ExitFatal
	}
}

// Execute runs the command line and returns the exit status. SIGINT and
// SIGTERM cancel the run, which rolls back whatever was applied.
func Execute(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &App{}
	cmd := NewRootCmd(app)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil && !errors.IsErrorCode(err, errors.ErrVerificationFailed) {
		ui.NewConsole(app.Err, app.Format).Error(err)
	}
	return ExitCode(err)
}
