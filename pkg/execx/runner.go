// Package execx runs external commands (package installers, installer scripts,
// service tooling) with captured output and structured logging.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/arthur-debert/autosys/pkg/logging"
	"github.com/rs/zerolog"
)

// Command describes one external command invocation
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string
}

// String renders the command line for logs and dry-run output
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the captured outcome of a command
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes commands. Implementations must honour ctx cancellation.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ShellRunner runs commands as subprocesses of the installer
type ShellRunner struct {
	logger zerolog.Logger
}

// NewShellRunner creates a runner that shells out via os/exec
func NewShellRunner() *ShellRunner {
	return &ShellRunner{logger: logging.GetLogger("execx")}
}

// Run executes c and waits for it to finish
func (r *ShellRunner) Run(ctx context.Context, c Command) (Result, error) {
	if c.Name == "" {
		return Result{}, errors.New("command requires a name")
	}
	if c.Dir != "" {
		if _, err := os.Stat(c.Dir); err != nil {
			return Result{}, fmt.Errorf("working directory %s: %w", c.Dir, err)
		}
	}

	logging.LogCommand(c.Name, c.Args)

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = MergeEnv(os.Environ(), c.Env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(err),
	}

	if stdout.Len() > 0 {
		r.logger.Debug().Str("output", result.Stdout).Msg("Command stdout")
	}
	if stderr.Len() > 0 {
		r.logger.Debug().Str("output", result.Stderr).Msg("Command stderr")
	}

	if err != nil {
		r.logger.Error().
			Err(err).
			Str("command", c.Name).
			Strs("args", c.Args).
			Int("exitCode", result.ExitCode).
			Msg("Command execution failed")
		return result, fmt.Errorf("%s failed: %w%s", c.String(), err, stderrSuffix(result.Stderr))
	}

	r.logger.Info().Str("command", c.String()).Msg("Command executed successfully")
	return result, nil
}

// MergeEnv overlays extra onto base, replacing keys already present
func MergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, overridden := extra[key]; overridden {
			continue
		}
		out = append(out, kv)
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+extra[k])
	}
	return out
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func stderrSuffix(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	if len(stderr) > 400 {
		stderr = stderr[len(stderr)-400:]
	}
	return ": " + stderr
}
