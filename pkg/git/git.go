// Package git wraps the git command line for the handful of repository
// operations the installer needs: remotes, subtree fetch, status and a
// single-file commit.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/arthur-debert/autosys/pkg/logging"
	"github.com/rs/zerolog"
)

// Client is the subset of git the installer drives
type Client interface {
	IsRepository(ctx context.Context) bool
	TopLevel(ctx context.Context) (string, error)
	Version(ctx context.Context) (string, error)
	HasRemote(ctx context.Context, name string) (bool, error)
	AddRemote(ctx context.Context, name, url string) error
	RemoveRemote(ctx context.Context, name string) error
	HasCommits(ctx context.Context) (bool, error)
	IsClean(ctx context.Context) (bool, error)
	CommitFile(ctx context.Context, path, message string) error
	SubtreeAdd(ctx context.Context, prefix, remote, branch string) error
}

// ShellClient runs the git binary against one working tree
type ShellClient struct {
	binary string
	dir    string
	logger zerolog.Logger
}

var _ Client = (*ShellClient)(nil)

// NewShellClient returns a client operating on dir. An empty binary means "git".
func NewShellClient(binary, dir string) *ShellClient {
	if binary == "" {
		binary = "git"
	}
	return &ShellClient{
		binary: binary,
		dir:    dir,
		logger: logging.GetLogger("git"),
	}
}

// Dir is the working tree the client operates on
func (c *ShellClient) Dir() string { return c.dir }

func (c *ShellClient) run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", c.dir}, args...)
	logging.LogCommand(c.binary, full)

	cmd := exec.CommandContext(ctx, c.binary, full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		c.logger.Debug().Err(err).Strs("args", args).Str("stderr", msg).Msg("git command failed")
		if msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, msg)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// IsRepository reports whether dir is inside a git work tree
func (c *ShellClient) IsRepository(ctx context.Context) bool {
	out, err := c.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// TopLevel returns the absolute path of the work tree root
func (c *ShellClient) TopLevel(ctx context.Context) (string, error) {
	return c.run(ctx, "rev-parse", "--show-toplevel")
}

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// Version returns the dotted git version, e.g. "2.43.0"
func (c *ShellClient) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary, "--version")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git --version: %w", err)
	}
	return ParseVersion(string(out))
}

// ParseVersion extracts the version number from `git --version` output
func ParseVersion(output string) (string, error) {
	v := versionPattern.FindString(output)
	if v == "" {
		return "", fmt.Errorf("unrecognised git version output %q", strings.TrimSpace(output))
	}
	return v, nil
}

// HasRemote reports whether a remote called name is configured
func (c *ShellClient) HasRemote(ctx context.Context, name string) (bool, error) {
	out, err := c.run(ctx, "remote")
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == name {
			return true, nil
		}
	}
	return false, nil
}

func (c *ShellClient) AddRemote(ctx context.Context, name, url string) error {
	_, err := c.run(ctx, "remote", "add", name, url)
	return err
}

func (c *ShellClient) RemoveRemote(ctx context.Context, name string) error {
	_, err := c.run(ctx, "remote", "remove", name)
	return err
}

// HasCommits reports whether HEAD resolves to a commit
func (c *ShellClient) HasCommits(ctx context.Context) (bool, error) {
	_, err := c.run(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, err
}

// IsClean reports whether tracked files match HEAD. git subtree refuses to
// run otherwise.
func (c *ShellClient) IsClean(ctx context.Context) (bool, error) {
	if _, err := c.run(ctx, "update-index", "-q", "--refresh"); err != nil {
		return false, err
	}
	_, err := c.run(ctx, "diff-index", "--quiet", "HEAD", "--")
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, err
}

// CommitFile stages path and commits only that path
func (c *ShellClient) CommitFile(ctx context.Context, path, message string) error {
	if _, err := c.run(ctx, "add", "--", path); err != nil {
		return err
	}
	_, err := c.run(ctx, "commit", "-m", message, "--", path)
	return err
}

// SubtreeAdd fetches branch of remote into prefix as a squashed subtree
func (c *ShellClient) SubtreeAdd(ctx context.Context, prefix, remote, branch string) error {
	_, err := c.run(ctx, "subtree", "add", "--prefix="+prefix, remote, branch, "--squash")
	return err
}
