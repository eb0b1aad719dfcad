// pkg/testutil/environment.go
// DEPENDENCIES: None (base test utilities)
// PURPOSE: Orchestrate an isolated target repository with faked collaborators

package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/autosys/pkg/types"
)

// TestRepoURL is the component repository every test plan points at
const TestRepoURL = "https://github.com/example/autonomous-system.git"

// TestEnvironment provides a target project directory and fake collaborators
type TestEnvironment struct {
	Root      string
	Target    string
	StateHome string

	Git     *FakeGit
	Runner  *FakeRunner
	Service *FakeService

	t *testing.T
}

// NewTestEnvironment creates an empty target directory that the fake git
// client treats as a clean repository with one commit
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	// Resolve /tmp symlinks (macOS) so computed and observed paths agree.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	env := &TestEnvironment{
		Root:      root,
		Target:    filepath.Join(root, "project"),
		StateHome: filepath.Join(root, "state"),
		t:         t,
	}
	for _, dir := range []string{env.Target, env.StateHome} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	t.Setenv("XDG_STATE_HOME", env.StateHome)
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	env.Git = NewFakeGit(t, env.Target)
	env.Runner = NewFakeRunner()
	env.Service = NewFakeService()
	return env
}

// Plan returns a non-interactive plan for the target with every optional
// feature turned off
func (env *TestEnvironment) Plan(variant types.Variant) types.InstallationPlan {
	return types.InstallationPlan{
		RunID:      "test-run",
		TargetDir:  env.Target,
		RepoURL:    TestRepoURL,
		Branch:     "main",
		RemoteName: "autonomous-system",
		Prefix:     ".autonomous-system",
		Variant:    variant,
		Service: types.ServiceOptions{
			Start:          true,
			Port:           8765,
			Dir:            ".autonomous-service",
			HealthPath:     "/health",
			MaxAttempts:    3,
			Interval:       time.Millisecond,
			InstallCommand: []string{"npm", "install"},
			StartCommand:   []string{"npm", "start"},
		},
		Tools: types.ToolOptions{
			Git:           "git",
			GitMinVersion: "2.20.0",
			Pip:           "pip3",
			Python:        "python3",
		},
		NonInteractive: true,
	}
}

// WithFileTree creates tree inside the target project
func (env *TestEnvironment) WithFileTree(tree FileTree) {
	env.t.Helper()
	CreateFileTree(env.t, env.Target, tree)
}

// Path joins parts onto the target project directory
func (env *TestEnvironment) Path(parts ...string) string {
	return filepath.Join(append([]string{env.Target}, parts...)...)
}
