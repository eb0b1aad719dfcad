package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/autosys/internal/cli"
	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/pipeline"
	"github.com/arthur-debert/autosys/pkg/prereq"
	"github.com/arthur-debert/autosys/pkg/prompt"
	"github.com/arthur-debert/autosys/pkg/testutil"
	"github.com/arthur-debert/autosys/pkg/types"
	"github.com/arthur-debert/autosys/pkg/ui"
)

func newApp(env *testutil.TestEnvironment) (*cli.App, *bytes.Buffer) {
	checker := prereq.NewChecker(env.Git)
	checker.LookPath = func(file string) (string, error) { return "/usr/bin/" + file, nil }

	var buf bytes.Buffer
	return &cli.App{
		Out:      &buf,
		Err:      &buf,
		Format:   ui.FormatText,
		Prompter: prompt.Defaults{},
		Options: pipeline.Options{
			Git:     env.Git,
			Runner:  env.Runner,
			Service: env.Service,
			Prereq:  checker,
			LockDir: filepath.Join(env.StateHome, "locks"),
		},
		SetupLogging: func(int) {},
	}, &buf
}

func run(app *cli.App, args ...string) error {
	cmd := cli.NewRootCmd(app)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestInstall(t *testing.T) {
	t.Run("minimal_non_interactive", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		app, out := newApp(env)

		err := run(app, "--target", env.Target, "--repo-url", testutil.TestRepoURL, "--skip-prompts")
		require.NoError(t, err)

		testutil.FileExists(t, env.Path(".claude", "settings.json"))
		testutil.FileExists(t, env.Path("CLAUDE.md"))
		assert.Contains(t, out.String(), "Installation complete")
		assert.Contains(t, out.String(), "git subtree pull --prefix=.autonomous-system autonomous-system main --squash")
	})

	t.Run("rerun_changes_nothing", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		app, _ := newApp(env)
		require.NoError(t, run(app, "--target", env.Target, "--repo-url", testutil.TestRepoURL, "--config", "full"))

		app, out := newApp(env)
		require.NoError(t, run(app, "--target", env.Target, "--repo-url", testutil.TestRepoURL, "--config", "full"))
		assert.Contains(t, out.String(), "nothing changed")
	})

	t.Run("dry_run_leaves_target_alone", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		before := testutil.TakeSnapshot(t, env.Target)
		app, out := newApp(env)

		require.NoError(t, run(app, "--target", env.Target, "--repo-url", testutil.TestRepoURL, "--dry-run"))

		assert.Equal(t, before, testutil.TakeSnapshot(t, env.Target))
		assert.Contains(t, out.String(), "Dry run")
		assert.False(t, env.Git.Called("AddRemote"))
	})

	t.Run("missing_repo_url", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		app, _ := newApp(env)

		err := run(app, "--target", env.Target, "--skip-prompts")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
		assert.Equal(t, cli.ExitFatal, cli.ExitCode(err))
	})

	t.Run("project_file_supplies_repo_url", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		env.WithFileTree(testutil.FileTree{
			".autosys.toml": `repo_url = "` + testutil.TestRepoURL + `"` + "\nvariant = \"full\"\n",
		})
		app, _ := newApp(env)

		require.NoError(t, run(app, "--target", env.Target))
		testutil.AssertSymlink(t, env.Path(".claude", "hooks", "design-check.sh"),
			filepath.Join("..", "..", ".autonomous-system", "hooks", "design-check.sh"))
	})

	t.Run("mutually_exclusive_service_flags", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		app, _ := newApp(env)

		err := run(app, "--target", env.Target, "--repo-url", testutil.TestRepoURL, "--service", "--no-service")
		assert.Error(t, err)
	})

	t.Run("failed_fetch_rolls_back", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		env.Git.Errors["SubtreeAdd"] = stderrors.New("couldn't find remote ref main")
		app, out := newApp(env)

		err := run(app, "--target", env.Target, "--repo-url", testutil.TestRepoURL)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrRolledBack))
		assert.Equal(t, cli.ExitFatal, cli.ExitCode(err))
		assert.Contains(t, out.String(), "Rolling back 1 change(s)")
		assert.Contains(t, out.String(), "Rollback complete: 1 compensated, 0 failed")
		assert.Empty(t, env.Git.Remotes)
	})

	t.Run("tree_without_instructions_template", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		delete(env.Git.Source["templates"].(testutil.FileTree), "CLAUDE.md")
		app, out := newApp(env)

		err := run(app, "--target", env.Target, "--repo-url", testutil.TestRepoURL)
		require.NoError(t, err)
		assert.Equal(t, cli.ExitOK, cli.ExitCode(err))
		assert.Contains(t, out.String(), "Installation complete")
		assert.Contains(t, out.String(), "ships no")
		testutil.AssertNotExists(t, env.Path("CLAUDE.md"))
	})

	t.Run("regular_file_on_hook_path", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		env.WithFileTree(testutil.FileTree{
			".claude": testutil.FileTree{"hooks": testutil.FileTree{"session-start.sh": "#!/bin/sh\n# mine\n"}},
		})
		app, out := newApp(env)

		err := run(app, "--target", env.Target, "--repo-url", testutil.TestRepoURL)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrVerificationFailed))
		assert.Equal(t, cli.ExitFindings, cli.ExitCode(err))
		assert.Contains(t, out.String(), "FAIL hook count")
		testutil.AssertFileContent(t, env.Path(".claude", "hooks", "session-start.sh"), "#!/bin/sh\n# mine\n")
	})

	t.Run("missing_target", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		app, _ := newApp(env)

		err := run(app, "--target", env.Path("nope"), "--repo-url", testutil.TestRepoURL)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestVerify(t *testing.T) {
	t.Run("after_install_passes", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		app, _ := newApp(env)
		require.NoError(t, run(app, "--target", env.Target, "--repo-url", testutil.TestRepoURL))

		app, out := newApp(env)
		require.NoError(t, run(app, "verify", "--target", env.Target, "--format", "json"))

		var report struct {
			Target string `json:"target"`
			Checks []struct {
				Name   string `json:"name"`
				Passed bool   `json:"passed"`
			} `json:"checks"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.Equal(t, env.Target, report.Target)
		assert.NotEmpty(t, report.Checks)
		for _, c := range report.Checks {
			assert.True(t, c.Passed, c.Name)
		}
	})

	t.Run("empty_target_has_findings", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		app, out := newApp(env)

		err := run(app, "verify", "--target", env.Target)
		require.Error(t, err)
		assert.Equal(t, cli.ExitFindings, cli.ExitCode(err))
		assert.Contains(t, out.String(), "FAIL layout")
	})

	t.Run("yaml", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		app, out := newApp(env)

		_ = run(app, "verify", "--target", env.Target, "--format", "yaml")
		assert.Contains(t, out.String(), "checks:")
	})

	t.Run("explicit_text", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		app, _ := newApp(env)
		require.NoError(t, run(app, "--target", env.Target, "--repo-url", testutil.TestRepoURL))

		app, out := newApp(env)
		require.NoError(t, run(app, "verify", "--target", env.Target, "--format", "text"))
		assert.Contains(t, out.String(), "pass hook count")
		assert.NotContains(t, out.String(), "FAIL")
	})

	t.Run("unknown_format", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		app, _ := newApp(env)

		err := run(app, "verify", "--target", env.Target, "--format", "xml")
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestConfig(t *testing.T) {
	t.Run("resolved", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		t.Setenv("AUTOSYS_SERVICE__PORT", "9300")
		app, out := newApp(env)

		require.NoError(t, run(app, "config", "--target", env.Target, "--config", "full"))
		assert.Contains(t, out.String(), "full")
		assert.Contains(t, out.String(), "9300")
	})

	t.Run("defaults", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		app, out := newApp(env)

		require.NoError(t, run(app, "config", "--defaults"))
		assert.Contains(t, out.String(), `variant = "minimal"`)
	})
}

func TestVersion(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	app, out := newApp(env)

	require.NoError(t, run(app, "version"))
	assert.Contains(t, out.String(), "autosys version dev")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, cli.ExitOK, cli.ExitCode(nil))
	assert.Equal(t, cli.ExitFatal, cli.ExitCode(stderrors.New("boom")))
	assert.Equal(t, cli.ExitFatal, cli.ExitCode(errors.New(errors.ErrRolledBack, "rolled back")))
	assert.Equal(t, cli.ExitFindings, cli.ExitCode(errors.New(errors.ErrVerificationFailed, "1 failing")))
}

func TestVariantNames(t *testing.T) {
	for _, v := range types.Variants {
		assert.True(t, v.Valid())
	}
}
