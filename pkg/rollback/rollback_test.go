// TEST TYPE: Integration Test
// DEPENDENCIES: real temp directories, fake git and service
// PURPOSE: Verify reverse replay, per-kind compensations and best-effort continuation

package rollback_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/filesystem"
	"github.com/arthur-debert/autosys/pkg/ledger"
	"github.com/arthur-debert/autosys/pkg/rollback"
	"github.com/arthur-debert/autosys/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestoresOriginalState(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	ctx := context.Background()
	env.WithFileTree(testutil.FileTree{
		"README.md": "# project\n",
		".claude": testutil.FileTree{
			"settings.json": `{"mine":true}`,
			"hooks":         testutil.FileTree{},
		},
	})
	require.NoError(t, os.Symlink("/old/target.sh", env.Path(".claude", "hooks", "old.sh")))
	before := testutil.TakeSnapshot(t, env.Target)

	l := ledger.New()

	require.NoError(t, env.Git.AddRemote(ctx, "autonomous-system", testutil.TestRepoURL))
	l.Append(ledger.NewRemoteAdded("autonomous-system"))

	require.NoError(t, env.Git.SubtreeAdd(ctx, ".autonomous-system", "autonomous-system", "main"))
	l.Append(ledger.NewSubtreeAdded(env.Path(".autonomous-system")))

	require.NoError(t, os.Mkdir(env.Path(".claude", "agents"), 0755))
	l.Append(ledger.NewDirectoryCreated(env.Path(".claude", "agents")))

	settings := env.Path(".claude", "settings.json")
	backup := settings + ".backup.20260102-030405"
	require.NoError(t, os.Rename(settings, backup))
	require.NoError(t, os.WriteFile(settings, []byte(`{"hooks":{}}`), 0644))
	l.Append(ledger.NewSettingsWritten(settings, backup))

	hook := env.Path(".claude", "hooks", "old.sh")
	require.NoError(t, os.Remove(hook))
	require.NoError(t, os.Symlink("../../.autonomous-system/hooks/session-start.sh", hook))
	l.Append(ledger.NewSymlinkCreated(hook, "/old/target.sh"))

	newHook := env.Path(".claude", "hooks", "prompt-context.sh")
	require.NoError(t, os.Symlink("../../.autonomous-system/hooks/prompt-context.sh", newHook))
	l.Append(ledger.NewSymlinkCreated(newHook, ""))

	agent := env.Path(".claude", "agents", "architect.md")
	require.NoError(t, os.WriteFile(agent, []byte("# Architect\n"), 0644))
	l.Append(ledger.NewFileCreated(agent))

	require.NoError(t, os.MkdirAll(env.Path(".claude", "skills-bundle", "x"), 0755))
	l.Append(ledger.NewTreeCopied(env.Path(".claude", "skills-bundle")))

	require.NoError(t, os.MkdirAll(env.Path(".claude", "index"), 0755))
	l.Append(ledger.NewIndexCreated(env.Path(".claude", "index")))

	pid, err := env.Service.Start(ctx, env.Path(".svc"), []string{"npm", "start"}, 8765)
	require.NoError(t, err)
	l.Append(ledger.NewAuxServiceStarted(pid, env.Path(".svc")))

	l.Append(ledger.NewDependenciesInstalled("requirements.txt"))

	var order []ledger.Kind
	engine := rollback.New(filesystem.NewOS(), env.Git, env.Service, func(c rollback.Compensation) {
		order = append(order, c.Entry.Kind)
	})
	summary, err := engine.Run(ctx, l)
	require.NoError(t, err)

	assert.Equal(t, before, testutil.TakeSnapshot(t, env.Target))
	assert.Empty(t, env.Git.Remotes)
	assert.Equal(t, []int{pid}, env.Service.Stopped)

	assert.Equal(t, ledger.DependenciesInstalled, order[0])
	assert.Equal(t, ledger.RemoteAdded, order[len(order)-1])
	assert.Len(t, summary.ManualSteps(), 1)
}

func TestNonEmptyDirectoryIsKept(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	dir := env.Path(".claude")
	env.WithFileTree(testutil.FileTree{".claude": testutil.FileTree{"user.txt": "keep me"}})

	l := ledger.New()
	l.Append(ledger.NewDirectoryCreated(dir))

	summary, err := rollback.New(filesystem.NewOS(), env.Git, env.Service, nil).Run(context.Background(), l)
	require.NoError(t, err)
	require.Len(t, summary.Compensations, 1)
	assert.Equal(t, rollback.Kept, summary.Compensations[0].Outcome)
	testutil.AssertFileContent(t, filepath.Join(dir, "user.txt"), "keep me")
}

func TestContinuesAfterFailure(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.WithFileTree(testutil.FileTree{"a.txt": "a", "b.txt": "b"})
	env.Git.Errors["RemoveRemote"] = fmt.Errorf("remote locked")

	l := ledger.New()
	l.Append(
		ledger.NewFileCreated(env.Path("a.txt")),
		ledger.NewRemoteAdded("autonomous-system"),
		ledger.NewFileCreated(env.Path("b.txt")),
	)

	summary, err := rollback.New(filesystem.NewOS(), env.Git, env.Service, nil).Run(context.Background(), l)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCompensation))
	assert.Len(t, summary.Failures(), 1)

	testutil.AssertNotExists(t, env.Path("a.txt"))
	testutil.AssertNotExists(t, env.Path("b.txt"))
}

func TestCancelledContextStillCompensates(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, env.Git.AddRemote(ctx, "autonomous-system", testutil.TestRepoURL))
	cancel()

	l := ledger.New()
	l.Append(ledger.NewRemoteAdded("autonomous-system"))

	_, err := rollback.New(filesystem.NewOS(), env.Git, env.Service, nil).Run(ctx, l)
	require.NoError(t, err)
	assert.Empty(t, env.Git.Remotes)
}

func TestAlreadyRemovedPathsAreFine(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	l := ledger.New()
	l.Append(
		ledger.NewFileCreated(env.Path("gone.txt")),
		ledger.NewDirectoryCreated(env.Path("gone-dir")),
		ledger.NewSymlinkCreated(env.Path("gone-link"), ""),
	)

	summary, err := rollback.New(filesystem.NewOS(), env.Git, env.Service, nil).Run(context.Background(), l)
	require.NoError(t, err)
	assert.Len(t, summary.Compensations, 3)
}
