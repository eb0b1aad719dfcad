// TEST TYPE: Integration Test
// DEPENDENCIES: git binary
// PURPOSE: Exercise ShellClient against throwaway repositories

package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *ShellClient {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	for _, key := range []string{"GIT_DIR", "GIT_WORK_TREE", "GIT_INDEX_FILE", "GIT_CEILING_DIRECTORIES"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("GIT_CONFIG_GLOBAL", filepath.Join(t.TempDir(), "gitconfig"))
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "Test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")

	dir := t.TempDir()
	out, err := exec.Command("git", "init", "-q", dir).CombinedOutput()
	require.NoError(t, err, string(out))
	return NewShellClient("", dir)
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{name: "linux", output: "git version 2.43.0\n", want: "2.43.0"},
		{name: "apple", output: "git version 2.39.3 (Apple Git-146)", want: "2.39.3"},
		{name: "windows", output: "git version 2.45.1.windows.1", want: "2.45.1"},
		{name: "two_components", output: "git version 2.20", want: "2.20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion(tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseVersion("not git")
	assert.Error(t, err)
}

func TestShellClient_Repository(t *testing.T) {
	c := newRepo(t)
	ctx := context.Background()

	assert.True(t, c.IsRepository(ctx))

	top, err := c.TopLevel(ctx)
	require.NoError(t, err)
	wantTop, _ := filepath.EvalSymlinks(c.Dir())
	gotTop, _ := filepath.EvalSymlinks(top)
	assert.Equal(t, wantTop, gotTop)

	v, err := c.Version(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, v)

	notRepo := NewShellClient("git", t.TempDir())
	assert.False(t, notRepo.IsRepository(ctx))
}

func TestShellClient_Remotes(t *testing.T) {
	c := newRepo(t)
	ctx := context.Background()

	has, err := c.HasRemote(ctx, "autonomous-system")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, c.AddRemote(ctx, "autonomous-system", "https://example.com/autonomous-system.git"))
	has, err = c.HasRemote(ctx, "autonomous-system")
	require.NoError(t, err)
	assert.True(t, has)

	assert.Error(t, c.AddRemote(ctx, "autonomous-system", "https://example.com/other.git"))

	require.NoError(t, c.RemoveRemote(ctx, "autonomous-system"))
	has, err = c.HasRemote(ctx, "autonomous-system")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestShellClient_CommitsAndCleanliness(t *testing.T) {
	c := newRepo(t)
	ctx := context.Background()

	has, err := c.HasCommits(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), ".gitkeep"), nil, 0644))
	require.NoError(t, c.CommitFile(ctx, ".gitkeep", "Initial commit"))

	has, err = c.HasCommits(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	clean, err := c.IsClean(ctx)
	require.NoError(t, err)
	assert.True(t, clean)

	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), ".gitkeep"), []byte("dirty"), 0644))
	clean, err = c.IsClean(ctx)
	require.NoError(t, err)
	assert.False(t, clean)
}
