package guard

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/autosys/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryTargets(t *testing.T) {
	g := New(filesystem.NewReadOnly())
	root := t.TempDir()

	t.Run("missing_directory_applies", func(t *testing.T) {
		v, err := g.ShouldApply(Target{Path: filepath.Join(root, "new"), Kind: KindDirectory})
		require.NoError(t, err)
		assert.Equal(t, Apply, v.Decision)
	})

	t.Run("existing_directory_is_satisfied", func(t *testing.T) {
		require.NoError(t, os.Mkdir(filepath.Join(root, "hooks"), 0755))
		v, err := g.ShouldApply(Target{Path: filepath.Join(root, "hooks"), Kind: KindDirectory})
		require.NoError(t, err)
		assert.Equal(t, SkipAlreadySatisfied, v.Decision)
	})

	t.Run("file_in_the_way_conflicts", func(t *testing.T) {
		path := filepath.Join(root, "agents")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		v, err := g.ShouldApply(Target{Path: path, Kind: KindDirectory})
		require.NoError(t, err)
		assert.Equal(t, SkipConflict, v.Decision)
	})
}

func TestSymlinkTargets(t *testing.T) {
	g := New(filesystem.NewReadOnly())
	root := t.TempDir()

	t.Run("missing_link_applies", func(t *testing.T) {
		v, err := g.ShouldApply(Target{Path: filepath.Join(root, "a.sh"), Kind: KindSymlink, LinkTo: "../src/a.sh"})
		require.NoError(t, err)
		assert.Equal(t, Apply, v.Decision)
		assert.False(t, v.Replace)
	})

	t.Run("same_link_is_satisfied", func(t *testing.T) {
		path := filepath.Join(root, "b.sh")
		require.NoError(t, os.Symlink("../src/b.sh", path))
		v, err := g.ShouldApply(Target{Path: path, Kind: KindSymlink, LinkTo: "../src/b.sh"})
		require.NoError(t, err)
		assert.Equal(t, SkipAlreadySatisfied, v.Decision)
	})

	t.Run("different_link_is_replaced", func(t *testing.T) {
		path := filepath.Join(root, "c.sh")
		require.NoError(t, os.Symlink("../old/c.sh", path))
		v, err := g.ShouldApply(Target{Path: path, Kind: KindSymlink, LinkTo: "../src/c.sh"})
		require.NoError(t, err)
		assert.Equal(t, Apply, v.Decision)
		assert.True(t, v.Replace)
		assert.Equal(t, "../old/c.sh", v.PreviousTarget)
	})

	t.Run("regular_file_conflicts", func(t *testing.T) {
		path := filepath.Join(root, "d.sh")
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))
		v, err := g.ShouldApply(Target{Path: path, Kind: KindSymlink, LinkTo: "../src/d.sh"})
		require.NoError(t, err)
		assert.Equal(t, SkipConflict, v.Decision)
		assert.NotEmpty(t, v.Reason)
	})
}

func TestGeneratedFileTargets(t *testing.T) {
	g := New(filesystem.NewReadOnly())
	root := t.TempDir()
	content := []byte(`{"hooks":{}}`)

	t.Run("missing_file_applies_without_backup", func(t *testing.T) {
		v, err := g.ShouldApply(Target{Path: filepath.Join(root, "settings.json"), Kind: KindGeneratedFile, Content: content})
		require.NoError(t, err)
		assert.Equal(t, Apply, v.Decision)
		assert.False(t, v.Backup)
	})

	t.Run("identical_file_is_satisfied", func(t *testing.T) {
		path := filepath.Join(root, "same.json")
		require.NoError(t, os.WriteFile(path, content, 0644))
		v, err := g.ShouldApply(Target{Path: path, Kind: KindGeneratedFile, Content: content})
		require.NoError(t, err)
		assert.Equal(t, SkipAlreadySatisfied, v.Decision)
	})

	t.Run("different_file_is_backed_up", func(t *testing.T) {
		path := filepath.Join(root, "old.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"old":true}`), 0644))
		v, err := g.ShouldApply(Target{Path: path, Kind: KindGeneratedFile, Content: content})
		require.NoError(t, err)
		assert.Equal(t, Apply, v.Decision)
		assert.True(t, v.Backup)
		assert.Contains(t, v.Reason, "sha256:")
	})

	t.Run("dangling_symlink_is_backed_up", func(t *testing.T) {
		path := filepath.Join(root, "dangling.json")
		require.NoError(t, os.Symlink(filepath.Join(root, "nowhere"), path))
		v, err := g.ShouldApply(Target{Path: path, Kind: KindGeneratedFile, Content: content})
		require.NoError(t, err)
		assert.Equal(t, Apply, v.Decision)
		assert.True(t, v.Backup)
	})

	t.Run("directory_conflicts", func(t *testing.T) {
		path := filepath.Join(root, "dir.json")
		require.NoError(t, os.Mkdir(path, 0755))
		v, err := g.ShouldApply(Target{Path: path, Kind: KindGeneratedFile, Content: content})
		require.NoError(t, err)
		assert.Equal(t, SkipConflict, v.Decision)
	})
}

func TestBackupPath(t *testing.T) {
	fs := filesystem.NewReadOnly()
	root := t.TempDir()
	path := filepath.Join(root, "settings.json")
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

	first := BackupPath(fs, path, now)
	assert.Equal(t, path+".backup.20261015-093000", first)

	require.NoError(t, os.WriteFile(first, []byte("x"), 0644))
	second := BackupPath(fs, path, now)
	assert.Equal(t, first+".1", second)
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "apply", Apply.String())
	assert.Equal(t, "already-satisfied", SkipAlreadySatisfied.String())
	assert.Equal(t, "conflict", SkipConflict.String())
}
